package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RuiPMaia/spada-sim/internal/storage"
)

func TestLengthOrderSortsAscending(t *testing.T) {
	// row 0: 3 nz, row 1: 1 nz, row 2: 2 nz
	indptr := []int32{0, 3, 4, 6}
	indices := []int32{0, 1, 2, 0, 0, 1}
	data := []float64{1, 1, 1, 1, 1, 1}
	a := storage.New(3, 3, indptr, indices, data)

	out := Reorder(a, Length)
	assert.Equal(t, []int32{1, 2, 0}, out.RowRemap)
	assert.Equal(t, 1, out.RowLen(0))
	assert.Equal(t, 2, out.RowLen(1))
	assert.Equal(t, 3, out.RowLen(2))

	// inverse maps original row -> new slot
	assert.Equal(t, int32(2), out.InverseRemap[0])
	assert.Equal(t, int32(0), out.InverseRemap[1])
	assert.Equal(t, int32(1), out.InverseRemap[2])
}

func TestAffinityOrderGroupsSharedColumns(t *testing.T) {
	// row 0 and row 2 share column 5; row 1 shares nothing with row 0.
	indptr := []int32{0, 1, 2, 4}
	indices := []int32{5, 9, 0, 5}
	data := []float64{1, 1, 1, 1}
	a := storage.New(3, 10, indptr, indices, data)

	out := Reorder(a, Affinity)
	assert.Equal(t, int32(0), out.RowRemap[0])
	// row 2 (shares column 5 with row 0) should be placed before row 1
	// (which shares nothing with row 0).
	assert.Equal(t, int32(2), out.RowRemap[1])
	assert.Equal(t, int32(1), out.RowRemap[2])
}

func TestParseStrategy(t *testing.T) {
	s, ok := ParseStrategy("")
	assert.True(t, ok)
	assert.Equal(t, Length, s)

	s, ok = ParseStrategy("affinity")
	assert.True(t, ok)
	assert.Equal(t, Affinity, s)

	_, ok = ParseStrategy("bogus")
	assert.False(t, ok)
}
