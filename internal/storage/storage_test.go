package storage

import (
	"testing"

	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRRowAndElements(t *testing.T) {
	m := New(2, 3, []int32{0, 2, 2}, []int32{0, 2}, []float64{1, 2})
	row0 := m.Row(0)
	require.Equal(t, 2, row0.Size())
	assert.Equal(t, int32(0), row0.Entries[0].Col)
	assert.Equal(t, 1, int(m.ReadCount))

	empty := m.Row(1)
	assert.True(t, empty.Empty())

	els := m.Elements(0, 0, 1)
	require.Len(t, els, 1)
	assert.Equal(t, int32(0), els[0].Col)
}

func TestCSRSnapshotRoundTrip(t *testing.T) {
	m := New(1, 1, []int32{0, 1}, []int32{0}, []float64{5})
	m.Row(0)
	m.TakeSnapshot()
	m.Row(0)
	m.Row(0)
	assert.Equal(t, uint64(3), m.ReadCount)
	m.RestoreFromSnapshot()
	assert.Equal(t, uint64(1), m.ReadCount)
	m.DropSnapshot()
	assert.False(t, m.HasSnapshot())
}

func TestPsumStoreAllocGetPutDelete(t *testing.T) {
	p := NewPsumStore(100)
	id := p.Alloc()
	assert.Equal(t, int64(100), id)
	id2 := p.Alloc()
	assert.Equal(t, int64(101), id2)

	f := fiber.New(id, []fiber.Entry{{Col: 0, Val: 1}})
	p.Put(f)
	got, ok := p.Get(id)
	require.True(t, ok)
	assert.Equal(t, f, got)

	p.Delete(id)
	assert.False(t, p.Contains(id))
}

func TestPsumStoreSnapshotRoundTrip(t *testing.T) {
	p := NewPsumStore(0)
	id := p.Alloc()
	p.Put(fiber.New(id, []fiber.Entry{{Col: 0, Val: 1}}))
	p.TakeSnapshot()

	id2 := p.Alloc()
	p.Put(fiber.New(id2, []fiber.Entry{{Col: 1, Val: 2}}))
	assert.True(t, p.Contains(id2))

	p.RestoreFromSnapshot()
	assert.True(t, p.Contains(id))
	assert.False(t, p.Contains(id2))
	p.DropSnapshot()
	assert.False(t, p.HasSnapshot())
}
