package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

func TestRunOracleProducesCorrectProductAndLeavesCountersClean(t *testing.T) {
	a := identity2()
	b := identity2()
	psum := storage.NewPsumStore(1000)

	aReadBefore := a.ReadCount
	bReadBefore := b.ReadCount

	s, c, res, height, err := RunOracle(a, b, psum, OracleParams{
		CacheSize: 64,
		WordByte:  8,
		LaneNum:   2,
		PeNum:     2,
		VarFactor: 2.0,
	}, telemetry.Noop{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, height, 1)
	assert.LessOrEqual(t, height, 2)
	assert.Greater(t, res.ExecRound, int64(0))

	for row := 0; row < 2; row++ {
		ids := s.Output.Outputs.IDs(row)
		require.Len(t, ids, 1)
		f, err := c.Read(ids[0])
		require.NoError(t, err)
		assert.Equal(t, 1, f.Size())
		assert.Equal(t, int32(row), f.Entries[0].Col)
		assert.Equal(t, 1.0, f.Entries[0].Val)
	}

	// Only the single committed run's traffic should be visible on A/B;
	// every speculative trial's counters must have been rolled back.
	assert.Greater(t, a.ReadCount, aReadBefore)
	assert.Greater(t, b.ReadCount, bReadBefore)
	assert.False(t, a.HasSnapshot())
	assert.False(t, b.HasSnapshot())
}
