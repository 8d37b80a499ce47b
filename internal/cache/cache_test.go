package cache

import (
	"testing"

	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeB is a minimal BStore of single-element rows, each a distinct
// fiber of size 1.
type fakeB struct{ n int }

func (f fakeB) Row(id int) *fiber.Fiber {
	return fiber.New(int64(id), []fiber.Entry{{Col: int32(id), Val: float64(id)}})
}

func TestCacheMissEvictSizeOne(t *testing.T) {
	// spec.md §8 scenario 3: cache-size-1 with 4 distinct B-fibers,
	// single A-row of length 4: miss_count=4, b_evict_count=3.
	psum := storage.NewPsumStore(1000)
	c := New(1, 8, 1000, fakeB{}, psum, telemetry.Noop{})

	for i := 0; i < 4; i++ {
		_, err := c.Read(int64(i))
		require.NoError(t, err)
	}
	assert.EqualValues(t, 4, c.MissCount)
	assert.EqualValues(t, 3, c.BEvictCount)
	assert.Equal(t, 1, c.CurNum())
}

func TestCacheWriteEvictsPsumToBacking(t *testing.T) {
	psum := storage.NewPsumStore(1000)
	c := New(1, 8, 1000, fakeB{}, psum, telemetry.Noop{})

	f1 := fiber.New(1000, []fiber.Entry{{Col: 0, Val: 1}})
	require.NoError(t, c.Write(f1))
	f2 := fiber.New(1001, []fiber.Entry{{Col: 1, Val: 2}})
	require.NoError(t, c.Write(f2))

	assert.EqualValues(t, 1, c.PsumEvictCount)
	assert.True(t, psum.Contains(1000))

	got, err := c.Read(1000)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Size())
}

func TestCacheSwapoutAndConsume(t *testing.T) {
	psum := storage.NewPsumStore(1000)
	c := New(10, 8, 1000, fakeB{}, psum, telemetry.Noop{})

	f := fiber.New(1000, []fiber.Entry{{Col: 0, Val: 1}})
	require.NoError(t, c.Write(f))
	require.NoError(t, c.Swapout(1000))
	assert.True(t, psum.Contains(1000))

	// re-insert via a write, then consume (read-and-remove)
	require.NoError(t, c.Write(f))
	got, err := c.Consume(1000)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	_, ok := c.index[1000]
	assert.False(t, ok)
}

func TestCacheSnapshotRoundTrip(t *testing.T) {
	psum := storage.NewPsumStore(1000)
	c := New(10, 8, 1000, fakeB{}, psum, telemetry.Noop{})
	_, _ = c.Read(0)
	_, _ = c.Read(1)
	require.NoError(t, c.Write(fiber.New(1000, []fiber.Entry{{Col: 0, Val: 9}})))

	require.NoError(t, c.TakeSnapshot())
	_, _ = c.Read(2)
	_ = c.Swapout(1000)

	require.NoError(t, c.RestoreFromSnapshot())
	assert.EqualValues(t, 2, c.ReadCount, "restore must roll back the post-snapshot Read(2)")
	_, ok := c.index[1000]
	assert.True(t, ok, "swapped-out psum should be back in cache after restore")
	c.DropSnapshot()
	assert.False(t, c.HasSnapshot())
}

func TestFallThroughWhenFiberExceedsCapacity(t *testing.T) {
	psum := storage.NewPsumStore(1000)
	c := New(1, 8, 1000, fakeBig{}, psum, telemetry.Noop{})
	f, err := c.Read(0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Size())
	assert.Equal(t, 0, c.CurNum(), "oversized fiber must not be inserted")
}

type fakeBig struct{}

func (fakeBig) Row(id int) *fiber.Fiber {
	return fiber.New(int64(id), []fiber.Entry{{Col: 0, Val: 1}, {Col: 1, Val: 2}})
}

