// Package result implements result assembly (spec.md §4.5): at shutdown,
// every nonzero A-row must have exactly one outstanding psum, which is
// fetched, relabeled through A's row-remap (RowRemap[slot] = original
// row), and emitted in original row order; empty A-rows emit an empty
// fiber.
package result

import (
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/simerr"
	"github.com/RuiPMaia/spada-sim/internal/storage"
)

// Row is one (column, value) entry of an assembled row of C.
type Row struct {
	Col   int32
	Val   float64
}

// Assemble builds C's rows in original row order from a's final
// output-tracker state, cache, and psum backing store.
func Assemble(a *storage.CSR, tracker *sched.OutputTracker, c *cache.FiberCache, psum *storage.PsumStore) ([][]Row, error) {
	out := make([][]Row, a.Rows)
	for physical := 0; physical < a.Rows; physical++ {
		original := physical
		if a.RowRemap != nil {
			original = int(a.RowRemap[physical])
		}

		if a.RowLen(physical) == 0 {
			out[original] = nil
			continue
		}

		ids := tracker.IDs(physical)
		if len(ids) != 1 {
			return nil, simerr.Invariant(simerr.IncompletePsum,
				map[string]any{"row": physical, "outstanding": ids},
				"row %d has %d outstanding psum ids at termination, want 1", physical, len(ids))
		}

		f, err := fetchFiber(ids[0], c, psum)
		if err != nil {
			return nil, err
		}
		out[original] = toRows(f)
	}
	return out, nil
}

// fetchFiber reads from the cache, falling back to psum-storage, so
// assembly need not know whether a row's final psum was swapped out.
func fetchFiber(id int64, c *cache.FiberCache, psum *storage.PsumStore) (*fiber.Fiber, error) {
	if f, err := c.Read(id); err == nil {
		return f, nil
	}
	f, ok := psum.Get(id)
	if !ok {
		return nil, simerr.Invariant(simerr.MissingFiber, map[string]any{"fiber_id": id},
			"final psum %d absent from cache and backing store", id)
	}
	return f, nil
}

func toRows(f *fiber.Fiber) []Row {
	if f.Empty() {
		return nil
	}
	rows := make([]Row, len(f.Entries))
	for i, e := range f.Entries {
		rows[i] = Row{Col: e.Col, Val: e.Val}
	}
	return rows
}
