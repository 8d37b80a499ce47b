// Package engine is the execution engine / traffic model (spec.md §4.3,
// §4.2 "Cycles-vs-rounds duality"): it assigns scheduler-issued tasks to
// PEs, drives the fiber cache, and reports per-block reuse/cost figures
// back to the scheduler's adaptation policy.
package engine

// blockStats accumulates reuse and cost figures across all of a block's
// windows (spec.md §4.3 "Reuse accounting").
type blockStats struct {
	touched   int64 // sum of fetched B-fiber sizes before dedup
	dedup     int64 // sum of distinct-by-fiber-ID B-fiber sizes within a window
	output    int64 // emitted psum elements
	missSize  int64 // element-size of B-fibers fetched on a cache miss
	psumWrite int64 // psum fiber writes

	height int // block height, constant across its windows
	width  int // nominal (configured/adaptive) window width
}

// CReuse is touched / (output * window_width): spec.md §4.3.
func (b *blockStats) CReuse() float64 {
	denom := float64(b.output) * float64(b.width)
	if denom == 0 {
		return 0
	}
	return float64(b.touched) / denom
}

// BReuse is touched / (dedup * window_height): spec.md §4.3.
func (b *blockStats) BReuse() float64 {
	denom := float64(b.dedup) * float64(b.height)
	if denom == 0 {
		return 0
	}
	return float64(b.touched) / denom
}

// NormalizedCost is (miss_size + psum_read)*100 + psum_write per element
// (spec.md §4.2). Normal-mode blocks never read a psum fiber mid-window
// (the accumulation is transient and in-memory until window completion),
// so psum_read is always 0 here; it is kept as a parameter for symmetry
// with the spec's formula and so a future merge-aware block kind can
// supply a nonzero value.
func (b *blockStats) NormalizedCost(psumRead int64) (cost float64, elements int64) {
	if b.output == 0 {
		return 0, 0
	}
	total := float64(b.missSize+psumRead)*100 + float64(b.psumWrite)
	return total / float64(b.output), b.output
}
