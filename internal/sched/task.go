package sched

import "github.com/RuiPMaia/spada-sim/internal/fiber"

// Task is the unit of work handed to a PE (spec.md §3 "Task"). Normal-mode
// tasks carry A-elements per lane; merge-mode tasks carry psum-ID pairs.
// A lane with no A-elements this window (its row already reached its tail
// in a prior window of the same block) has a nil Elements entry and an
// OutputAddr of -1.
type Task struct {
	BlockToken  Token
	WindowToken Token
	GroupSize   int
	MergeMode   bool

	// BlockFinished reports whether this task drained the last window of
	// its block, so the engine can finalize and report that block's cost
	// back to the scheduler (spec.md §4.2 adaptation feedback loop).
	BlockFinished bool

	// Normal mode, one slot per lane.
	Rows       []int
	Elements   [][]fiber.Entry
	OutputAddr []int64

	// Merge mode, one slot per row-pair consumed this task.
	MergeRows  []int
	MergePairA []int64
	MergePairB []int64
	MergeOut   []int64
}

// ActiveLanes returns the count of normal-mode lanes carrying at least one
// A-element.
func (t *Task) ActiveLanes() int {
	n := 0
	for _, e := range t.Elements {
		if len(e) > 0 {
			n++
		}
	}
	return n
}
