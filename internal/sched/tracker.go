package sched

import "sort"

// OutputTracker maps an A-row to its ordered list of outstanding psum-IDs
// (spec.md §3 "Output tracker"). A row is complete once its list holds
// exactly one ID.
type OutputTracker struct {
	lists map[int][]int64
}

// NewOutputTracker builds an empty tracker.
func NewOutputTracker() *OutputTracker {
	return &OutputTracker{lists: make(map[int][]int64)}
}

// Add appends a freshly-allocated psum-ID to row's outstanding list.
func (t *OutputTracker) Add(row int, id int64) {
	t.lists[row] = append(t.lists[row], id)
}

// Len returns the number of outstanding psum-IDs for row.
func (t *OutputTracker) Len(row int) int { return len(t.lists[row]) }

// IDs returns row's outstanding psum-IDs in insertion order.
func (t *OutputTracker) IDs(row int) []int64 { return t.lists[row] }

// Pairs returns the number of row-local psum pairs available for
// merging (spec.md §4.2 "Merge task formation").
func (t *OutputTracker) Pairs(row int) int { return len(t.lists[row]) / 2 }

// Replace removes the first occurrence of oldA and of oldB from row's
// list and appends newID — the bookkeeping step of a merge-mode task
// completing (spec.md §4.3).
func (t *OutputTracker) Replace(row int, oldA, oldB, newID int64) {
	ids := t.lists[row]
	ids = removeFirst(ids, oldA)
	ids = removeFirst(ids, oldB)
	ids = append(ids, newID)
	t.lists[row] = ids
}

func removeFirst(ids []int64, v int64) []int64 {
	for i, id := range ids {
		if id == v {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// RowsWithPairs returns, in ascending row order, every row currently
// carrying at least one mergeable pair. Ascending order keeps merge-task
// packing deterministic across runs (spec.md §8 "Merge determinism").
func (t *OutputTracker) RowsWithPairs() []int {
	var rows []int
	for r, ids := range t.lists {
		if len(ids) >= 2 {
			rows = append(rows, r)
		}
	}
	sort.Ints(rows)
	return rows
}

// Complete reports whether row is in the terminal state result assembly
// requires (spec.md §4.5): exactly one outstanding psum-id.
func (t *OutputTracker) Complete(row int) bool { return len(t.lists[row]) == 1 }

// rowMergeState is the per-row merge-tracker entry (spec.md §3 "Merge
// tracker"): whether the scheduler has committed that no further block
// will touch the row, and which in-flight blocks still owe it a window.
type rowMergeState struct {
	finished bool
	pending  map[Token]struct{}
}

// MergeTracker tracks per-row readiness for cache swap-out.
type MergeTracker struct {
	rows map[int]*rowMergeState
}

// NewMergeTracker builds an empty tracker.
func NewMergeTracker() *MergeTracker {
	return &MergeTracker{rows: make(map[int]*rowMergeState)}
}

func (m *MergeTracker) state(row int) *rowMergeState {
	s := m.rows[row]
	if s == nil {
		s = &rowMergeState{pending: make(map[Token]struct{})}
		m.rows[row] = s
	}
	return s
}

// Touch registers blockTok as owing row a window. tail reports whether
// this block covers row's remaining tail, matching next_block's "marking
// finished=true for rows whose tail it covers" (spec.md §4.2).
func (m *MergeTracker) Touch(row int, blockTok Token, tail bool) {
	s := m.state(row)
	s.pending[blockTok] = struct{}{}
	if tail {
		s.finished = true
	}
}

// Drain removes blockTok from row's pending set once the block's windows
// over that row are exhausted.
func (m *MergeTracker) Drain(row int, blockTok Token) {
	s := m.state(row)
	delete(s.pending, blockTok)
}

// Eligible reports whether row is ready for cache swap-out: finished, no
// pending blocks, and exactly one outstanding psum-id.
func (m *MergeTracker) Eligible(row int, outstandingLen int) bool {
	s := m.rows[row]
	if s == nil {
		return false
	}
	return s.finished && len(s.pending) == 0 && outstandingLen == 1
}
