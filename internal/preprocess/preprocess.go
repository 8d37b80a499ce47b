// Package preprocess implements the optional row-reordering preprocessor
// spec.md §6 names but leaves unspecified ("--preprocess — apply
// affinity-based or length-based row reordering to A before
// simulation"). Both strategies named in original_source/src/main.rs are
// implemented (SPEC_FULL.md §7). The CLI's --preprocess flag takes the
// strategy name ("length" or "affinity"); leaving it unset disables
// preprocessing. ParseStrategy maps an empty name to Length.
package preprocess

import (
	"sort"

	"github.com/RuiPMaia/spada-sim/internal/storage"
)

// Strategy selects a row-reordering policy.
type Strategy int

const (
	// Length sorts rows by ascending nonzero count, grouping
	// similarly-sized rows together so the scheduler's group tracker
	// (internal/group) forms fewer, larger groups.
	Length Strategy = iota
	// Affinity greedily walks rows by shared-column overlap with the
	// most recently placed row, grouping rows that read the same B-fibers
	// adjacently to improve fiber-cache reuse (spec.md §4.1 LRU locality).
	Affinity
)

// ParseStrategy parses the --preprocess flag's optional value.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "length":
		return Length, true
	case "affinity":
		return Affinity, true
	default:
		return 0, false
	}
}

// Reorder returns a new CSR with rows permuted per strategy, carrying
// RowRemap/InverseRemap so result assembly (internal/result) can restore
// original row order (spec.md §3 "optional row-remap... with its
// inverse").
func Reorder(a *storage.CSR, strategy Strategy) *storage.CSR {
	var order []int32
	switch strategy {
	case Affinity:
		order = affinityOrder(a)
	default:
		order = lengthOrder(a)
	}
	return permute(a, order)
}

// lengthOrder sorts original row indices by ascending nonzero count,
// stable so rows of equal length keep their relative original order.
func lengthOrder(a *storage.CSR) []int32 {
	order := make([]int32, a.Rows)
	for r := range order {
		order[r] = int32(r)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return a.RowLen(int(order[i])) < a.RowLen(int(order[j]))
	})
	return order
}

// affinityOrder greedily walks rows: starting from row 0, each step picks
// the unvisited row with the largest shared-column count (sorted-merge
// intersection, since CSR rows are column-sorted) against the
// most-recently-placed row, falling back to the lowest-indexed unvisited
// row when no remaining row shares any column.
func affinityOrder(a *storage.CSR) []int32 {
	n := a.Rows
	visited := make([]bool, n)
	order := make([]int32, 0, n)

	cur := 0
	visited[cur] = true
	order = append(order, int32(cur))

	for len(order) < n {
		best, bestOverlap := -1, -1
		for cand := 0; cand < n; cand++ {
			if visited[cand] {
				continue
			}
			ov := overlap(a, cur, cand)
			if ov > bestOverlap {
				best, bestOverlap = cand, ov
			}
		}
		cur = best
		visited[cur] = true
		order = append(order, int32(cur))
	}
	return order
}

// overlap counts shared column indices between two column-sorted CSR
// rows via sorted-merge intersection.
func overlap(a *storage.CSR, r1, r2 int) int {
	i, iEnd := a.Indptr[r1], a.Indptr[r1+1]
	j, jEnd := a.Indptr[r2], a.Indptr[r2+1]
	count := 0
	for i < iEnd && j < jEnd {
		switch {
		case a.Indices[i] < a.Indices[j]:
			i++
		case a.Indices[i] > a.Indices[j]:
			j++
		default:
			count++
			i++
			j++
		}
	}
	return count
}

// permute rebuilds indptr/indices/data in the given row order and
// records the forward/inverse remap.
func permute(a *storage.CSR, order []int32) *storage.CSR {
	rows := a.Rows
	indptr := make([]int32, rows+1)
	var indices []int32
	var data []float64

	for slot, orig := range order {
		start, end := a.Indptr[orig], a.Indptr[orig+1]
		indices = append(indices, a.Indices[start:end]...)
		data = append(data, a.Data[start:end]...)
		indptr[slot+1] = int32(len(data))
	}

	inverse := make([]int32, rows)
	for slot, orig := range order {
		inverse[orig] = int32(slot)
	}

	out := storage.New(rows, a.Cols, indptr, indices, data)
	out.RowRemap = order
	out.InverseRemap = inverse
	return out
}
