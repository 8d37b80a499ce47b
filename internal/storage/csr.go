// Package storage holds the CSR matrix storage for A and B and the
// psum vector storage (spec.md §3 "CsrMatStorage" / "Psum vector
// storage"). Both track read/write counters and support a snapshot /
// restore / drop cycle for the oracle window-shape search.
package storage

import (
	"github.com/RuiPMaia/spada-sim/internal/fiber"
)

// CSR is a column-sorted compressed-sparse-row matrix. It backs both A
// and B; B additionally satisfies cache.BStore's read-only contract via
// Row().
type CSR struct {
	Rows, Cols int
	Indptr     []int32
	Indices    []int32
	Data       []float64

	// RowRemap[i] is the original row index now occupying slot i after
	// preprocessing (nil if untouched); InverseRemap is its inverse,
	// used by result assembly (spec.md §4.5) to emit rows in original
	// order.
	RowRemap     []int32
	InverseRemap []int32

	ReadCount  uint64
	WriteCount uint64

	snap *csrSnapshot
}

// New builds a CSR from already-normalized triples. indptr has Rows+1
// entries.
func New(rows, cols int, indptr, indices []int32, data []float64) *CSR {
	return &CSR{Rows: rows, Cols: cols, Indptr: indptr, Indices: indices, Data: data}
}

// RowLen returns the nonzero count of row r without bumping ReadCount —
// used by the group tracker and scheduler for planning, which spec.md §3
// treats as metadata, not a traffic-incurring read.
func (m *CSR) RowLen(r int) int {
	return int(m.Indptr[r+1] - m.Indptr[r])
}

// Row returns row r as a Fiber keyed by r, bumping ReadCount. This is the
// CSR's role as B-storage's backing read path (spec.md §4.1).
func (m *CSR) Row(r int) *fiber.Fiber {
	m.ReadCount++
	start, end := m.Indptr[r], m.Indptr[r+1]
	if start == end {
		return fiber.New(int64(r), nil)
	}
	entries := make([]fiber.Entry, end-start)
	for i := start; i < end; i++ {
		entries[i-start] = fiber.Entry{Col: m.Indices[i], Val: m.Data[i]}
	}
	return fiber.New(int64(r), entries)
}

// Elements returns A's row r as raw (col, value) triples starting at
// column offset colStart, up to count entries, without constructing a
// Fiber — this is the scheduler's "A-elements" read path (spec.md §4.2
// next_window); it allocates only the returned slice.
func (m *CSR) Elements(r, colStart, count int) []fiber.Entry {
	m.ReadCount++
	rowStart, rowEnd := int(m.Indptr[r]), int(m.Indptr[r+1])
	lo := rowStart + colStart
	hi := lo + count
	if hi > rowEnd {
		hi = rowEnd
	}
	if lo >= hi {
		return nil
	}
	out := make([]fiber.Entry, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = fiber.Entry{Col: m.Indices[i], Val: m.Data[i]}
	}
	return out
}

// TakeSnapshot copies the read/write counters only (the indptr/indices/
// data arrays and the row remap are not copied).
func (m *CSR) TakeSnapshot() {
	m.snap = &csrSnapshot{
		readCount:  m.ReadCount,
		writeCount: m.WriteCount,
	}
}

// RestoreFromSnapshot is the symmetric counterpart of TakeSnapshot.
func (m *CSR) RestoreFromSnapshot() {
	if m.snap == nil {
		return
	}
	m.ReadCount = m.snap.readCount
	m.WriteCount = m.snap.writeCount
}

// DropSnapshot releases the held snapshot; mandatory before the next
// TakeSnapshot (spec.md §5).
func (m *CSR) DropSnapshot() { m.snap = nil }

// HasSnapshot reports whether a snapshot is currently held, used by
// callers enforcing the "drop before next take" discipline.
func (m *CSR) HasSnapshot() bool { return m.snap != nil }

type csrSnapshot struct {
	readCount, writeCount uint64
}
