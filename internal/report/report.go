// Package report prints the final run summary (spec.md §6 "a console
// reporter"), styled after ja7ad-consumption/cmd/consumption/main.go's
// tabwriter table. Field ordering follows the original Rust tool's
// report tail (SPEC_FULL.md §7): per-matrix read/write counts, then
// cache counts, then exec round/cycle, then miss/evict counters, then a
// preview of C's first rows.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/engine"
	"github.com/RuiPMaia/spada-sim/internal/result"
	"github.com/RuiPMaia/spada-sim/internal/storage"
)

// MatrixCounts is the subset of storage.CSR counters worth reporting per
// matrix, named rather than passing *storage.CSR so callers can report
// on matrices the report package never mutates.
type MatrixCounts struct {
	Name       string
	ReadCount  uint64
	WriteCount uint64
}

// Report bundles everything the console reporter prints at shutdown.
type Report struct {
	Matrices []MatrixCounts
	Cache    *cache.FiberCache
	Result   *engine.Result
	Rows     [][]result.Row

	// PreviewRows caps how many leading rows of C get printed; spec.md's
	// original tool always shows the first 10.
	PreviewRows int
}

func matrixCounts(name string, c *storage.CSR) MatrixCounts {
	return MatrixCounts{Name: name, ReadCount: c.ReadCount, WriteCount: c.WriteCount}
}

// MatrixCountsOf is a convenience constructor for the common A/B case.
func MatrixCountsOf(name string, c *storage.CSR) MatrixCounts { return matrixCounts(name, c) }

// Write renders the report to w as an aligned table plus a C preview.
func (r *Report) Write(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "MATRIX\tREAD\tWRITE")
	fmt.Fprintln(tw, "------\t----\t-----")
	for _, m := range r.Matrices {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", m.Name, m.ReadCount, m.WriteCount)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(tw, "CACHE READ\tCACHE WRITE")
	fmt.Fprintln(tw, "----------\t-----------")
	fmt.Fprintf(tw, "%d\t%d\n", r.Cache.ReadCount, r.Cache.WriteCount)
	tw.Flush()

	fmt.Fprintln(w)
	if r.Result.ExecCycle > 0 {
		fmt.Fprintf(w, "exec_round=%d exec_cycle=%d\n", r.Result.ExecRound, r.Result.ExecCycle)
	} else {
		fmt.Fprintf(w, "exec_round=%d\n", r.Result.ExecRound)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(tw, "MISS\tB-EVICT\tPSUM-EVICT")
	fmt.Fprintln(tw, "----\t-------\t----------")
	fmt.Fprintf(tw, "%d\t%d\t%d\n", r.Cache.MissCount, r.Cache.BEvictCount, r.Cache.PsumEvictCount)
	tw.Flush()

	fmt.Fprintln(w)
	n := r.PreviewRows
	if n <= 0 {
		n = 10
	}
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	fmt.Fprintf(w, "C preview (first %d rows):\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  row %d: %v\n", i, r.Rows[i])
	}
}
