// Package loader resolves a --workload/--category pair to a matrix pair
// and normalizes whatever sparse/dense encoding it finds to CSR (spec.md
// §6 "Input formats").
//
// spec.md treats the matrix source as an external collaborator ("a
// matrix loader that yields CSR triples... only their interfaces
// matter") backed in the original by a Python pickle of scipy sparse
// matrices. Pickle decoding has no idiomatic Go equivalent in this
// corpus, so this loader re-targets the same interface at a JSON sidecar
// file carrying the same triples scipy would hand back across that
// pickle boundary: {"shape":[rows,cols], "format":"csr|coo|csc|dense",
// "indptr":[...], "indices":[...], "data":[...]} (coo additionally
// supplies "row"; dense supplies "values" as a row-major matrix). This
// is documented in DESIGN.md as the one interface substitution this repo
// makes for an out-of-scope external collaborator.
package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/RuiPMaia/spada-sim/internal/simerr"
	"github.com/RuiPMaia/spada-sim/internal/storage"
)

// raw mirrors the JSON sidecar shape described above.
type raw struct {
	Shape   [2]int      `json:"shape"`
	Format  string      `json:"format"`
	Indptr  []int32     `json:"indptr,omitempty"`
	Indices []int32     `json:"indices,omitempty"`
	Data    []float64   `json:"data,omitempty"`
	Row     []int32     `json:"row,omitempty"` // coo
	Values  [][]float64 `json:"values,omitempty"` // dense
}

// Category selects which configured filepath a workload resolves
// against (spec.md §6 --category).
type Category int

const (
	NN Category = iota
	SS
)

func (c Category) String() string {
	if c == SS {
		return "SS"
	}
	return "NN"
}

// ParseCategory parses the CLI --category value.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "NN":
		return NN, true
	case "SS":
		return SS, true
	default:
		return 0, false
	}
}

// Pair is the (A, B) matrix pair a workload resolves to (spec.md §3
// "GEMM": the loader's unit of work is always a multiplicand pair).
type Pair struct {
	A *storage.CSR
	B *storage.CSR
}

// Load resolves workload NAME within dir (nn_filepath or ss_filepath,
// picked by the caller from configuration per category), reading an "A"
// and "B" sidecar named "<NAME>.A.json" / "<NAME>.B.json".
func Load(dir, workload string, category Category) (*Pair, error) {
	if dir == "" {
		return nil, simerr.WorkloadError(workload, category.String())
	}
	a, err := loadOne(filepath.Join(dir, workload+".A.json"))
	if err != nil {
		return nil, simerr.WorkloadError(workload, category.String())
	}
	b, err := loadOne(filepath.Join(dir, workload+".B.json"))
	if err != nil {
		return nil, simerr.WorkloadError(workload, category.String())
	}
	return &Pair{A: a, B: b}, nil
}

func loadOne(path string) (*storage.CSR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return normalize(r)
}

// normalize converts r's declared format to CSR (spec.md §6 "the loader
// must accept CSR, COO, CSC, and dense sources and normalize to CSR").
func normalize(r raw) (*storage.CSR, error) {
	rows, cols := r.Shape[0], r.Shape[1]
	switch r.Format {
	case "", "csr":
		return storage.New(rows, cols, r.Indptr, r.Indices, r.Data), nil
	case "coo":
		return cooToCSR(rows, cols, r.Row, r.Indices, r.Data), nil
	case "csc":
		return cscToCSR(rows, cols, r.Indptr, r.Indices, r.Data), nil
	case "dense":
		return denseToCSR(r.Values), nil
	default:
		return nil, simerr.MatrixTypeError(r.Format)
	}
}

// cooToCSR sorts (row, col, val) triples by row (stable, preserving
// column order within a row) and builds indptr by counting.
func cooToCSR(rows, cols int, row, col []int32, data []float64) *storage.CSR {
	n := len(data)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return row[order[i]] < row[order[j]] })

	indptr := make([]int32, rows+1)
	indices := make([]int32, n)
	values := make([]float64, n)
	for i, ix := range order {
		indices[i] = col[ix]
		values[i] = data[ix]
		indptr[row[ix]+1]++
	}
	for i := 0; i < rows; i++ {
		indptr[i+1] += indptr[i]
	}
	return storage.New(rows, cols, indptr, indices, values)
}

// cscToCSR transposes a CSC triple (indptr/indices walk columns) into
// CSR by the same counting-sort approach as cooToCSR, treating CSC's
// (col, row) pairs as COO and swapping the roles of row/col.
func cscToCSR(rows, cols int, cscIndptr, cscIndices []int32, data []float64) *storage.CSR {
	row := make([]int32, len(cscIndices))
	col := make([]int32, len(cscIndices))
	for c := 0; c < cols; c++ {
		for i := cscIndptr[c]; i < cscIndptr[c+1]; i++ {
			row[i] = cscIndices[i]
			col[i] = int32(c)
		}
	}
	return cooToCSR(rows, cols, row, col, data)
}

// denseToCSR drops explicit zeros and keeps the rest in column order.
func denseToCSR(values [][]float64) *storage.CSR {
	rows := len(values)
	cols := 0
	if rows > 0 {
		cols = len(values[0])
	}
	indptr := make([]int32, rows+1)
	var indices []int32
	var data []float64
	for r, rowVals := range values {
		for c, v := range rowVals {
			if v == 0 {
				continue
			}
			indices = append(indices, int32(c))
			data = append(data, v)
		}
		indptr[r+1] = int32(len(data))
	}
	return storage.New(rows, cols, indptr, indices, data)
}
