package result

import (
	"testing"

	"github.com/RuiPMaia/spada-sim/internal/accelerator"
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/engine"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

func TestAssembleIdentityProduct(t *testing.T) {
	a := storage.New(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 1})
	b := storage.New(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 1})
	psum := storage.NewPsumStore(1000)
	s := sched.New(a, psum, accelerator.Ip, 2, [2]int{1, 1}, 2.0)
	c := cache.New(64, 8, 1000, b, psum, telemetry.Noop{})

	if _, err := engine.NewTrafficModel(s, c, psum, 2, telemetry.Noop{}).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows, err := Assemble(a, s.Output.Outputs, c, psum)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for r := 0; r < 2; r++ {
		if len(rows[r]) != 1 || rows[r][0].Col != int32(r) || rows[r][0].Val != 1 {
			t.Fatalf("row %d: expected [{%d,1}], got %+v", r, r, rows[r])
		}
	}
}

func TestAssembleEmptyRow(t *testing.T) {
	a := storage.New(2, 2, []int32{0, 0, 1}, []int32{0}, []float64{5})
	b := storage.New(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 1})
	psum := storage.NewPsumStore(1000)
	s := sched.New(a, psum, accelerator.Ip, 4, [2]int{1, 1}, 2.0)
	c := cache.New(64, 8, 1000, b, psum, telemetry.Noop{})

	if _, err := engine.NewTrafficModel(s, c, psum, 2, telemetry.Noop{}).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows, err := Assemble(a, s.Output.Outputs, c, psum)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if rows[0] != nil {
		t.Fatalf("empty A-row must emit an empty fiber, got %+v", rows[0])
	}
	if len(rows[1]) != 1 || rows[1][0].Val != 5 {
		t.Fatalf("row 1: expected [{0,5}], got %+v", rows[1])
	}
}
