package engine

import (
	"testing"

	"github.com/RuiPMaia/spada-sim/internal/accelerator"
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

func identity2() *storage.CSR {
	return storage.New(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 1})
}

func TestTrafficModelIdentityProduct(t *testing.T) {
	a := identity2()
	b := identity2()
	psum := storage.NewPsumStore(1000)
	s := sched.New(a, psum, accelerator.Ip, 2, [2]int{1, 1}, 2.0)
	c := cache.New(64, 8, 1000, b, psum, telemetry.Noop{})

	tm := NewTrafficModel(s, c, psum, 2, telemetry.Noop{})
	result, err := tm.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ExecRound == 0 {
		t.Fatal("expected at least one round")
	}

	for row := 0; row < 2; row++ {
		ids := s.Output.Outputs.IDs(row)
		if len(ids) != 1 {
			t.Fatalf("row %d: expected exactly one outstanding psum id at termination, got %d", row, len(ids))
		}
		f, err := c.Read(ids[0])
		if err != nil {
			t.Fatalf("row %d: read final psum: %v", row, err)
		}
		if f.Size() != 1 || f.Entries[0].Col != int32(row) || f.Entries[0].Val != 1 {
			t.Fatalf("row %d: expected a single (col=%d,val=1) entry, got %+v", row, row, f.Entries)
		}
	}
}
