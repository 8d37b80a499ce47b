package engine

import (
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

// TrafficModel is the round-granular driver: one round = one set of PE
// tasks (spec.md §9 "Cycles-vs-rounds duality").
type TrafficModel struct {
	c *core
}

// NewTrafficModel builds a round-granular driver over s/cache/psum.
func NewTrafficModel(s *sched.Scheduler, c *cache.FiberCache, psum *storage.PsumStore, peNum int, log telemetry.Logger) *TrafficModel {
	return &TrafficModel{c: newCore(s, c, psum, peNum, log)}
}

// Run drives rounds until a round issues zero tasks (A traversed and the
// merge queue empty), returning the total round count.
func (t *TrafficModel) Run() (*Result, error) {
	var rounds int64
	for {
		ran, err := t.c.runRound()
		if err != nil {
			return nil, err
		}
		if ran == 0 {
			break
		}
		rounds++
	}
	return &Result{ExecRound: rounds}, nil
}
