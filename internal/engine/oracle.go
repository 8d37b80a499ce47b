package engine

import (
	"github.com/RuiPMaia/spada-sim/internal/accelerator"
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

// OracleParams configures the Spada variant's window-shape search
// (spec.md §4.2 "oracle window-shape search"; SPEC_FULL.md Open Question
// (c)).
type OracleParams struct {
	CacheSize int
	WordByte  int
	LaneNum   int
	PeNum     int
	VarFactor float64
}

// heightCandidates is the power-of-two ladder 1, 2, 4, ..., laneNum, the
// same candidate set the wide-group sampling phase uses (spec.md §4.2),
// reused here as the oracle's search space.
func heightCandidates(laneNum int) []int {
	var out []int
	for k := 1; k <= laneNum; k *= 2 {
		out = append(out, k)
	}
	if len(out) == 0 {
		out = []int{1}
	}
	return out
}

// RunOracle tries every candidate block height as a whole-run fixed Omega
// shape [height, laneNum/height], speculatively: A and B's read/write
// counters are snapshotted before each trial and restored after, so no
// trial's traffic is ever visible to the next (the one invariant the
// oracle search must never violate, per Open Question (c) — a held
// snapshot during an overlapping trial would be exactly the
// cross-attempt leakage that question calls out). The cheapest candidate
// by cache miss count is replayed once more without a snapshot held, and
// that committed run's scheduler/cache/result are returned so the caller
// can assemble C exactly as it would for any other variant.
//
// This is a coarser grain than a true per-block oracle (which would
// re-decide height block by block): rolling back the scheduler's own
// block/topology/group bookkeeping between candidates — not just the
// storage counters — would require a second snapshot discipline this
// repo does not otherwise need. A whole-run fixed-shape search still
// answers the question spec.md's testable property 6 asks ("adaptive
// traffic <= 1.3x oracle traffic") without it.
func RunOracle(a, b *storage.CSR, psum *storage.PsumStore, p OracleParams, log telemetry.Logger) (*sched.Scheduler, *cache.FiberCache, *Result, int, error) {
	candidates := heightCandidates(p.LaneNum)

	bestHeight := candidates[0]
	bestMiss := ^uint64(0)

	for _, h := range candidates {
		a.TakeSnapshot()
		b.TakeSnapshot()

		trialPsum := storage.NewPsumStore(int64(b.Rows))
		trialCache := cache.New(p.CacheSize, p.WordByte, int64(b.Rows), b, trialPsum, telemetry.Noop{})
		s := sched.New(a, trialPsum, accelerator.Omega, p.LaneNum, shapeFor(h, p.LaneNum), p.VarFactor)

		_, err := NewTrafficModel(s, trialCache, trialPsum, p.PeNum, telemetry.Noop{}).Run()
		miss := trialCache.MissCount

		a.RestoreFromSnapshot()
		b.RestoreFromSnapshot()
		a.DropSnapshot()
		b.DropSnapshot()

		if err != nil {
			return nil, nil, nil, 0, err
		}

		log.WithField("height", h).WithField("miss_count", miss).Debugf("oracle trial")
		if miss < bestMiss {
			bestMiss = miss
			bestHeight = h
		}
	}

	s := sched.New(a, psum, accelerator.Omega, p.LaneNum, shapeFor(bestHeight, p.LaneNum), p.VarFactor)
	c := cache.New(p.CacheSize, p.WordByte, int64(b.Rows), b, psum, log)
	res, err := NewTrafficModel(s, c, psum, p.PeNum, log).Run()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	log.WithField("height", bestHeight).Infof("oracle search committed winning block height")
	return s, c, res, bestHeight, nil
}

func shapeFor(height, laneNum int) [2]int {
	width := laneNum / height
	if width < 1 {
		width = 1
	}
	return [2]int{height, width}
}
