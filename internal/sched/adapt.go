package sched

import "github.com/RuiPMaia/spada-sim/internal/group"

// samplingState tracks a wide group's block-height sampling phase
// (spec.md §4.2 "Wide groups"): for k = 1, 2, 4, ..., lane_num, sample
// 4·k consecutive rows at height=k, then pick the height minimizing
// cost/element for the remainder of the group. Each "4·k rows" mini-run
// is realized as however many height-k blocks it takes to cover 4·k
// rows, since a block's height is fixed at open time.
type samplingState struct {
	candidates    []int
	candIdx       int
	rowsRemaining int
}

func newSamplingState(laneNum int) *samplingState {
	var cands []int
	for k := 1; k <= laneNum; k *= 2 {
		cands = append(cands, k)
	}
	if len(cands) == 0 {
		cands = []int{1}
	}
	return &samplingState{candidates: cands, rowsRemaining: 4 * cands[0]}
}

func (s *samplingState) height() int { return s.candidates[s.candIdx] }

// advance accounts for a block of the given height having been opened
// against the current candidate, and reports the finalized height once
// every candidate has been sampled (done=true), using g's recorded costs.
func (s *samplingState) advance(height int, g *group.Group) (finalHeight int, done bool) {
	s.rowsRemaining -= height
	if s.rowsRemaining > 0 {
		return 0, false
	}
	s.candIdx++
	if s.candIdx >= len(s.candidates) {
		best, ok := g.BestHeight(s.candidates)
		if !ok {
			best = s.candidates[len(s.candidates)-1]
		}
		return best, true
	}
	s.rowsRemaining = 4 * s.candidates[s.candIdx]
	return 0, false
}
