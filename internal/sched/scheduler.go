package sched

import (
	"github.com/RuiPMaia/spada-sim/internal/accelerator"
	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/RuiPMaia/spada-sim/internal/group"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/topology"
)

// Scheduler produces the Task stream for a fixed A matrix and accelerator
// variant (spec.md §4.2). It is driven by repeated NextTask calls, one
// per PE slot per round; the caller (internal/engine) owns round/PE
// iteration and reports block-completion costs back via ObserveBlockCost
// so block-shape adaptation can react.
type Scheduler struct {
	a       *storage.CSR
	psum    *storage.PsumStore
	variant accelerator.Variant
	laneNum int
	// fixedShape is the configured [height, width] used by the Omega
	// variant (Ip/Op derive their shape from laneNum directly).
	fixedShape [2]int

	groups *group.Tracker
	topo   *topology.Tracker
	Output *MergeOutputs

	rowCursor int
	cur       *Block
	nextTok   Token

	curHeight int
	sampling  *samplingState

	blockHeight    map[Token]int
	blockAnchorRow map[Token]int
	blockCost      map[Token]float64
}

// MergeOutputs bundles the two trackers merge-task formation and
// swap-out eligibility both need, so callers thread one value instead of
// two.
type MergeOutputs struct {
	Outputs *OutputTracker
	Merges  *MergeTracker
}

// New builds a Scheduler over A, allocating output psum addresses from
// psum. varFactor is the group-tracker variance factor (spec.md §3); it
// is ignored for fixed (non-adaptive) variants.
func New(a *storage.CSR, psum *storage.PsumStore, variant accelerator.Variant, laneNum int, fixedShape [2]int, varFactor float64) *Scheduler {
	s := &Scheduler{
		a:           a,
		psum:        psum,
		variant:     variant,
		laneNum:     laneNum,
		fixedShape:  fixedShape,
		topo:        &topology.Tracker{},
		Output:      &MergeOutputs{Outputs: NewOutputTracker(), Merges: NewMergeTracker()},
		curHeight:      1,
		blockHeight:    make(map[Token]int),
		blockAnchorRow: make(map[Token]int),
		blockCost:      make(map[Token]float64),
	}
	if variant.Adaptive() {
		rowLens := make([]int, a.Rows)
		for r := 0; r < a.Rows; r++ {
			rowLens[r] = a.RowLen(r)
		}
		s.groups = group.Build(rowLens, varFactor)
	}
	return s
}

func (s *Scheduler) nextToken() Token {
	s.nextTok++
	return s.nextTok
}

func (s *Scheduler) traversed() bool {
	return s.rowCursor >= s.a.Rows && s.cur == nil
}

// NextTask returns the next task to dispatch, or ok=false once A has been
// fully traversed and the merge queue is empty (spec.md §4.2 assignment
// priority).
func (s *Scheduler) NextTask() (*Task, bool) {
	if t := s.tryMergeTask(); t != nil {
		return t, true
	}
	for attempts := 0; attempts < 2; attempts++ {
		if s.cur == nil {
			if !s.openNextBlock() {
				return nil, false
			}
		}
		if t := s.nextWindow(); t != nil {
			return t, true
		}
		// The just-opened block had every row already at its tail
		// (can only happen for a zero-height edge case); cur was
		// cleared by nextWindow, so loop once more for the next block.
	}
	return nil, false
}

// openNextBlock scans A in row-major order, skipping rows with no
// nonzeros (spec.md §4.2 next_block), and opens a block at the adapted
// height.
func (s *Scheduler) openNextBlock() bool {
	for s.rowCursor < s.a.Rows && s.a.RowLen(s.rowCursor) == 0 {
		s.rowCursor++
	}
	if s.rowCursor >= s.a.Rows {
		return false
	}

	height, g := s.decideHeight(s.rowCursor)
	if s.rowCursor+height > s.a.Rows {
		height = s.a.Rows - s.rowCursor
	}
	if g != nil && s.rowCursor+height > g.RowEnd {
		height = g.RowEnd - s.rowCursor
	}
	if height < 1 {
		height = 1
	}

	rows := make([]int, height)
	total := make([]int, height)
	assigned := make([]int, height)
	for i := 0; i < height; i++ {
		r := s.rowCursor + i
		rows[i] = r
		total[i] = s.a.RowLen(r)
	}
	tok := s.nextToken()
	blk := &Block{Token: tok, AnchorRow: s.rowCursor, Height: height, rows: rows, total: total, assigned: assigned}

	s.topo.Record(s.rowCursor, 0, topology.Token(tok))
	s.blockHeight[tok] = height
	s.blockAnchorRow[tok] = s.rowCursor
	for _, r := range rows {
		s.Output.Merges.Touch(r, tok, true)
	}

	if s.sampling != nil {
		if final, done := s.sampling.advance(height, g); done {
			s.curHeight = final
			s.sampling = nil
		}
	}

	s.cur = blk
	s.rowCursor += height
	return true
}

// decideHeight implements spec.md §4.2's block-shape adaptation policy.
// It returns the group the height decision was made against (nil for
// fixed variants), so openNextBlock can clamp the block to the group's
// bounds.
func (s *Scheduler) decideHeight(row int) (int, *group.Group) {
	switch {
	case s.variant == accelerator.Ip:
		return s.laneNum, nil
	case s.variant == accelerator.Op:
		return 1, nil
	case s.variant == accelerator.Omega:
		h := s.fixedShape[0]
		if h < 1 {
			h = 1
		}
		return h, nil
	}

	g := s.groups.GroupOf(row)
	if g == nil {
		return 1, nil
	}
	if s.groups.EntersNewGroup(row) {
		s.curHeight = 1
		s.sampling = nil
		if g.Len() > 128 {
			s.sampling = newSamplingState(s.laneNum)
		}
	}
	if s.sampling != nil {
		return s.sampling.height(), g
	}
	if g.Len() <= 128 {
		s.curHeight = s.narrowHillClimb(row, s.curHeight)
	}
	return s.curHeight, g
}

// narrowHillClimb compares the two most recent above-neighbor blocks'
// normalized costs and doubles or halves the current height accordingly
// (spec.md §4.2 "Narrow groups"). It falls back to the current height
// when there is not yet enough neighbor history.
func (s *Scheduler) narrowHillClimb(row, cur int) int {
	if cur < 1 {
		cur = 1
	}
	recents, ok := s.topo.RecentAbove(row, 2)
	if !ok || len(recents) < 2 {
		return cur
	}
	a, b := recents[len(recents)-2], recents[len(recents)-1]
	costA, okA := s.blockCost[Token(a.Token)]
	costB, okB := s.blockCost[Token(b.Token)]
	if !okA || !okB {
		return cur
	}
	heightA, heightB := s.blockHeight[Token(a.Token)], s.blockHeight[Token(b.Token)]
	betterHeight, worseHeight := heightA, heightB
	if costB < costA {
		betterHeight, worseHeight = heightB, heightA
	}
	next := cur
	if betterHeight > worseHeight {
		next = cur * 2
	} else {
		next = cur / 2
	}
	if next < 1 {
		next = 1
	}
	if next > s.laneNum {
		next = s.laneNum
	}
	return next
}

// ObserveBlockCost records a completed block's normalized cost
// ((miss_size+psum_read)*100+psum_write per element, computed by the
// engine) so the narrow-group hill-climb and wide-group sampling phase
// can use it on subsequent decisions (spec.md §4.2, §4.3).
func (s *Scheduler) ObserveBlockCost(tok Token, normalizedCost float64, elements int64) {
	s.blockCost[tok] = normalizedCost
	if s.groups == nil || elements == 0 {
		return
	}
	row, ok := s.blockAnchorRow[tok]
	if !ok {
		return
	}
	if g := s.groups.GroupOf(row); g != nil {
		g.RecordCost(s.blockHeight[tok], normalizedCost*float64(elements), elements)
	}
}

// BlockAnchorRow returns the row a block's height/cost bookkeeping is
// keyed against.
func (s *Scheduler) BlockAnchorRow(tok Token) (int, bool) {
	row, ok := s.blockAnchorRow[tok]
	return row, ok
}

// BlockHeight returns the height a block was opened with.
func (s *Scheduler) BlockHeight(tok Token) (int, bool) {
	h, ok := s.blockHeight[tok]
	return h, ok
}

// windowWidth returns the configured or adaptive window width for a
// block of the given height (spec.md §4.2 "Window shape").
func (s *Scheduler) windowWidth(height int) int {
	switch s.variant {
	case accelerator.Ip:
		return 1
	case accelerator.Op:
		return s.laneNum
	case accelerator.Omega:
		w := s.fixedShape[1]
		if w < 1 {
			w = 1
		}
		return w
	default:
		if height < 1 {
			height = 1
		}
		w := s.laneNum / height
		if w < 1 {
			w = 1
		}
		return w
	}
}

// nextWindow walks the current block column-major (spec.md §4.2
// next_window), reading up to one window's worth of A-elements from
// every lane and allocating one output psum address per active lane.
// Returns nil if the block had nothing left to assign (rare zero-height
// edge case); cur is always cleared once the block is finished.
func (s *Scheduler) nextWindow() *Task {
	blk := s.cur
	width := s.windowWidth(blk.Height)
	wtok := s.nextToken()

	lanes := blk.Height
	rows := make([]int, lanes)
	elems := make([][]fiber.Entry, lanes)
	addrs := make([]int64, lanes)
	active := false

	for i := 0; i < lanes; i++ {
		r := blk.rows[i]
		rows[i] = r
		remaining := blk.total[i] - blk.assigned[i]
		take := width
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			addrs[i] = -1
			continue
		}
		elems[i] = s.a.Elements(r, blk.assigned[i], take)
		blk.assigned[i] += take
		id := s.psum.Alloc()
		addrs[i] = id
		s.Output.Outputs.Add(r, id)
		active = true
	}

	finished := blk.Finished()
	if finished {
		for _, r := range blk.rows {
			s.Output.Merges.Drain(r, blk.Token)
		}
		s.cur = nil
	}

	if !active {
		return nil
	}
	return &Task{
		BlockToken:    blk.Token,
		WindowToken:   wtok,
		GroupSize:     width,
		Rows:          rows,
		Elements:      elems,
		OutputAddr:    addrs,
		BlockFinished: finished,
	}
}

// tryMergeTask scans the output tracker for mergeable pairs (spec.md §4.2
// "Merge task formation"): it fires once at least lane_num/2 pairs are
// available, or once A is fully traversed and at least one pair remains.
func (s *Scheduler) tryMergeTask() *Task {
	rows := s.Output.Outputs.RowsWithPairs()
	total := 0
	for _, r := range rows {
		total += s.Output.Outputs.Pairs(r)
	}
	threshold := s.laneNum / 2
	if threshold < 1 {
		threshold = 1
	}
	ready := total >= threshold || (s.traversed() && total >= 1)
	if !ready {
		return nil
	}

	slotCap := s.laneNum / 2
	if slotCap < 1 {
		slotCap = 1
	}
	var mergeRows []int
	var pa, pb, out []int64
	n := 0
	for _, r := range rows {
		for s.Output.Outputs.Pairs(r) > 0 && n < slotCap {
			ids := s.Output.Outputs.IDs(r)
			a, b := ids[0], ids[1]
			newID := s.psum.Alloc()
			s.Output.Outputs.Replace(r, a, b, newID)
			mergeRows = append(mergeRows, r)
			pa = append(pa, a)
			pb = append(pb, b)
			out = append(out, newID)
			n++
		}
		if n >= slotCap {
			break
		}
	}
	if n == 0 {
		return nil
	}
	return &Task{
		WindowToken: s.nextToken(),
		MergeMode:   true,
		GroupSize:   2,
		MergeRows:   mergeRows,
		MergePairA:  pa,
		MergePairB:  pb,
		MergeOut:    out,
	}
}
