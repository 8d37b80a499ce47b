package engine

import (
	"github.com/RuiPMaia/spada-sim/internal/cache"
	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/RuiPMaia/spada-sim/internal/sched"
	"github.com/RuiPMaia/spada-sim/internal/storage"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

// Driver is either execution back-end spec.md §9 calls out ("two main
// entry points... treated as two configurations of one binary"):
// round-granular TrafficModel or cycle-granular AccurateSimu, both built
// over the same Scheduler + FiberCache core.
type Driver interface {
	Run() (*Result, error)
}

// Result is the final counters a Driver reports, consumed by
// internal/report.
type Result struct {
	ExecRound int64
	ExecCycle int64 // 0 for TrafficModel
}

// core holds the state shared by both drivers: the PE-task loop, the
// shared fiber cache, and the per-block reuse/cost bookkeeping that
// feeds back into the scheduler's adaptation policy.
type core struct {
	sched *sched.Scheduler
	cache *cache.FiberCache
	psum  *storage.PsumStore
	log   telemetry.Logger

	peNum int

	stats      map[sched.Token]*blockStats
	mergePE    int // round-robin merge-PE cursor (spec.md §5)
	mergeCount int
}

func newCore(s *sched.Scheduler, c *cache.FiberCache, psum *storage.PsumStore, peNum int, log telemetry.Logger) *core {
	return &core{
		sched: s,
		cache: c,
		psum:  psum,
		peNum: peNum,
		log:   log,
		stats: make(map[sched.Token]*blockStats),
	}
}

// runRound drives exactly one round: peNum PE slots, each fetching and
// executing one task in order (spec.md §5 "round-by-round iteration over
// pe_num PE slots"). It returns the number of PEs that actually received
// a task, so callers can detect exhaustion (zero tasks issued).
func (c *core) runRound() (tasksRun int, err error) {
	for pe := 0; pe < c.peNum; pe++ {
		task, ok := c.sched.NextTask()
		if !ok {
			break
		}
		if err := c.execute(task); err != nil {
			return tasksRun, err
		}
		tasksRun++
	}
	// The merge-PE cursor advances once per round by the number of merge
	// tasks that round issued (mod pe_num). It is bookkeeping only: the
	// scheduler does not consult it, so a merge task goes to whichever PE
	// slot calls NextTask while a merge is ready.
	c.mergePE = (c.mergePE + c.mergeCount) % max1(c.peNum)
	c.mergeCount = 0
	return tasksRun, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// execute runs a single task to completion: normal-mode accumulate or
// merge-mode pair-reduce (spec.md §4.3).
func (c *core) execute(task *sched.Task) error {
	if task.MergeMode {
		c.mergeCount++
		return c.executeMerge(task)
	}
	return c.executeNormal(task)
}

func (c *core) executeNormal(task *sched.Task) error {
	st := c.stats[task.BlockToken]
	if st == nil {
		st = &blockStats{height: len(task.Rows), width: task.GroupSize}
		c.stats[task.BlockToken] = st
	}

	seen := make(map[int32]bool)
	for lane, elems := range task.Elements {
		if len(elems) == 0 {
			continue
		}
		var acc []fiber.Entry
		for _, e := range elems {
			missBefore := c.cache.MissCount
			row, err := c.cache.Read(int64(e.Col))
			if err != nil {
				return err
			}
			sz := int64(row.Size())
			st.touched += sz
			if c.cache.MissCount > missBefore {
				st.missSize += sz
			}
			if !seen[e.Col] {
				seen[e.Col] = true
				st.dedup += sz
			}
			acc = fiber.ScaleAccumulate(acc, float64(e.Val), row)
		}
		addr := task.OutputAddr[lane]
		out := fiber.New(addr, acc)
		if err := c.cache.Write(out); err != nil {
			return err
		}
		st.output += int64(len(acc))
		st.psumWrite++

		if err := c.maybeSwapout(task.Rows[lane]); err != nil {
			return err
		}
	}

	if task.BlockFinished {
		cost, elements := st.NormalizedCost(0)
		c.sched.ObserveBlockCost(task.BlockToken, cost, elements)
		delete(c.stats, task.BlockToken)
	}
	return nil
}

func (c *core) executeMerge(task *sched.Task) error {
	for i := range task.MergeRows {
		a, err := c.cache.Consume(task.MergePairA[i])
		if err != nil {
			return err
		}
		b, err := c.cache.Consume(task.MergePairB[i])
		if err != nil {
			return err
		}
		merged := fiber.Merge(task.MergeOut[i], a, b)
		if err := c.cache.Write(merged); err != nil {
			return err
		}

		if err := c.maybeSwapout(task.MergeRows[i]); err != nil {
			return err
		}
	}
	return nil
}

// maybeSwapout consolidates row's psum fiber out of the cache once the merge
// tracker reports it finished with no pending blocks and a single outstanding
// psum-id (sched.MergeTracker.Eligible).
func (c *core) maybeSwapout(row int) error {
	ids := c.sched.Output.Outputs.IDs(row)
	if !c.sched.Output.Merges.Eligible(row, len(ids)) {
		return nil
	}
	return c.cache.Swapout(ids[0])
}
