// Package cache implements the shared fiber cache (spec.md §4.1): an
// LRU cache of B-rows and psums, keyed by fiber-ID, backed by read-only
// B-storage and read-write psum-storage.
package cache

import (
	"container/list"

	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/RuiPMaia/spada-sim/internal/simerr"
	"github.com/RuiPMaia/spada-sim/internal/telemetry"
)

// BStore is the read-only backing source for B-row fibers.
type BStore interface {
	Row(id int) *fiber.Fiber
}

// PsumStore is the read-write backing source for psum fibers.
type PsumStore interface {
	Get(id int64) (*fiber.Fiber, bool)
	Put(f *fiber.Fiber)
	Delete(id int64)
}

// FiberCache is an LRU cache of capacity C elements (spec.md §4.1). Each
// fiber-ID is routed to exactly one backing store by id range. A cached
// B-row also stays in B-storage, and a psum fetched into the cache on a
// read miss keeps its psum-storage copy, so a cached ID can also be
// present in its backing store.
type FiberCache struct {
	capacity int // C, in elements
	wordByte int // W
	psumBase int64

	b     BStore
	psum  PsumStore
	log   telemetry.Logger
	order *list.List // front = most-recently-used
	index map[int64]*list.Element
	curr  int // sum of resident fiber sizes

	ReadCount      uint64
	WriteCount     uint64
	MissCount      uint64
	BEvictCount    uint64
	PsumEvictCount uint64

	snap *snapshot
}

type entryNode struct {
	id int64
	f  *fiber.Fiber
}

// New builds a cache of the given element capacity, backed by b for
// fiber-IDs < psumBase and by psum otherwise (spec.md §4.1 "backing
// source... by id range").
func New(capacity, wordByte int, psumBase int64, b BStore, psum PsumStore, log telemetry.Logger) *FiberCache {
	return &FiberCache{
		capacity: capacity,
		wordByte: wordByte,
		psumBase: psumBase,
		b:        b,
		psum:     psum,
		log:      log,
		order:    list.New(),
		index:    make(map[int64]*list.Element),
	}
}

func (c *FiberCache) isB(id int64) bool { return id < c.psumBase }

// Capability returns C, the element capacity.
func (c *FiberCache) Capability() int { return c.capacity }

// CurNum returns current occupancy in elements.
func (c *FiberCache) CurNum() int { return c.curr }

func (c *FiberCache) touch(el *list.Element) { c.order.MoveToFront(el) }

// Read fetches a fiber by id. On hit it bumps LRU recency and
// ReadCount. On miss it fetches from the appropriate backing store,
// inserts into the cache (evicting LRU entries until it fits), and
// bumps MissCount and ReadCount. A fiber (B-row or psum) too large for
// the cache in its entirety is served through without insertion (documented
// fall-through, spec.md §4.1) — miss_count/read_count still increment,
// but cur_num is left unchanged.
func (c *FiberCache) Read(id int64) (*fiber.Fiber, error) {
	if el, ok := c.index[id]; ok {
		c.touch(el)
		c.ReadCount++
		return el.Value.(*entryNode).f, nil
	}

	c.MissCount++
	c.ReadCount++

	var f *fiber.Fiber
	if c.isB(id) {
		f = c.b.Row(int(id))
	} else {
		got, ok := c.psum.Get(id)
		if !ok {
			return nil, simerr.Invariant(simerr.MissingFiber, map[string]any{"fiber_id": id},
				"psum fiber %d absent from cache and backing store", id)
		}
		f = got
	}

	if f.Size() > c.capacity {
		c.log.WithField("fiber_id", id).WithField("size", f.Size()).Debugf("fall-through read: fiber larger than cache capacity")
		return f, nil
	}

	c.evictUntilFits(f.Size())
	c.insert(f)
	return f, nil
}

// Write inserts or replaces a fiber, bumping WriteCount and evicting LRU
// entries until capacity holds. Evicted B-fibers are simply dropped (B
// is read-only backing); evicted psum fibers flush to psum-storage,
// bumping PsumEvictCount.
func (c *FiberCache) Write(f *fiber.Fiber) error {
	c.WriteCount++
	if existing, ok := c.index[f.ID]; ok {
		c.curr -= existing.Value.(*entryNode).f.Size()
		c.order.Remove(existing)
		delete(c.index, f.ID)
	}
	if f.Size() > c.capacity {
		// Cannot be cache-resident; write straight through to backing.
		if c.isB(f.ID) {
			return simerr.Invariant(simerr.CacheOverflow, map[string]any{"fiber_id": f.ID, "size": f.Size()},
				"B-fiber %d exceeds cache capacity and has no backing write path", f.ID)
		}
		c.psum.Put(f)
		return nil
	}
	c.evictUntilFits(f.Size())
	c.insert(f)
	return nil
}

// Swapout flushes a psum fiber from cache to psum-storage and removes it
// from the cache; a no-op if absent. Called by the engine
// (core.maybeSwapout) when a row becomes eligible for consolidation
// (spec.md §4.1).
func (c *FiberCache) Swapout(id int64) error {
	el, ok := c.index[id]
	if !ok {
		return nil
	}
	node := el.Value.(*entryNode)
	if c.isB(id) {
		return simerr.Invariant(simerr.DoubleSwapout, map[string]any{"fiber_id": id},
			"swapout requested for B-fiber %d, which has no psum backing", id)
	}
	c.psum.Put(node.f)
	c.removeNode(el)
	return nil
}

// Consume reads and removes a fiber, falling through to backing storage
// on a miss. It does not count as an eviction — used by merge-mode tasks
// (spec.md §4.3) which always replace the two consumed ids with a fresh
// one.
func (c *FiberCache) Consume(id int64) (*fiber.Fiber, error) {
	if el, ok := c.index[id]; ok {
		node := el.Value.(*entryNode)
		c.removeNode(el)
		c.ReadCount++
		return node.f, nil
	}
	c.MissCount++
	c.ReadCount++
	if c.isB(id) {
		return c.b.Row(int(id)), nil
	}
	f, ok := c.psum.Get(id)
	if !ok {
		return nil, simerr.Invariant(simerr.MissingFiber, map[string]any{"fiber_id": id},
			"psum fiber %d absent on consume", id)
	}
	c.psum.Delete(id)
	return f, nil
}

func (c *FiberCache) insert(f *fiber.Fiber) {
	el := c.order.PushFront(&entryNode{id: f.ID, f: f})
	c.index[f.ID] = el
	c.curr += f.Size()
}

func (c *FiberCache) removeNode(el *list.Element) {
	node := el.Value.(*entryNode)
	c.curr -= node.f.Size()
	c.order.Remove(el)
	delete(c.index, node.id)
}

// evictUntilFits evicts least-recently-used entries (tie-break: earliest
// insertion, which list.List's back-to-front order already encodes)
// until incoming fits within capacity.
func (c *FiberCache) evictUntilFits(incoming int) {
	for c.curr+incoming > c.capacity {
		back := c.order.Back()
		if back == nil {
			return
		}
		node := back.Value.(*entryNode)
		c.removeNode(back)
		if c.isB(node.id) {
			c.BEvictCount++
		} else {
			c.PsumEvictCount++
			c.psum.Put(node.f)
		}
	}
}

// Checksum exposes a fast content digest of a resident fiber (SPEC_FULL.md
// §6); it does not read through to backing storage and never perturbs LRU
// order or counters. Neither the simulation nor the report calls it.
func (c *FiberCache) Checksum(id int64) (uint64, bool) {
	el, ok := c.index[id]
	if !ok {
		return 0, false
	}
	return el.Value.(*entryNode).f.Checksum(), true
}
