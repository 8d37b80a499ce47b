package cache

import (
	"bytes"
	"container/list"
	"encoding/gob"

	"github.com/RuiPMaia/spada-sim/internal/fiber"
	"github.com/golang/snappy"
)

// snapshot holds a point-in-time copy of the cache's own state
// (contents, LRU order, counters), compressed so that a speculative
// oracle search (spec.md §4.2) can hold many of these without the
// memory cost of a live object graph per attempt. Grounded on
// grailbio-bio/cmd/bio-bam-sort/sorter/sortshard.go's
// snappy.Encode/snappy.Decode pairing.
type snapshot struct {
	compressed []byte

	readCount, writeCount               uint64
	missCount, bEvictCount, psumEvict    uint64
}

type wireState struct {
	Order []int64 // front-to-back fiber-ID order
	Data  map[int64][]fiber.Entry
}

// TakeSnapshot captures the cache's own state only: resident fibers, LRU
// order and the cache counters. The backing B and psum stores are not
// captured, and RestoreFromSnapshot leaves their contents and counters as
// they are. DropSnapshot is mandatory before the next
// TakeSnapshot (spec.md §5); calling TakeSnapshot while one is already
// held overwrites it, which callers must not rely on.
func (c *FiberCache) TakeSnapshot() error {
	ws := wireState{Data: make(map[int64][]fiber.Entry, len(c.index))}
	for el := c.order.Front(); el != nil; el = el.Next() {
		node := el.Value.(*entryNode)
		ws.Order = append(ws.Order, node.id)
		ws.Data[node.id] = node.f.Entries
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ws); err != nil {
		return err
	}

	c.snap = &snapshot{
		compressed: snappy.Encode(nil, buf.Bytes()),
		readCount:  c.ReadCount,
		writeCount: c.WriteCount,
		missCount:  c.MissCount,
		bEvictCount: c.BEvictCount,
		psumEvict:  c.PsumEvictCount,
	}
	return nil
}

// RestoreFromSnapshot is the symmetric counterpart of TakeSnapshot; it
// leaves the cache bitwise identical (content- and counter-wise) to the
// state at the matching TakeSnapshot call (spec.md §8 snapshot
// round-trip property).
func (c *FiberCache) RestoreFromSnapshot() error {
	if c.snap == nil {
		return nil
	}
	raw, err := snappy.Decode(nil, c.snap.compressed)
	if err != nil {
		return err
	}
	var ws wireState
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&ws); err != nil {
		return err
	}

	c.order = list.New()
	c.index = make(map[int64]*list.Element, len(ws.Order))
	c.curr = 0
	for _, id := range ws.Order {
		f := &fiber.Fiber{ID: id, Entries: ws.Data[id]}
		el := c.order.PushBack(&entryNode{id: id, f: f})
		c.index[id] = el
		c.curr += f.Size()
	}

	c.ReadCount = c.snap.readCount
	c.WriteCount = c.snap.writeCount
	c.MissCount = c.snap.missCount
	c.BEvictCount = c.snap.bEvictCount
	c.PsumEvictCount = c.snap.psumEvict
	return nil
}

// DropSnapshot releases the held snapshot.
func (c *FiberCache) DropSnapshot() { c.snap = nil }

// HasSnapshot reports whether a snapshot is currently held. The oracle
// search (engine.RunOracle) snapshots A and B's counters through
// storage.CSR and does not use the cache snapshot.
func (c *FiberCache) HasSnapshot() bool { return c.snap != nil }
