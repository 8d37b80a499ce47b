package storage

import "github.com/RuiPMaia/spada-sim/internal/fiber"

// PsumStore maps a monotonically-issued psum address to a fiber. There
// is no indptr: every row is independently addressable (spec.md §3).
type PsumStore struct {
	fibers map[int64]*fiber.Fiber
	nextID int64

	ReadCount  uint64
	WriteCount uint64

	snap *psumSnapshot
}

// NewPsumStore builds an empty store. base is the first token issued —
// it must sit above every valid B-row index, since the cache routes a
// fiber-ID to B or psum storage by comparing it against this base
// (spec.md §4.1).
func NewPsumStore(base int64) *PsumStore {
	return &PsumStore{fibers: make(map[int64]*fiber.Fiber), nextID: base}
}

// Alloc issues a fresh psum address (a "token", spec.md glossary).
func (p *PsumStore) Alloc() int64 {
	id := p.nextID
	p.nextID++
	return id
}

// Get fetches a psum fiber by id, bumping ReadCount on success.
func (p *PsumStore) Get(id int64) (*fiber.Fiber, bool) {
	f, ok := p.fibers[id]
	if ok {
		p.ReadCount++
	}
	return f, ok
}

// Put stores (or replaces) a psum fiber, bumping WriteCount.
func (p *PsumStore) Put(f *fiber.Fiber) {
	p.fibers[f.ID] = f
	p.WriteCount++
}

// Delete removes a psum fiber once it has been consumed (e.g. by a
// merge-mode task) or consolidated. Deleting an absent id is a no-op.
func (p *PsumStore) Delete(id int64) { delete(p.fibers, id) }

// Contains reports presence without counting as a read (used by
// invariant checks, not simulation traffic).
func (p *PsumStore) Contains(id int64) bool {
	_, ok := p.fibers[id]
	return ok
}

// TakeSnapshot deep-copies the fiber map and counters.
func (p *PsumStore) TakeSnapshot() {
	cp := make(map[int64]*fiber.Fiber, len(p.fibers))
	for id, f := range p.fibers {
		cp[id] = f.Clone()
	}
	p.snap = &psumSnapshot{
		fibers:     cp,
		nextID:     p.nextID,
		readCount:  p.ReadCount,
		writeCount: p.WriteCount,
	}
}

// RestoreFromSnapshot is the symmetric counterpart of TakeSnapshot.
func (p *PsumStore) RestoreFromSnapshot() {
	if p.snap == nil {
		return
	}
	cp := make(map[int64]*fiber.Fiber, len(p.snap.fibers))
	for id, f := range p.snap.fibers {
		cp[id] = f.Clone()
	}
	p.fibers = cp
	p.nextID = p.snap.nextID
	p.ReadCount = p.snap.readCount
	p.WriteCount = p.snap.writeCount
}

// DropSnapshot releases the held snapshot.
func (p *PsumStore) DropSnapshot() { p.snap = nil }

// HasSnapshot reports whether a snapshot is currently held.
func (p *PsumStore) HasSnapshot() bool { return p.snap != nil }

type psumSnapshot struct {
	fibers     map[int64]*fiber.Fiber
	nextID     int64
	readCount  uint64
	writeCount uint64
}
