// Package fiber holds the atomic unit of cache residency: an ordered,
// column-sorted (column-id, value) sequence keyed by an opaque fiber-ID
// (an input B row index, or a monotonically-issued psum address).
package fiber

import (
	"math"

	"blainsmith.com/go/seahash"
)

// Entry is a single (column, value) pair within a fiber.
type Entry struct {
	Col int32
	Val float64
}

// Fiber is one row of B, or one partial-sum vector. Invariant: Entries is
// sorted strictly increasing by Col.
type Fiber struct {
	ID      int64
	Entries []Entry
}

// New builds a Fiber from already column-sorted entries. Callers that
// cannot guarantee sortedness must go through Merge or sort explicitly;
// this constructor does not re-sort, matching the teacher's pattern of
// trusting the caller at hot-path construction sites.
func New(id int64, entries []Entry) *Fiber {
	return &Fiber{ID: id, Entries: entries}
}

// Empty reports whether the fiber carries no nonzeros.
func (f *Fiber) Empty() bool { return f == nil || len(f.Entries) == 0 }

// Size returns the element count, the unit fiber-cache capacity is
// measured in.
func (f *Fiber) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Entries)
}

// Clone deep-copies a fiber so cache callers never alias backing-store
// slices across a write-back.
func (f *Fiber) Clone() *Fiber {
	if f == nil {
		return nil
	}
	cp := make([]Entry, len(f.Entries))
	copy(cp, f.Entries)
	return &Fiber{ID: f.ID, Entries: cp}
}

// Merge set-unions column-ids across a and b, summing values on
// collision. Used by merge-mode tasks (spec.md §4.3) to reduce two psum
// fibers into one. The result carries resultID and is newly allocated;
// a and b are left untouched.
func Merge(resultID int64, a, b *Fiber) *Fiber {
	out := make([]Entry, 0, a.Size()+b.Size())
	i, j := 0, 0
	for i < len(a.Entries) && j < len(b.Entries) {
		ea, eb := a.Entries[i], b.Entries[j]
		switch {
		case ea.Col < eb.Col:
			out = append(out, ea)
			i++
		case ea.Col > eb.Col:
			out = append(out, eb)
			j++
		default:
			out = append(out, Entry{Col: ea.Col, Val: ea.Val + eb.Val})
			i++
			j++
		}
	}
	out = append(out, a.Entries[i:]...)
	out = append(out, b.Entries[j:]...)
	return &Fiber{ID: resultID, Entries: out}
}

// ScaleAccumulate folds a scalar multiply-accumulate (one A-element times
// a B-row) into dst's running entries, matching spec.md §4.3's "per-row
// scaled accumulation" — used while a window is still open, before its
// transient psum fiber is written through the cache. dst may be nil, in
// which case a fresh accumulator is returned.
func ScaleAccumulate(dst []Entry, scalar float64, row *Fiber) []Entry {
	if row.Empty() {
		return dst
	}
	scaled := make([]Entry, len(row.Entries))
	for i, e := range row.Entries {
		scaled[i] = Entry{Col: e.Col, Val: e.Val * scalar}
	}
	if dst == nil {
		return scaled
	}
	merged := Merge(0, &Fiber{Entries: dst}, &Fiber{Entries: scaled})
	return merged.Entries
}

// Checksum returns a fast content digest over the fiber's (col, value)
// pairs using seahash. This is diagnostic only: it is exposed through
// cache.FiberCache.Checksum and exercised by this package's tests
// (SPEC_FULL.md §6), never by cache-eviction or scheduling decisions, so
// it cannot perturb the deterministic simulation.
func (f *Fiber) Checksum() uint64 {
	if f.Empty() {
		return 0
	}
	h := seahash.New()
	buf := make([]byte, 12)
	for _, e := range f.Entries {
		putUint32(buf[0:4], uint32(e.Col))
		putUint64(buf[4:12], math.Float64bits(e.Val))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
