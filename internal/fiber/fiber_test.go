package fiber

import "testing"

func TestMerge(t *testing.T) {
	a := New(1, []Entry{{Col: 0, Val: 1}, {Col: 2, Val: 3}})
	b := New(2, []Entry{{Col: 1, Val: 5}, {Col: 2, Val: 4}})
	m := Merge(3, a, b)
	want := []Entry{{Col: 0, Val: 1}, {Col: 1, Val: 5}, {Col: 2, Val: 7}}
	if len(m.Entries) != len(want) {
		t.Fatalf("got %v want %v", m.Entries, want)
	}
	for i := range want {
		if m.Entries[i] != want[i] {
			t.Fatalf("entry %d: got %v want %v", i, m.Entries[i], want[i])
		}
	}
}

func TestMergeEmptySide(t *testing.T) {
	a := New(1, nil)
	b := New(2, []Entry{{Col: 0, Val: 9}})
	m := Merge(3, a, b)
	if len(m.Entries) != 1 || m.Entries[0].Val != 9 {
		t.Fatalf("unexpected merge result: %v", m.Entries)
	}
}

func TestChecksumStableAndSensitive(t *testing.T) {
	a := New(1, []Entry{{Col: 0, Val: 1}, {Col: 2, Val: 3}})
	b := New(1, []Entry{{Col: 0, Val: 1}, {Col: 2, Val: 3}})
	if a.Checksum() != b.Checksum() {
		t.Fatal("identical fibers must checksum identically")
	}
	c := New(1, []Entry{{Col: 0, Val: 1}, {Col: 2, Val: 4}})
	if a.Checksum() == c.Checksum() {
		t.Fatal("differing fibers should (overwhelmingly likely) checksum differently")
	}
}

func TestEmptyFiberChecksumZero(t *testing.T) {
	var f *Fiber
	if f.Checksum() != 0 {
		t.Fatal("nil fiber checksum must be 0")
	}
	empty := New(1, nil)
	if empty.Checksum() != 0 {
		t.Fatal("empty fiber checksum must be 0")
	}
}

func TestScaleAccumulate(t *testing.T) {
	row := New(5, []Entry{{Col: 0, Val: 2}, {Col: 1, Val: 3}})
	out := ScaleAccumulate(nil, 2.0, row)
	if len(out) != 2 || out[0].Val != 4 || out[1].Val != 6 {
		t.Fatalf("unexpected scale result: %v", out)
	}
	out2 := ScaleAccumulate(out, 1.0, row)
	if len(out2) != 2 || out2[0].Val != 6 || out2[1].Val != 9 {
		t.Fatalf("unexpected accumulate result: %v", out2)
	}
}
