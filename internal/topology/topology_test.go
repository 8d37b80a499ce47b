package topology

import "testing"

func TestFindLeft(t *testing.T) {
	var tr Tracker
	tr.Record(0, 0, 1)
	tr.Record(0, 4, 2)
	tr.Record(0, 8, 3)

	col, tok, ok := tr.FindLeft(0, 8)
	if !ok || col != 4 || tok != 2 {
		t.Fatalf("got col=%d tok=%d ok=%v", col, tok, ok)
	}
	if _, _, ok := tr.FindLeft(0, 0); ok {
		t.Fatal("no anchor left of the first column should be found")
	}
}

func TestFindAboveTieBreak(t *testing.T) {
	var tr Tracker
	tr.Record(0, 0, 1)
	tr.Record(0, 10, 2)
	// query at col=4: left delta 4, right delta 6 -> picks left (0)
	col, tok, ok := tr.FindAbove(1, 4)
	if !ok || col != 0 || tok != 1 {
		t.Fatalf("got col=%d tok=%d ok=%v", col, tok, ok)
	}
	// query at col=7: left delta 7, right delta 3 -> picks right (10)
	col, tok, ok = tr.FindAbove(1, 7)
	if !ok || col != 10 || tok != 2 {
		t.Fatalf("got col=%d tok=%d ok=%v", col, tok, ok)
	}
	// exact tie: col=5, delta 5 both sides -> ties break toward smaller delta;
	// equal deltas favor the left (<=) per FindAbove's tie rule
	col, _, ok = tr.FindAbove(1, 5)
	if !ok || col != 0 {
		t.Fatalf("tie should favor left anchor, got col=%d", col)
	}
}

func TestFindAboveNoEarlierStripe(t *testing.T) {
	var tr Tracker
	tr.Record(0, 0, 1)
	if _, _, ok := tr.FindAbove(0, 0); ok {
		t.Fatal("no stripe above the first row-stripe should be found")
	}
}

func TestRecentAboveSpansStripes(t *testing.T) {
	var tr Tracker
	// three single-block stripes, as the scheduler records them (one
	// anchor per row-stripe at column 0).
	tr.Record(0, 0, 1)
	tr.Record(4, 0, 2)
	tr.Record(8, 0, 3)

	recents, ok := tr.RecentAbove(10, 2)
	if !ok || len(recents) != 2 {
		t.Fatalf("want 2 anchors drawn from the 2 nearest stripes, got %v ok=%v", recents, ok)
	}
	if recents[0].Token != 3 || recents[1].Token != 2 {
		t.Fatalf("want nearest-stripe-first order [3 2], got [%d %d]", recents[0].Token, recents[1].Token)
	}
}

func TestRecentAboveFewerStripesThanRequested(t *testing.T) {
	var tr Tracker
	tr.Record(0, 0, 1)

	recents, ok := tr.RecentAbove(4, 2)
	if !ok || len(recents) != 1 || recents[0].Token != 1 {
		t.Fatalf("want the single available anchor, got %v ok=%v", recents, ok)
	}
}

func TestRecentAboveNoEarlierStripe(t *testing.T) {
	var tr Tracker
	tr.Record(0, 0, 1)
	if _, ok := tr.RecentAbove(0, 2); ok {
		t.Fatal("no stripe above the first row-stripe should be found")
	}
}
