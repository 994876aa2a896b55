package book

import (
	"encoding/json"
	"testing"
)

func TestTracker_SnapshotThenDelta(t *testing.T) {
	tr := NewTracker(nil)
	h := tr.Handler()

	h(json.RawMessage(`{"market_ticker":"INXD-23DEC29","yes":[[40,100]],"no":[[55,200]],"seq":1}`))
	h(json.RawMessage(`{"market_ticker":"INXD-23DEC29","side":"yes","price":41,"delta":50,"seq":2}`))

	b := tr.Book("INXD-23DEC29")
	if b == nil {
		t.Fatal("no book created")
	}
	if got := b.BestYesBid(); got != 41 {
		t.Errorf("BestYesBid = %d, want 41", got)
	}
	if got := b.BestYesAsk(); got != 45 {
		t.Errorf("BestYesAsk = %d, want 45", got)
	}
}

func TestTracker_DeltaBeforeSnapshotIgnored(t *testing.T) {
	tr := NewTracker(nil)
	h := tr.Handler()

	h(json.RawMessage(`{"market_ticker":"X","side":"yes","price":40,"delta":10,"seq":5}`))

	b := tr.Book("X")
	if b == nil {
		t.Fatal("no book created")
	}
	if b.Synced() {
		t.Error("book synced without a snapshot")
	}
}

func TestTracker_InvalidateAll(t *testing.T) {
	tr := NewTracker(nil)
	h := tr.Handler()

	h(json.RawMessage(`{"market_ticker":"A","yes":[[40,100]],"seq":1}`))
	h(json.RawMessage(`{"market_ticker":"B","yes":[[30,50]],"seq":1}`))

	tr.InvalidateAll()

	for _, ticker := range []string{"A", "B"} {
		if tr.Book(ticker).Synced() {
			t.Errorf("book %s still synced after InvalidateAll", ticker)
		}
	}
}
