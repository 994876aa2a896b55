package book

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/marketfold/kalshi-trade/internal/stream"
)

// Tracker maintains one Book per market from a stream subscription.
type Tracker struct {
	logger *slog.Logger

	mu    sync.Mutex
	books map[string]*Book
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		logger: logger,
		books:  make(map[string]*Book),
	}
}

// Book returns the book for ticker, nil if no message for it has been
// seen yet.
func (t *Tracker) Book(ticker string) *Book {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.books[ticker]
}

// Tickers lists the markets seen so far.
func (t *Tracker) Tickers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.books))
	for ticker := range t.books {
		out = append(out, ticker)
	}
	return out
}

// InvalidateAll marks every book unsynced. Call this on reconnect,
// before the replayed subscription delivers fresh snapshots.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, b := range t.books {
		b.Invalidate()
	}
}

// Handler returns a stream handler for the orderbook channel. Snapshot
// and delta frames share one handler; the Side field distinguishes them
// on the wire.
func (t *Tracker) Handler() stream.Handler {
	return func(msg json.RawMessage) {
		var frame struct {
			MarketTicker string  `json:"market_ticker"`
			Yes          [][]int `json:"yes"`
			No           [][]int `json:"no"`
			Side         string  `json:"side"`
			Price        int     `json:"price"`
			Delta        int     `json:"delta"`
			Seq          int64   `json:"seq"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.logger.Debug("unparseable orderbook frame dropped", "error", err)
			return
		}
		if frame.MarketTicker == "" {
			return
		}

		b := t.book(frame.MarketTicker)

		if frame.Side == "" {
			b.ApplySnapshot(frame.Yes, frame.No, frame.Seq)
			return
		}

		if err := b.ApplyDelta(frame.Side, frame.Price, frame.Delta, frame.Seq); err != nil {
			// The book stays unsynced until the next snapshot.
			t.logger.Warn("orderbook delta rejected",
				"ticker", frame.MarketTicker,
				"seq", frame.Seq,
				"error", err,
			)
		}
	}
}

func (t *Tracker) book(ticker string) *Book {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.books[ticker]
	if !ok {
		b = New(ticker)
		t.books[ticker] = b
	}
	return b
}
