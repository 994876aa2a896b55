// Package book maintains local orderbook state from stream snapshots
// and incremental deltas. State is ephemeral: it is never authoritative
// and must be rebuilt from a fresh snapshot after any reconnect.
package book

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotSynced means a delta arrived before a snapshot, or after the
// book was invalidated. The caller should wait for the next snapshot.
var ErrNotSynced = errors.New("book: no snapshot applied")

// ErrSequenceGap means a delta skipped sequence numbers; intermediate
// updates were lost and the book can no longer be trusted.
var ErrSequenceGap = errors.New("book: sequence gap")

// Level is resting quantity at a price. Prices are integer cents.
type Level struct {
	Price    int
	Quantity int
}

// Book is one market's orderbook. The exchange sends only bids for
// each side; an ask is implied at 100-price on the opposite side.
type Book struct {
	mu     sync.RWMutex
	ticker string
	yes    map[int]int // price -> quantity, yes-side bids
	no     map[int]int
	seq    int64
	synced bool
}

// New creates an empty, unsynced book for ticker.
func New(ticker string) *Book {
	return &Book{
		ticker: ticker,
		yes:    make(map[int]int),
		no:     make(map[int]int),
	}
}

// Ticker returns the market this book tracks.
func (b *Book) Ticker() string {
	return b.ticker
}

// Synced reports whether a snapshot has been applied since creation or
// the last invalidation.
func (b *Book) Synced() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.synced
}

// ApplySnapshot replaces all levels. levels are [price, quantity]
// pairs as sent on the wire.
func (b *Book) ApplySnapshot(yes, no [][]int, seq int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.yes = levelsToMap(yes)
	b.no = levelsToMap(no)
	b.seq = seq
	b.synced = true
}

// ApplyDelta adjusts one price level. A zero or negative resulting
// quantity removes the level.
func (b *Book) ApplyDelta(side string, price, delta int, seq int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.synced {
		return ErrNotSynced
	}
	if b.seq != 0 && seq != 0 && seq != b.seq+1 {
		b.synced = false
		return ErrSequenceGap
	}
	b.seq = seq

	levels := b.yes
	if side == "no" {
		levels = b.no
	}

	q := levels[price] + delta
	if q <= 0 {
		delete(levels, price)
	} else {
		levels[price] = q
	}

	return nil
}

// Invalidate discards state after a reconnect. Deltas are rejected
// until the next snapshot.
func (b *Book) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.yes = make(map[int]int)
	b.no = make(map[int]int)
	b.seq = 0
	b.synced = false
}

// YesBids returns yes-side bids, best (highest price) first.
func (b *Book) YesBids() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedLevels(b.yes, true)
}

// NoBids returns no-side bids, best first.
func (b *Book) NoBids() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedLevels(b.no, true)
}

// YesAsks returns asks on the yes side, implied from no-side bids at
// 100-price, best (lowest price) first.
func (b *Book) YesAsks() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	asks := make([]Level, 0, len(b.no))
	for price, qty := range b.no {
		asks = append(asks, Level{Price: 100 - price, Quantity: qty})
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	return asks
}

// NoAsks returns asks on the no side, implied from yes-side bids.
func (b *Book) NoAsks() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	asks := make([]Level, 0, len(b.yes))
	for price, qty := range b.yes {
		asks = append(asks, Level{Price: 100 - price, Quantity: qty})
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	return asks
}

// BestYesBid returns the highest yes bid, 0 if the side is empty.
func (b *Book) BestYesBid() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	best := 0
	for price := range b.yes {
		if price > best {
			best = price
		}
	}
	return best
}

// BestYesAsk returns the lowest implied yes ask, 100 if empty.
func (b *Book) BestYesAsk() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	best := 100
	for price := range b.no {
		if ask := 100 - price; ask < best {
			best = ask
		}
	}
	return best
}

// Spread returns BestYesAsk - BestYesBid.
func (b *Book) Spread() int {
	return b.BestYesAsk() - b.BestYesBid()
}

func levelsToMap(levels [][]int) map[int]int {
	m := make(map[int]int, len(levels))
	for _, l := range levels {
		if len(l) != 2 || l[1] <= 0 {
			continue
		}
		m[l[0]] = l[1]
	}
	return m
}

func sortedLevels(m map[int]int, descending bool) []Level {
	out := make([]Level, 0, len(m))
	for price, qty := range m {
		out = append(out, Level{Price: price, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}
