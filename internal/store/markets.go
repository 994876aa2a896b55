package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketfold/kalshi-trade/internal/api"
)

// ErrNotFound means no cached row exists for the ticker.
var ErrNotFound = errors.New("store: market not found")

const marketsSchema = `
CREATE TABLE IF NOT EXISTS markets (
	ticker        TEXT PRIMARY KEY,
	event_ticker  TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	result        TEXT NOT NULL DEFAULT '',
	yes_bid       INT NOT NULL DEFAULT 0,
	yes_ask       INT NOT NULL DEFAULT 0,
	last_price    INT NOT NULL DEFAULT 0,
	volume        BIGINT NOT NULL DEFAULT 0,
	open_interest BIGINT NOT NULL DEFAULT 0,
	close_time    TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS markets_status_idx ON markets (status);
CREATE INDEX IF NOT EXISTS markets_event_idx ON markets (event_ticker);
`

// MarketStore reads and refreshes the markets cache table.
type MarketStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewMarketStore wraps an existing pool.
func NewMarketStore(db *pgxpool.Pool, logger *slog.Logger) *MarketStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketStore{db: db, logger: logger}
}

// EnsureSchema creates the markets table and indexes if missing.
func (s *MarketStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, marketsSchema); err != nil {
		return fmt.Errorf("create markets schema: %w", err)
	}
	return nil
}

// UpsertMarkets writes one batch of markets, inserting new tickers and
// refreshing existing ones. Returns the number of rows written.
func (s *MarketStore) UpsertMarkets(ctx context.Context, markets []api.Market) (int, error) {
	if len(markets) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	start := time.Now()

	batch := &pgx.Batch{}
	for _, m := range markets {
		batch.Queue(`
			INSERT INTO markets (ticker, event_ticker, title, status, result, yes_bid, yes_ask, last_price, volume, open_interest, close_time, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (ticker) DO UPDATE SET
				event_ticker  = EXCLUDED.event_ticker,
				title         = EXCLUDED.title,
				status        = EXCLUDED.status,
				result        = EXCLUDED.result,
				yes_bid       = EXCLUDED.yes_bid,
				yes_ask       = EXCLUDED.yes_ask,
				last_price    = EXCLUDED.last_price,
				volume        = EXCLUDED.volume,
				open_interest = EXCLUDED.open_interest,
				close_time    = EXCLUDED.close_time,
				updated_at    = EXCLUDED.updated_at
		`, m.Ticker, m.EventTicker, m.Title, m.Status, m.Result,
			m.YesBid, m.YesAsk, m.LastPrice, m.Volume, m.OpenInterest,
			m.CloseTime, now)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range markets {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("upsert markets: %w", err)
		}
	}

	s.logger.Debug("markets upserted",
		"count", len(markets),
		"duration", time.Since(start),
	)

	return len(markets), nil
}

// GetMarket reads one cached market by ticker.
func (s *MarketStore) GetMarket(ctx context.Context, ticker string) (*api.Market, error) {
	row := s.db.QueryRow(ctx, `
		SELECT ticker, event_ticker, title, status, result, yes_bid, yes_ask, last_price, volume, open_interest, close_time
		FROM markets WHERE ticker = $1
	`, ticker)

	var m api.Market
	err := row.Scan(&m.Ticker, &m.EventTicker, &m.Title, &m.Status, &m.Result,
		&m.YesBid, &m.YesAsk, &m.LastPrice, &m.Volume, &m.OpenInterest, &m.CloseTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}

	return &m, nil
}

// ListMarkets reads cached markets, optionally filtered by status.
func (s *MarketStore) ListMarkets(ctx context.Context, status string) ([]api.Market, error) {
	query := `
		SELECT ticker, event_ticker, title, status, result, yes_bid, yes_ask, last_price, volume, open_interest, close_time
		FROM markets
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY ticker`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var markets []api.Market
	for rows.Next() {
		var m api.Market
		if err := rows.Scan(&m.Ticker, &m.EventTicker, &m.Title, &m.Status, &m.Result,
			&m.YesBid, &m.YesAsk, &m.LastPrice, &m.Volume, &m.OpenInterest, &m.CloseTime); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		markets = append(markets, m)
	}

	return markets, rows.Err()
}

// PruneSettled deletes settled markets not refreshed within olderThan.
// The cache only serves live lookups; history belongs to the exchange.
func (s *MarketStore) PruneSettled(ctx context.Context, olderThan time.Duration) (int64, error) {
	ct, err := s.db.Exec(ctx, `
		DELETE FROM markets WHERE status = 'settled' AND updated_at < $1
	`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune settled markets: %w", err)
	}
	return ct.RowsAffected(), nil
}
