// Package poller periodically refreshes the local market cache from
// the exchange REST API. It paces requests with a rate limiter so a
// large market universe cannot trip exchange rate limits.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/marketfold/kalshi-trade/internal/api"
	"github.com/marketfold/kalshi-trade/internal/config"
)

// pageSize is the markets page size requested per REST call.
const pageSize = 1000

// MarketLister is the REST surface the poller needs.
type MarketLister interface {
	GetMarkets(ctx context.Context, opts api.GetMarketsOptions) (*api.MarketsResponse, error)
}

// Sink receives fetched market pages.
type Sink interface {
	UpsertMarkets(ctx context.Context, markets []api.Market) (int, error)
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(ctx context.Context, markets []api.Market) (int, error)

func (f SinkFunc) UpsertMarkets(ctx context.Context, markets []api.Market) (int, error) {
	return f(ctx, markets)
}

// Poller runs the periodic market sync loop.
type Poller struct {
	cfg     config.PollerConfig
	client  MarketLister
	sink    Sink
	limiter *rate.Limiter
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Poller. cfg is assumed validated.
func New(cfg config.PollerConfig, client MarketLister, sink Sink, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		sink:    sink,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		logger:  logger,
	}
}

// Start begins the sync loop. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("market poller started",
		"interval", p.cfg.Interval,
		"status", p.cfg.Status,
		"rate_per_sec", p.cfg.RatePerSec,
	)

	return nil
}

// Stop shuts the loop down, waiting for an in-flight cycle to finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("market poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	if err := p.syncOnce(p.ctx); err != nil && p.ctx.Err() == nil {
		p.logger.Warn("market sync failed", "error", err)
	}

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.syncOnce(p.ctx); err != nil && p.ctx.Err() == nil {
				p.logger.Warn("market sync failed", "error", err)
			}
		}
	}
}

// syncOnce walks the paginated market list and hands each page to the
// sink. Fetching stays serial (the cursor chain forces it); sink writes
// run concurrently so a slow database does not stall the REST walk.
func (p *Poller) syncOnce(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	var pages, total int
	cursor := ""

	for {
		if err := p.limiter.Wait(gctx); err != nil {
			break
		}

		resp, err := p.client.GetMarkets(gctx, api.GetMarketsOptions{
			Limit:  pageSize,
			Cursor: cursor,
			Status: p.cfg.Status,
		})
		if err != nil {
			// Let in-flight sink writes finish before reporting.
			if werr := g.Wait(); werr != nil {
				p.logger.Warn("sink write failed", "error", werr)
			}
			return err
		}

		pages++
		total += len(resp.Markets)

		page := resp.Markets
		g.Go(func() error {
			_, err := p.sink.UpsertMarkets(gctx, page)
			return err
		})

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	if err := g.Wait(); err != nil {
		return err
	}

	p.logger.Info("market sync complete",
		"pages", pages,
		"markets", total,
		"duration", time.Since(start),
	)

	return nil
}
