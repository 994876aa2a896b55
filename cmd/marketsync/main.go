// marketsync keeps the local Postgres market cache in sync with the
// exchange, polling the REST market list on an interval.
// Usage: go run ./cmd/marketsync --config configs/config.example.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketfold/kalshi-trade/internal/config"
	"github.com/marketfold/kalshi-trade/internal/poller"
	"github.com/marketfold/kalshi-trade/internal/provider"
	"github.com/marketfold/kalshi-trade/internal/store"
	"github.com/marketfold/kalshi-trade/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, env-only without it)")
	prune := flag.Duration("prune", 0, "delete settled markets not refreshed within this window (0 disables)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	logger.Info("marketsync starting", "version", version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.Host == "" {
		logger.Error("database.host is required for marketsync")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client := provider.New(cfg.API, logger).Get()
	if client == nil {
		logger.Error("exchange credentials required")
		os.Exit(1)
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	markets := store.NewMarketStore(pool, logger)
	if err := markets.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	if *prune > 0 {
		removed, err := markets.PruneSettled(ctx, *prune)
		if err != nil {
			logger.Warn("prune failed", "error", err)
		} else {
			logger.Info("pruned settled markets", "removed", removed)
		}
	}

	p := poller.New(cfg.Poller, client, markets, logger)
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Error("poller shutdown timed out", "error", err)
		os.Exit(1)
	}

	logger.Info("marketsync stopped")
}
