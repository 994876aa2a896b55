// feedwatch subscribes to the Kalshi trade stream and prints live
// top-of-book for the given markets.
// Usage: go run ./cmd/feedwatch --config configs/config.example.yaml --tickers INXD-23DEC29
//
// Credentials come from config or environment:
//
//	KALSHI_API_KEY          - API key ID from the Kalshi dashboard
//	KALSHI_PRIVATE_KEY_PATH - path to the RSA private key PEM file
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketfold/kalshi-trade/internal/book"
	"github.com/marketfold/kalshi-trade/internal/config"
	"github.com/marketfold/kalshi-trade/internal/provider"
	"github.com/marketfold/kalshi-trade/internal/stream"
	"github.com/marketfold/kalshi-trade/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, env-only without it)")
	tickers := flag.String("tickers", "", "comma-separated market tickers to watch")
	showFills := flag.Bool("fills", false, "also print the account's fills")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	// Best-effort .env for local runs.
	godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	logger.Info("feedwatch starting", "version", version.String())

	if *tickers == "" {
		logger.Error("--tickers is required")
		os.Exit(1)
	}
	watch := strings.Split(*tickers, ",")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
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
		logger.Error("exchange credentials required",
			"api_key_set", cfg.API.APIKey != "",
			"private_key_set", cfg.API.PrivateKeyPEM != "" || cfg.API.PrivateKeyPath != "",
		)
		logger.Info("set KALSHI_API_KEY and KALSHI_PRIVATE_KEY_PATH")
		os.Exit(1)
	}

	ws := stream.New(stream.Config{
		URL:                  cfg.API.WSURL,
		Signer:               client.Signer(),
		Logger:               logger,
		AuthTimeout:          cfg.Stream.AuthTimeout,
		MaxReconnectAttempts: cfg.Stream.MaxReconnectAttempts,
		ReconnectBaseDelay:   cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:    cfg.Stream.ReconnectMaxDelay,
	})

	if err := ws.Connect(ctx); err != nil {
		logger.Error("failed to connect stream", "error", err)
		os.Exit(1)
	}
	defer ws.Close()

	tracker := book.NewTracker(logger)
	if err := ws.SubscribeOrderbook(watch, tracker.Handler()); err != nil {
		logger.Error("failed to subscribe orderbook", "error", err)
		os.Exit(1)
	}

	if *showFills {
		if err := ws.SubscribeFills(func(msg json.RawMessage) {
			fmt.Printf("fill: %s\n", msg)
		}); err != nil {
			logger.Error("failed to subscribe fills", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("watching markets", "tickers", watch)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("feedwatch stopped")
			return
		case <-ticker.C:
			if ws.State() == stream.StateClosed {
				logger.Error("stream closed, exiting")
				os.Exit(1)
			}
			printTopOfBook(tracker, watch)
		}
	}
}

func printTopOfBook(tracker *book.Tracker, tickers []string) {
	for _, t := range tickers {
		b := tracker.Book(t)
		if b == nil || !b.Synced() {
			fmt.Printf("%-30s (waiting for snapshot)\n", t)
			continue
		}
		fmt.Printf("%-30s bid %3d  ask %3d  spread %d\n",
			t, b.BestYesBid(), b.BestYesAsk(), b.Spread())
	}
}
