package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/marketfold/kalshi-trade/internal/api"
	"github.com/marketfold/kalshi-trade/internal/config"
)

// mockSink collects upserted markets.
type mockSink struct {
	mu      sync.Mutex
	markets []api.Market
}

func (s *mockSink) UpsertMarkets(ctx context.Context, markets []api.Market) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets = append(s.markets, markets...)
	return len(markets), nil
}

func testConfig() config.PollerConfig {
	return config.PollerConfig{
		Interval:    time.Hour, // cycles triggered manually
		Concurrency: 4,
		RatePerSec:  1000,
		Status:      "open",
	}
}

func TestSyncOnce_PaginatesIntoSink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "open" {
			t.Errorf("status query = %q, want open", got)
		}

		switch r.URL.Query().Get("cursor") {
		case "":
			json.NewEncoder(w).Encode(api.MarketsResponse{
				Markets: []api.Market{{Ticker: "A", Status: "open"}, {Ticker: "B", Status: "open"}},
				Cursor:  "next",
			})
		default:
			json.NewEncoder(w).Encode(api.MarketsResponse{
				Markets: []api.Market{{Ticker: "C", Status: "open"}},
			})
		}
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)
	sink := &mockSink{}
	p := New(testConfig(), client, sink, nil)

	if err := p.syncOnce(context.Background()); err != nil {
		t.Fatalf("syncOnce failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.markets) != 3 {
		t.Fatalf("sink received %d markets, want 3", len(sink.markets))
	}
}

func TestSyncOnce_PropagatesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)
	p := New(testConfig(), client, &mockSink{}, nil)

	if err := p.syncOnce(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestStartStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.MarketsResponse{
			Markets: []api.Market{{Ticker: "A", Status: "open"}},
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)
	sink := &mockSink{}
	p := New(testConfig(), client, sink, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The first cycle runs immediately; give it a moment.
	deadline := time.Now().Add(5 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.markets)
		sink.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first sync cycle never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
