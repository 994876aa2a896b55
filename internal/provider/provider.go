// Package provider constructs and caches the process-wide exchange
// client. It replaces a hidden module-level singleton with an explicit
// dependency built once at startup and threaded through callers.
package provider

import (
	"log/slog"
	"sync"

	"github.com/marketfold/kalshi-trade/internal/api"
	"github.com/marketfold/kalshi-trade/internal/auth"
	"github.com/marketfold/kalshi-trade/internal/config"
)

// Provider lazily builds one authenticated api.Client from
// configuration and hands out the same instance for the process
// lifetime.
type Provider struct {
	cfg    config.APIConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *api.Client
	warned bool
}

// New creates a Provider. No network or key parsing happens until the
// first Get.
func New(cfg config.APIConfig, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{cfg: cfg, logger: logger}
}

// Get returns the cached client, building it on first call. It returns
// nil — never panics — when credentials are missing or unusable, so
// every caller must branch and fall back to cached data.
func (p *Provider) Get() *api.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client
	}

	if p.cfg.APIKey == "" || (p.cfg.PrivateKeyPEM == "" && p.cfg.PrivateKeyPath == "") {
		p.warnOnce("exchange credentials not configured, client unavailable")
		return nil
	}

	var (
		signer *auth.Signer
		err    error
	)
	if p.cfg.PrivateKeyPEM != "" {
		signer, err = auth.NewSigner(p.cfg.APIKey, p.cfg.PrivateKeyPEM)
	} else {
		signer, err = auth.NewSignerFromFile(p.cfg.APIKey, p.cfg.PrivateKeyPath)
	}
	if err != nil {
		p.warnOnce("exchange private key unusable, client unavailable", "error", err)
		return nil
	}

	opts := []api.ClientOption{
		api.WithLogger(p.logger),
		api.WithWebSocketURL(p.cfg.WSURL),
	}
	if p.cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(p.cfg.Timeout))
	}

	p.client = api.NewClient(p.cfg.BaseURL, signer, opts...)
	p.logger.Info("exchange client initialized", "key_id", p.cfg.APIKey)

	return p.client
}

func (p *Provider) warnOnce(msg string, args ...any) {
	if p.warned {
		return
	}
	p.warned = true
	p.logger.Warn(msg, args...)
}
