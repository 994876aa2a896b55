package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/marketfold/kalshi-trade/internal/auth"
)

// Default endpoints.
const (
	DefaultBaseURL = "https://trading-api.kalshi.com/trade-api/v2"
	DefaultWSURL   = "wss://trading-api.kalshi.com/trade-api/ws/v2"
)

// Client provides access to the Kalshi REST API.
type Client struct {
	baseURL  string
	basePath string // path component of baseURL, prepended to the signed path
	wsURL    string

	signer     *auth.Signer
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. The signer may be nil for
// public market-data endpoints; private endpoints will then fail with
// auth.ErrNotInitialized.
func NewClient(baseURL string, signer *auth.Signer, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		wsURL:   DefaultWSURL,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	if u, err := url.Parse(baseURL); err == nil {
		c.basePath = u.Path
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithWebSocketURL sets the URL used by ConnectWebSocket.
func WithWebSocketURL(wsURL string) ClientOption {
	return func(c *Client) {
		c.wsURL = wsURL
	}
}

// Signer returns the signer backing this client, nil if unauthenticated.
func (c *Client) Signer() *auth.Signer {
	return c.signer
}
