package stream

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/marketfold/kalshi-trade/internal/auth"
)

// Errors.
var (
	ErrNotConnected  = errors.New("stream: not connected")
	ErrAlreadyClosed = errors.New("stream: client closed")
	ErrAuthTimeout   = errors.New("stream: authentication timed out")
)

// State is the connection lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateAuthenticating
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscription channels.
const (
	ChannelOrderbookDelta = "orderbook_delta"
	ChannelOrderFill      = "order_fill"
	ChannelFill           = "fill"
)

// Inbound message types.
const (
	TypeOrderbookSnapshot = "orderbook_snapshot"
	TypeOrderbookDelta    = "orderbook_delta"
	TypeOrderFill         = "order_fill"
	TypeFill              = "fill"
	TypeOK                = "ok"
	TypeError             = "error"
)

// Command is a client-to-server frame.
type Command struct {
	Type   string `json:"type"` // auth | subscribe | unsubscribe
	Params any    `json:"params,omitempty"`
}

// AuthParams carries the signed WebSocket handshake.
type AuthParams struct {
	APIKey    string `json:"api_key"`
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

// SubscribeParams selects channels, optionally scoped to markets.
type SubscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// UnsubscribeParams removes channels.
type UnsubscribeParams struct {
	Channels []string `json:"channels"`
}

// ServerMessage is a server-to-client frame.
type ServerMessage struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// ErrorMsg is the payload of an "error" frame.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OrderbookSnapshotMsg is the payload of an orderbook_snapshot frame.
type OrderbookSnapshotMsg struct {
	MarketTicker string  `json:"market_ticker"`
	Yes          [][]int `json:"yes"`
	No           [][]int `json:"no"`
	Seq          int64   `json:"seq"`
}

// OrderbookDeltaMsg is the payload of an orderbook_delta frame. Delta
// is the signed change in resting quantity at the price level.
type OrderbookDeltaMsg struct {
	MarketTicker string `json:"market_ticker"`
	Side         string `json:"side"` // yes | no
	Price        int    `json:"price"`
	Delta        int    `json:"delta"`
	Seq          int64  `json:"seq"`
}

// Handler consumes the msg payload of an inbound frame. Handlers are
// invoked one at a time in arrival order on the read goroutine.
type Handler func(msg json.RawMessage)

// Config configures a stream Client.
type Config struct {
	URL    string
	Signer *auth.Signer
	Logger *slog.Logger

	HandshakeTimeout     time.Duration // WS dial timeout
	AuthTimeout          time.Duration // wait for server auth ack
	WriteTimeout         time.Duration // per-frame write deadline
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
}

// Defaults applied by New for zero-valued fields.
const (
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultAuthTimeout          = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectBaseDelay   = time.Second
	DefaultReconnectMaxDelay    = 30 * time.Second
)

func (cfg *Config) applyDefaults() {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.AuthTimeout == 0 {
		cfg.AuthTimeout = DefaultAuthTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if cfg.ReconnectBaseDelay == 0 {
		cfg.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay == 0 {
		cfg.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// ReconnectDelay returns the backoff delay before reconnect attempt n
// (1-based): base doubled per attempt, capped at max. With the defaults
// the schedule is 2s, 4s, 8s, 16s, 30s.
func ReconnectDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}
