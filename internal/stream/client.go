// Package stream maintains one authenticated WebSocket connection to
// the Kalshi trade stream: subscribe to channels, dispatch inbound
// frames to per-channel handlers, and reconnect with bounded
// exponential backoff.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marketfold/kalshi-trade/internal/auth"
)

// subscription remembers an active channel so it can be replayed after
// a reconnect.
type subscription struct {
	channel string
	tickers []string
	types   []string // inbound frame types this channel produces
	handler Handler
}

// Client is a single-connection stream client. All exported methods are
// safe for concurrent use; handlers run sequentially on the read
// goroutine, so a reconnect resets message ordering and any state
// derived from the stream must be rebuilt from the next snapshot.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	closed   bool
	authWait chan error
	handlers map[string]Handler
	subs     map[string]*subscription

	writeMu sync.Mutex
}

// New creates a stream client. Connect must be called before use.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		cfg:      cfg,
		logger:   cfg.Logger,
		state:    StateIdle,
		handlers: make(map[string]Handler),
		subs:     make(map[string]*subscription),
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the client is authenticated and live.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect dials the stream, authenticates, and waits for the server's
// auth ack. A transport or authentication failure on this first attempt
// is returned to the caller; failures on an established connection
// trigger automatic reconnection instead.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.state = StateConnecting
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		c.mu.Lock()
		if !c.closed {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return err
	}

	return nil
}

// connect performs one dial + authenticate cycle.
func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	authCh := make(chan error, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return ErrAlreadyClosed
	}
	c.conn = conn
	c.state = StateAuthenticating
	c.authWait = authCh
	c.mu.Unlock()

	go c.readLoop(conn)

	if err := c.sendAuth(conn); err != nil {
		c.detach(conn)
		conn.Close()
		return fmt.Errorf("send auth: %w", err)
	}

	select {
	case err := <-authCh:
		if err != nil {
			c.detach(conn)
			conn.Close()
			return fmt.Errorf("authenticate: %w", err)
		}
	case <-time.After(c.cfg.AuthTimeout):
		c.detach(conn)
		conn.Close()
		return ErrAuthTimeout
	case <-ctx.Done():
		c.detach(conn)
		conn.Close()
		return ctx.Err()
	}

	c.mu.Lock()
	c.state = StateConnected
	c.authWait = nil
	c.mu.Unlock()

	c.logger.Debug("stream connected", "url", c.cfg.URL)
	return nil
}

// sendAuth writes the signed auth frame directly on conn (the client is
// not yet in the connected state).
func (c *Client) sendAuth(conn *websocket.Conn) error {
	if c.cfg.Signer == nil {
		return auth.ErrNotInitialized
	}

	ts := auth.Timestamp()
	signature, err := c.cfg.Signer.SignWebSocket(ts)
	if err != nil {
		return err
	}

	cmd := Command{
		Type: "auth",
		Params: AuthParams{
			APIKey:    c.cfg.Signer.KeyID(),
			Timestamp: ts,
			Signature: signature,
		},
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// detach disowns conn so its readLoop exit does not trigger reconnect.
func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.authWait = nil
	}
	c.mu.Unlock()
}

// readLoop reads frames until the connection drops, routing the auth
// ack to a waiting Connect and everything else to channel handlers.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("unparseable frame dropped", "error", err)
			continue
		}

		c.mu.Lock()
		waiting := c.authWait
		if waiting != nil && (msg.Type == TypeOK || msg.Type == TypeError) {
			c.authWait = nil
			c.mu.Unlock()

			if msg.Type == TypeError {
				var em ErrorMsg
				json.Unmarshal(msg.Msg, &em)
				waiting <- fmt.Errorf("%s: %s", em.Code, em.Message)
			} else {
				waiting <- nil
			}
			continue
		}
		handler := c.handlers[msg.Type]
		c.mu.Unlock()

		if handler == nil {
			// Unregistered types (including subscribe acks) are dropped.
			continue
		}

		handler(msg.Msg)
	}
}

// handleDisconnect runs when a connection's read loop exits.
func (c *Client) handleDisconnect(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.closed || c.conn != conn {
		// Explicit close, or a stale reader for a replaced connection.
		c.mu.Unlock()
		return
	}
	c.conn = nil

	if waiting := c.authWait; waiting != nil {
		// Transport failed while a Connect was in flight; reject it
		// there instead of starting the reconnect loop.
		c.authWait = nil
		c.mu.Unlock()
		waiting <- err
		return
	}

	c.state = StateReconnecting
	c.mu.Unlock()

	c.logger.Warn("stream connection lost", "error", err)
	go c.reconnectLoop()
}

// reconnectLoop retries the connection up to MaxReconnectAttempts with
// exponentially increasing delays. Exhausting the attempts is terminal:
// the caller must recreate the client.
func (c *Client) reconnectLoop() {
	for attempt := 1; attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		delay := ReconnectDelay(attempt, c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay)
		c.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

		time.Sleep(delay)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		if err := c.connect(context.Background()); err != nil {
			c.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		c.resubscribe()
		return
	}

	c.mu.Lock()
	c.closed = true
	c.state = StateClosed
	c.mu.Unlock()

	c.logger.Error("reconnect attempts exhausted, stream requires recreation",
		"attempts", c.cfg.MaxReconnectAttempts,
	)
}

// resubscribe replays the remembered subscription set on a fresh
// connection. Server-side ordering restarts: orderbook state must be
// rebuilt from the snapshots that follow.
func (c *Client) resubscribe() {
	c.mu.Lock()
	subs := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		if err := c.sendSubscribe(sub.channel, sub.tickers); err != nil {
			c.logger.Warn("resubscribe failed", "channel", sub.channel, "error", err)
		}
	}
}

// SubscribeOrderbook registers onUpdate for orderbook snapshots and
// deltas on the given markets and subscribes the orderbook_delta
// channel. The last registration for a channel wins.
func (c *Client) SubscribeOrderbook(tickers []string, onUpdate Handler) error {
	c.register(&subscription{
		channel: ChannelOrderbookDelta,
		tickers: tickers,
		types:   []string{TypeOrderbookSnapshot, TypeOrderbookDelta},
		handler: onUpdate,
	})
	return c.sendSubscribe(ChannelOrderbookDelta, tickers)
}

// SubscribeOrders registers onUpdate for updates to the account's own
// orders.
func (c *Client) SubscribeOrders(onUpdate Handler) error {
	c.register(&subscription{
		channel: ChannelOrderFill,
		types:   []string{TypeOrderFill},
		handler: onUpdate,
	})
	return c.sendSubscribe(ChannelOrderFill, nil)
}

// SubscribeFills registers onFill for the account's trade executions.
func (c *Client) SubscribeFills(onFill Handler) error {
	c.register(&subscription{
		channel: ChannelFill,
		types:   []string{TypeFill},
		handler: onFill,
	})
	return c.sendSubscribe(ChannelFill, nil)
}

// Unsubscribe removes the channel's handler and tells the server to
// stop. In-flight messages may still arrive until the server processes
// the request; with the handler gone they are dropped.
func (c *Client) Unsubscribe(channel string) error {
	c.mu.Lock()
	sub, ok := c.subs[channel]
	if ok {
		delete(c.subs, channel)
		for _, t := range sub.types {
			delete(c.handlers, t)
		}
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}

	return c.send(Command{
		Type:   "unsubscribe",
		Params: UnsubscribeParams{Channels: []string{channel}},
	})
}

func (c *Client) register(sub *subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs[sub.channel] = sub
	for _, t := range sub.types {
		c.handlers[t] = sub.handler
	}
}

func (c *Client) sendSubscribe(channel string, tickers []string) error {
	return c.send(Command{
		Type: "subscribe",
		Params: SubscribeParams{
			Channels:      []string{channel},
			MarketTickers: tickers,
		},
	})
}

// send writes a frame on the live connection. Returns ErrNotConnected
// when the socket is down rather than dropping the frame silently.
func (c *Client) send(cmd Command) error {
	c.mu.Lock()
	conn := c.conn
	ready := c.state == StateConnected
	c.mu.Unlock()

	if conn == nil || !ready {
		return ErrNotConnected
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the connection down permanently. No reconnect attempts
// follow an explicit close.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = StateClosed
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}

	return nil
}
