package api

import (
	"github.com/marketfold/kalshi-trade/internal/stream"
)

// ConnectWebSocket builds a new stream client sharing this client's
// credentials and signer. Each call returns a fresh client; a prior
// socket is never reused. The caller owns Connect and Close.
func (c *Client) ConnectWebSocket() *stream.Client {
	return stream.New(stream.Config{
		URL:    c.wsURL,
		Signer: c.signer,
		Logger: c.logger,
	})
}
