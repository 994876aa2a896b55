package config

import (
	"errors"
	"fmt"
)

// Validate checks value ranges. Missing exchange credentials are legal:
// callers degrade to cached data when the client is unavailable.
func (c *Config) Validate() error {
	if c.API.APIKey != "" && c.API.PrivateKeyPEM == "" && c.API.PrivateKeyPath == "" {
		return errors.New("api.api_key is set but no private key is configured")
	}
	if c.API.PrivateKeyPEM != "" && c.API.PrivateKeyPath != "" {
		return errors.New("api.private_key and api.private_key_path are mutually exclusive")
	}

	if c.Stream.MaxReconnectAttempts < 1 {
		return errors.New("stream.max_reconnect_attempts must be >= 1")
	}
	if c.Stream.ReconnectBaseDelay > c.Stream.ReconnectMaxDelay {
		return fmt.Errorf("stream.reconnect_base_delay (%v) cannot exceed reconnect_max_delay (%v)",
			c.Stream.ReconnectBaseDelay, c.Stream.ReconnectMaxDelay)
	}

	if c.Database.Host != "" {
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}
	if c.Poller.RatePerSec <= 0 {
		return errors.New("poller.rate_per_sec must be > 0")
	}

	for name, wh := range c.Webhooks {
		switch wh.Scheme {
		case "hmac", "timestamped_hmac", "rsa":
		default:
			return fmt.Errorf("webhooks.%s.scheme must be hmac, timestamped_hmac or rsa", name)
		}
	}

	return nil
}
