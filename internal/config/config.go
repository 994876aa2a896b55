package config

import "time"

// Config is the root configuration for the trading platform services.
type Config struct {
	API      APIConfig                `yaml:"api"`
	Stream   StreamConfig             `yaml:"stream"`
	Database DBConfig                 `yaml:"database"`
	Poller   PollerConfig             `yaml:"poller"`
	Webhooks map[string]WebhookConfig `yaml:"webhooks"`
}

// APIConfig holds Kalshi REST and WebSocket settings. Credentials may
// be left empty; callers then run in read-from-cache mode.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	WSURL          string        `yaml:"ws_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (KALSHI-ACCESS-KEY header)
	PrivateKeyPEM  string        `yaml:"private_key"`      // RSA private key PEM text
	PrivateKeyPath string        `yaml:"private_key_path"` // alternative: path to PEM file
	Timeout        time.Duration `yaml:"timeout"`
}

// StreamConfig holds WebSocket reconnection settings.
type StreamConfig struct {
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"`
	AuthTimeout          time.Duration `yaml:"auth_timeout"`
}

// DBConfig holds the Postgres market-cache connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds market-sync settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	RatePerSec  float64       `yaml:"rate_per_sec"` // REST request pacing
	Status      string        `yaml:"status"`       // market status filter, default "open"
}

// WebhookConfig holds signature-verification settings for one inbound
// provider, keyed by provider name in Config.Webhooks.
type WebhookConfig struct {
	Scheme           string `yaml:"scheme"` // hmac | timestamped_hmac | rsa
	Secret           string `yaml:"secret"`
	PublicKeyPEM     string `yaml:"public_key"`
	ToleranceSeconds int    `yaml:"tolerance_seconds"`
}
