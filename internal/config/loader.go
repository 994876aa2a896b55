package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands ${VAR} environment variables,
// applies environment overrides, defaults, and validation. An empty
// path yields an environment-only configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyEnv lets environment variables override file values. These are
// the canonical deployment knobs; the YAML file is a convenience.
func (c *Config) applyEnv() {
	if v := os.Getenv("KALSHI_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("KALSHI_WS_URL"); v != "" {
		c.API.WSURL = v
	}
	if v := os.Getenv("KALSHI_API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("KALSHI_PRIVATE_KEY"); v != "" {
		c.API.PrivateKeyPEM = v
	}
	if v := os.Getenv("KALSHI_PRIVATE_KEY_PATH"); v != "" {
		c.API.PrivateKeyPath = v
	}

	// <PROVIDER>_WEBHOOK_SECRET / <PROVIDER>_WEBHOOK_PUBLIC_KEY
	// override per-provider webhook credentials.
	for name, wh := range c.Webhooks {
		prefix := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if v := os.Getenv(prefix + "_WEBHOOK_SECRET"); v != "" {
			wh.Secret = v
		}
		if v := os.Getenv(prefix + "_WEBHOOK_PUBLIC_KEY"); v != "" {
			wh.PublicKeyPEM = v
		}
		c.Webhooks[name] = wh
	}
}
