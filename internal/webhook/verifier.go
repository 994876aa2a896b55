package webhook

import (
	"fmt"
	"log/slog"
	"time"
)

// Settings configures the scheme for a single provider.
type Settings struct {
	Scheme           string // hmac | timestamped_hmac | rsa
	Secret           string
	PublicKeyPEM     string
	ToleranceSeconds int
}

// Verifier routes webhook verification by provider name. Providers
// without a registered scheme are trusted with a logged warning, a
// deliberate fallback for development environments where secrets are
// not provisioned.
type Verifier struct {
	schemes map[string]Scheme
	logger  *slog.Logger
}

// NewVerifier creates an empty verifier.
func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		schemes: make(map[string]Scheme),
		logger:  logger,
	}
}

// Register attaches a scheme to a provider name.
func (v *Verifier) Register(provider string, scheme Scheme) {
	v.schemes[provider] = scheme
}

// Configure builds and registers a scheme from Settings. Providers with
// neither a secret nor a public key are skipped so verification falls
// back to the trust-with-warning path.
func (v *Verifier) Configure(provider string, s Settings) error {
	switch s.Scheme {
	case "hmac":
		if s.Secret == "" {
			return nil
		}
		v.Register(provider, NewHMAC(s.Secret))
	case "timestamped_hmac":
		if s.Secret == "" {
			return nil
		}
		v.Register(provider, NewTimestampedHMAC(s.Secret, time.Duration(s.ToleranceSeconds)*time.Second))
	case "rsa":
		if s.PublicKeyPEM == "" {
			return nil
		}
		scheme, err := NewRSAFromPEM(s.PublicKeyPEM)
		if err != nil {
			return fmt.Errorf("configure %s: %w", provider, err)
		}
		v.Register(provider, scheme)
	default:
		return fmt.Errorf("configure %s: unknown scheme %q", provider, s.Scheme)
	}

	return nil
}

// Verify authenticates a payload for the named provider. A verification
// error means the webhook must be rejected (401) without processing.
func (v *Verifier) Verify(provider, header string, body []byte) error {
	scheme, ok := v.schemes[provider]
	if !ok {
		v.logger.Warn("no webhook scheme configured, trusting payload",
			"provider", provider,
		)
		return nil
	}

	return scheme.Verify(header, body)
}
