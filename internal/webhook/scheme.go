// Package webhook authenticates inbound webhook payloads before any
// processing. Each provider configures one signature scheme: plain
// HMAC, timestamped HMAC, or RSA. All schemes recompute the expected
// signature over the raw request body and compare in constant time.
package webhook

import "errors"

// Verification errors. All of them mean the webhook must be rejected
// with 401 and the payload discarded; the sender retries per its own
// delivery policy.
var (
	ErrMalformedHeader     = errors.New("webhook: malformed signature header")
	ErrSignatureMismatch   = errors.New("webhook: signature mismatch")
	ErrTimestampOutOfRange = errors.New("webhook: timestamp outside tolerance")
)

// Scheme verifies a raw payload against a provider-supplied signature
// header.
type Scheme interface {
	Verify(header string, body []byte) error
}
