package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACScheme verifies a hex-encoded HMAC-SHA256 of the raw body.
type HMACScheme struct {
	secret []byte
}

// NewHMAC builds a plain HMAC scheme.
func NewHMAC(secret string) *HMACScheme {
	return &HMACScheme{secret: []byte(secret)}
}

// Verify compares the header's hex signature against
// HMAC-SHA256(secret, body). hmac.Equal handles mismatched lengths
// without branching on content.
func (s *HMACScheme) Verify(header string, body []byte) error {
	provided, err := hex.DecodeString(header)
	if err != nil {
		return ErrMalformedHeader
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)

	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}

	return nil
}
