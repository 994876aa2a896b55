package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far a webhook timestamp may drift from the
// local clock before the delivery is treated as a replay.
const DefaultTolerance = 300 * time.Second

// TimestampedHMACScheme verifies headers of the form
// "t=<unix_seconds>,v1=<hex_signature>" where the signed message is
// "{timestamp}.{body}". Binding the timestamp into the signature makes
// a captured delivery unreplayable outside the tolerance window.
type TimestampedHMACScheme struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewTimestampedHMAC builds a timestamped HMAC scheme. A zero tolerance
// means DefaultTolerance.
func NewTimestampedHMAC(secret string, tolerance time.Duration) *TimestampedHMACScheme {
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	return &TimestampedHMACScheme{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Verify checks the timestamp window first, then the signature.
func (s *TimestampedHMACScheme) Verify(header string, body []byte) error {
	ts, sig, err := parseTimestampedHeader(header)
	if err != nil {
		return err
	}

	sent := time.Unix(ts, 0)
	if drift := s.now().Sub(sent); drift > s.tolerance || drift < -s.tolerance {
		return ErrTimestampOutOfRange
	}

	provided, err := hex.DecodeString(sig)
	if err != nil {
		return ErrMalformedHeader
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)

	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}

	return nil
}

// parseTimestampedHeader extracts t and v1 from "t=...,v1=...".
func parseTimestampedHeader(header string) (ts int64, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", ErrMalformedHeader
			}
		case "v1":
			sig = value
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", ErrMalformedHeader
	}

	return ts, sig, nil
}
