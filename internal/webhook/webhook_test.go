package webhook

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signHMAC(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACScheme(t *testing.T) {
	const secret = "whsec_test"
	body := []byte(`{"event":"payment.succeeded"}`)

	scheme := NewHMAC(secret)

	t.Run("valid signature", func(t *testing.T) {
		if err := scheme.Verify(signHMAC(secret, body), body); err != nil {
			t.Errorf("Verify failed: %v", err)
		}
	})

	t.Run("content mismatch", func(t *testing.T) {
		err := scheme.Verify(signHMAC(secret, []byte(`{"event":"other"}`)), body)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("err = %v, want ErrSignatureMismatch", err)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		// Valid hex but half the expected length; must be rejected
		// cleanly, not panic or short-circuit on content.
		err := scheme.Verify(signHMAC(secret, body)[:32], body)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("err = %v, want ErrSignatureMismatch", err)
		}
	})

	t.Run("non-hex header", func(t *testing.T) {
		err := scheme.Verify("not-hex!", body)
		if !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
}

// timestampedHeader builds a valid "t=...,v1=..." header for a body
// signed at the given time.
func timestampedHeader(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestTimestampedHMACScheme_Window(t *testing.T) {
	const secret = "whsec_ts"
	body := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1_700_000_000, 0)

	scheme := NewTimestampedHMAC(secret, 0)
	scheme.now = func() time.Time { return now }

	tests := []struct {
		name    string
		age     time.Duration
		wantErr error
	}{
		{"fresh", 0, nil},
		{"299s old accepted", 299 * time.Second, nil},
		{"300s old accepted", 300 * time.Second, nil},
		{"301s old rejected", 301 * time.Second, ErrTimestampOutOfRange},
		{"301s in future rejected", -301 * time.Second, ErrTimestampOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := now.Add(-tt.age).Unix()
			err := scheme.Verify(timestampedHeader(secret, ts, body), body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimestampedHMACScheme_BadSignature(t *testing.T) {
	const secret = "whsec_ts"
	body := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1_700_000_000, 0)

	scheme := NewTimestampedHMAC(secret, 0)
	scheme.now = func() time.Time { return now }

	// Correct window, wrong secret.
	header := timestampedHeader("other-secret", now.Unix(), body)
	if err := scheme.Verify(header, body); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("err = %v, want ErrSignatureMismatch", err)
	}

	// Replayed signature with a doctored fresher timestamp must fail:
	// the timestamp is bound into the signed message.
	stale := timestampedHeader(secret, now.Add(-10*time.Minute).Unix(), body)
	_, sig, err := parseTimestampedHeader(stale)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doctored := "t=" + strconv.FormatInt(now.Unix(), 10) + ",v1=" + sig
	if err := scheme.Verify(doctored, body); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("err = %v, want ErrSignatureMismatch", err)
	}
}

func TestTimestampedHMACScheme_MalformedHeaders(t *testing.T) {
	scheme := NewTimestampedHMAC("secret", 0)

	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=1700000000", "garbage"} {
		if err := scheme.Verify(header, []byte("{}")); !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("header %q: err = %v, want ErrMalformedHeader", header, err)
		}
	}
}

func TestRSAScheme(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	body := []byte(`{"inquiry_id":"inq_1","status":"completed"}`)
	digest := sha512.Sum512(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA512, digest[:])
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	header := base64.StdEncoding.EncodeToString(sig)

	scheme := NewRSA(&key.PublicKey)

	t.Run("valid signature", func(t *testing.T) {
		if err := scheme.Verify(header, body); err != nil {
			t.Errorf("Verify failed: %v", err)
		}
	})

	t.Run("altered body", func(t *testing.T) {
		err := scheme.Verify(header, []byte(`{"inquiry_id":"inq_1","status":"failed"}`))
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("err = %v, want ErrSignatureMismatch", err)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		err := scheme.Verify("%%%", body)
		if !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
}

func TestVerifier_UnconfiguredProviderTrusted(t *testing.T) {
	v := NewVerifier(nil)

	if err := v.Verify("stripe", "anything", []byte("{}")); err != nil {
		t.Errorf("unconfigured provider should be trusted, got %v", err)
	}
}

func TestVerifier_Configure(t *testing.T) {
	v := NewVerifier(nil)

	if err := v.Configure("plaid", Settings{Scheme: "hmac", Secret: "s1"}); err != nil {
		t.Fatalf("Configure hmac failed: %v", err)
	}
	if err := v.Configure("stripe", Settings{Scheme: "timestamped_hmac", Secret: "s2"}); err != nil {
		t.Fatalf("Configure timestamped_hmac failed: %v", err)
	}

	body := []byte(`{"ok":true}`)
	if err := v.Verify("plaid", signHMAC("s1", body), body); err != nil {
		t.Errorf("plaid verify failed: %v", err)
	}
	if err := v.Verify("plaid", signHMAC("wrong", body), body); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("err = %v, want ErrSignatureMismatch", err)
	}

	// Empty secret leaves the provider unconfigured rather than
	// registering a scheme that rejects everything.
	if err := v.Configure("persona", Settings{Scheme: "hmac"}); err != nil {
		t.Fatalf("Configure with empty secret failed: %v", err)
	}
	if err := v.Verify("persona", "sig", body); err != nil {
		t.Errorf("provider with empty secret should be trusted, got %v", err)
	}

	if err := v.Configure("bad", Settings{Scheme: "magic", Secret: "x"}); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
