// Package auth signs Kalshi API requests and WebSocket handshakes
// using RSA-PSS signatures.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Signing errors.
var (
	ErrNotInitialized = errors.New("auth: signer has no private key")
	ErrInvalidPEM     = errors.New("auth: invalid PEM block")
	ErrNotRSAKey      = errors.New("auth: key is not an RSA private key")
)

// WebSocketPath is the fixed path signed for WebSocket authentication.
const WebSocketPath = "/trade-api/ws/v2"

// saltLength is the RSA-PSS salt length Kalshi expects (32 bytes).
const saltLength = 32

// Auth header names attached to every REST request.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// Signer produces request signatures binding a request to a timestamp.
// The key material is immutable after construction, so a Signer is safe
// for concurrent use.
type Signer struct {
	keyID      string
	privateKey *rsa.PrivateKey
}

// NewSigner parses a PEM-encoded private key and returns a ready Signer.
func NewSigner(keyID, privateKeyPEM string) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("auth: API key ID is required")
	}

	key, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	return &Signer{keyID: keyID, privateKey: key}, nil
}

// NewSignerFromFile loads the private key from a PEM file on disk.
func NewSignerFromFile(keyID, privateKeyPath string) (*Signer, error) {
	data, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return NewSigner(keyID, string(data))
}

// ParsePrivateKeyPEM parses an RSA private key from PEM text.
// Accepts PKCS#8, falling back to PKCS#1 for older keys.
func ParsePrivateKeyPEM(pemText string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, ErrInvalidPEM
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrNotRSAKey
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// KeyID returns the API key ID associated with this signer.
func (s *Signer) KeyID() string {
	if s == nil {
		return ""
	}
	return s.keyID
}

// Timestamp returns the current time as unix seconds in decimal form.
// Each request gets a fresh value so signatures cannot be replayed
// outside the exchange's clock-skew window.
func Timestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// SignRequest signs a REST request. The message is the concatenation
// {timestamp}{METHOD}{path}{body} where body is the exact JSON payload
// sent, or the empty string for bodyless requests. Returns a base64
// standard-encoded RSA-PSS signature.
func (s *Signer) SignRequest(timestamp, method, path, body string) (string, error) {
	return s.sign(timestamp + method + path + body)
}

// SignWebSocket signs the WebSocket authentication message
// {timestamp}GET/trade-api/ws/v2.
func (s *Signer) SignWebSocket(timestamp string) (string, error) {
	return s.sign(timestamp + "GET" + WebSocketPath)
}

// RESTHeaders generates the three auth headers for a REST call using a
// fresh timestamp.
func (s *Signer) RESTHeaders(method, path, body string) (map[string]string, error) {
	ts := Timestamp()

	signature, err := s.SignRequest(ts, method, path, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderKey:       s.keyID,
		HeaderTimestamp: ts,
		HeaderSignature: signature,
	}, nil
}

func (s *Signer) sign(message string) (string, error) {
	if s == nil || s.privateKey == nil {
		return "", ErrNotInitialized
	}

	hashed := sha256.Sum256([]byte(message))

	signature, err := rsa.SignPSS(
		rand.Reader,
		s.privateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: saltLength},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}
