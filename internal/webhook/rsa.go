package webhook

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// RSAScheme verifies a base64 RSA-PKCS#1v1.5/SHA-512 signature over the
// raw body. This variant carries no timestamp binding; that is the
// provider's wire format, not something to patch over here.
type RSAScheme struct {
	publicKey *rsa.PublicKey
}

// NewRSA builds an RSA scheme from an already-parsed public key.
func NewRSA(publicKey *rsa.PublicKey) *RSAScheme {
	return &RSAScheme{publicKey: publicKey}
}

// NewRSAFromPEM parses a PEM public key (PKIX, falling back to PKCS#1).
func NewRSAFromPEM(pemText string) (*RSAScheme, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("webhook: invalid public key PEM")
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("webhook: not an RSA public key")
		}
		return NewRSA(rsaKey), nil
	}

	rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("webhook: parse public key: %w", err)
	}

	return NewRSA(rsaKey), nil
}

// Verify checks the base64 signature in header against the body.
func (s *RSAScheme) Verify(header string, body []byte) error {
	signature, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return ErrMalformedHeader
	}

	digest := sha512.Sum512(body)
	if err := rsa.VerifyPKCS1v15(s.publicKey, crypto.SHA512, digest[:], signature); err != nil {
		return ErrSignatureMismatch
	}

	return nil
}
