package jwtkit

import (
	"github.com/cybergodev/jwtkit/internal/signing"
)

// GenerateToken signs header and payload with key and returns the compact
// form. For repeated use or key rotation, use a Factory.
func GenerateToken(header Header, payload Payload, key []byte) (string, error) {
	tok := NewToken(WithSigningKey(key))
	if err := tok.Generate(header, payload); err != nil {
		return "", err
	}
	return tok.String(), nil
}

// ValidateToken imports token and validates it with key.
func ValidateToken(token string, key []byte) Result {
	tok := NewToken(WithVerificationKey(key))
	if err := tok.Import(token); err != nil {
		return Result{Reason: ReasonMalformedToken, Err: err}
	}
	return tok.Validate()
}

// GenerateRSAKeyPair creates a 4096-bit RSA key pair: a PKCS #8 private key
// and a PKIX public key, both PEM encoded. It takes noticeable time.
func GenerateRSAKeyPair() (KeyPair, error) {
	return signing.GenerateKeyPair()
}
