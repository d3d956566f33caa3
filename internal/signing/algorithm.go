package signing

import (
	"crypto"
	"errors"

	_ "crypto/sha256"
	_ "crypto/sha512"
)

var (
	// ErrKeyError reports key material the underlying primitive cannot use.
	ErrKeyError = errors.New("invalid key material")

	// ErrUnavailableHash reports a hash function that is not linked into the binary.
	ErrUnavailableHash = errors.New("hash function not available")
)

// Algorithm signs and verifies data for one signing family. Implementations
// hold no state; every input arrives per call, so a single value may be shared
// across goroutines.
type Algorithm interface {
	Sign(hash crypto.Hash, data, key []byte) ([]byte, error)

	// Verify reports false for a signature that does not match. A non-nil error
	// means the key itself could not be used.
	Verify(hash crypto.Hash, data, key, signature []byte) (bool, error)
}

// Family names a signing family.
type Family string

const (
	FamilyHMAC Family = "HMAC"
	FamilyRSA  Family = "RSA"
)

func checkHash(hash crypto.Hash) error {
	if !hash.Available() {
		return ErrUnavailableHash
	}
	return nil
}
