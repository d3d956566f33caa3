package signing

import (
	"bytes"
	"crypto"
	"crypto/hmac"
	"fmt"
)

// HMAC is the symmetric MAC family. The same secret signs and verifies.
type HMAC struct{}

func (HMAC) Sign(hash crypto.Hash, data, key []byte) ([]byte, error) {
	if err := checkHMACKey(key); err != nil {
		return nil, err
	}
	if err := checkHash(hash); err != nil {
		return nil, err
	}

	mac := hmac.New(hash.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (h HMAC) Verify(hash crypto.Hash, data, key, signature []byte) (bool, error) {
	expected, err := h.Sign(hash, data, key)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, signature), nil
}

var pemPrefix = []byte("-----BEGIN")

// checkHMACKey refuses empty secrets and PEM documents. A public key used as an
// HMAC secret is the RS-to-HS algorithm confusion forgery.
func checkHMACKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty HMAC secret", ErrKeyError)
	}
	if bytes.HasPrefix(bytes.TrimSpace(key), pemPrefix) {
		return fmt.Errorf("%w: PEM key material cannot be used as an HMAC secret", ErrKeyError)
	}
	return nil
}
