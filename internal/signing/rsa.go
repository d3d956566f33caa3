package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// KeyPairBits is the modulus size used by GenerateKeyPair.
	KeyPairBits = 4096

	// DefaultHash is used whenever a caller does not name a digest.
	DefaultHash = crypto.SHA512

	minKeyPairBits = 2048
)

// KeyPair holds a PEM-encoded private key and its matching public key.
type KeyPair struct {
	Private []byte
	Public  []byte
}

// RSA is the asymmetric family using PKCS #1 v1.5 signatures. Sign takes a PEM
// private key, Verify a PEM public key.
type RSA struct{}

func (RSA) Sign(hash crypto.Hash, data, key []byte) ([]byte, error) {
	if hash == 0 {
		hash = DefaultHash
	}
	if err := checkHash(hash); err != nil {
		return nil, err
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse RSA private key", ErrKeyError)
	}
	if priv.N.BitLen() < minKeyPairBits {
		return nil, fmt.Errorf("%w: RSA private key shorter than %d bits", ErrKeyError, minKeyPairBits)
	}

	h := hash.New()
	h.Write(data)

	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, hash, h.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("%w: RSA signing failed", ErrKeyError)
	}
	return sig, nil
}

func (RSA) Verify(hash crypto.Hash, data, key, signature []byte) (bool, error) {
	if hash == 0 {
		hash = DefaultHash
	}
	if err := checkHash(hash); err != nil {
		return false, err
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(key)
	if err != nil {
		return false, fmt.Errorf("%w: cannot parse RSA public key", ErrKeyError)
	}
	if pub.N.BitLen() < minKeyPairBits {
		return false, fmt.Errorf("%w: RSA public key shorter than %d bits", ErrKeyError, minKeyPairBits)
	}

	h := hash.New()
	h.Write(data)

	// Any verification error, including a signature of the wrong length, is a
	// mismatch rather than a key problem.
	return rsa.VerifyPKCS1v15(pub, hash, h.Sum(nil), signature) == nil, nil
}

// GenerateKeyPair creates a new RSA key pair of KeyPairBits. The private half is
// PKCS #8 ("PRIVATE KEY"), the public half PKIX ("PUBLIC KEY"). Generation is
// slow and belongs outside request paths.
func GenerateKeyPair() (KeyPair, error) {
	return GenerateKeyPairSize(KeyPairBits)
}

// GenerateKeyPairSize is GenerateKeyPair with an explicit modulus size.
func GenerateKeyPairSize(bits int) (KeyPair, error) {
	if bits < minKeyPairBits {
		return KeyPair{}, fmt.Errorf("RSA key size %d below minimum %d", bits, minKeyPairBits)
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return KeyPair{
		Private: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		Public:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}),
	}, nil
}
