// Package testutil provides RSA key pairs for tests. Generating keys is slow,
// so pairs are created once per test binary and shared.
package testutil

import (
	"sync"

	"github.com/cybergodev/jwtkit/internal/signing"
)

// TestKeyBits is the size of the pairs handed out here: the smallest size the
// RSA variant accepts.
const TestKeyBits = 2048

var (
	once  sync.Once
	pairs [2]signing.KeyPair
	err   error
)

func generate() {
	for i := range pairs {
		pairs[i], err = signing.GenerateKeyPairSize(TestKeyBits)
		if err != nil {
			return
		}
	}
}

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RSAKeyPair returns a shared key pair.
func RSAKeyPair(t fataler) signing.KeyPair {
	t.Helper()
	once.Do(generate)
	if err != nil {
		t.Fatalf("generate RSA key pair: %v", err)
	}
	return pairs[0]
}

// UnrelatedRSAKeyPair returns a second shared pair, distinct from RSAKeyPair.
func UnrelatedRSAKeyPair(t fataler) signing.KeyPair {
	t.Helper()
	once.Do(generate)
	if err != nil {
		t.Fatalf("generate RSA key pair: %v", err)
	}
	return pairs[1]
}

// Secret is a 64-byte HMAC secret that passes the weak-key checks.
var Secret = []byte("Kx9#mP2$vL8@nQ5!wR7&tY3^uI6*oE4%aS1+dF0-gH9~jK2#bN5$cM8@xZ7&vB4!")
