package signing

import (
	"crypto"
	"sort"
)

// Descriptor binds an algorithm identifier to its family, hash and implementation.
type Descriptor struct {
	ID        string
	Family    Family
	Hash      crypto.Hash
	Algorithm Algorithm
}

// Sign signs data with the descriptor's algorithm and hash.
func (d Descriptor) Sign(data, key []byte) ([]byte, error) {
	return d.Algorithm.Sign(d.Hash, data, key)
}

// Verify checks signature over data with the descriptor's algorithm and hash.
func (d Descriptor) Verify(data, key, signature []byte) (bool, error) {
	return d.Algorithm.Verify(d.Hash, data, key, signature)
}

var (
	hmacAlgorithm = HMAC{}
	rsaAlgorithm  = RSA{}
)

// registry is the closed set of supported identifiers. Header values are only
// ever used as keys into this map.
var registry = map[string]Descriptor{
	"HS256": {ID: "HS256", Family: FamilyHMAC, Hash: crypto.SHA256, Algorithm: hmacAlgorithm},
	"HS384": {ID: "HS384", Family: FamilyHMAC, Hash: crypto.SHA384, Algorithm: hmacAlgorithm},
	"HS512": {ID: "HS512", Family: FamilyHMAC, Hash: crypto.SHA512, Algorithm: hmacAlgorithm},
	"RS256": {ID: "RS256", Family: FamilyRSA, Hash: crypto.SHA256, Algorithm: rsaAlgorithm},
	"RS384": {ID: "RS384", Family: FamilyRSA, Hash: crypto.SHA384, Algorithm: rsaAlgorithm},
	"RS512": {ID: "RS512", Family: FamilyRSA, Hash: crypto.SHA512, Algorithm: rsaAlgorithm},
}

// Lookup returns the descriptor registered for alg. Matching is exact and case
// sensitive.
func Lookup(alg string) (Descriptor, bool) {
	d, ok := registry[alg]
	return d, ok
}

// Supported returns the registered identifiers in sorted order.
func Supported() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
