package jwtkit

import (
	"github.com/cybergodev/jwtkit/internal/signing"
)

// Header is the token header. It must carry "typ" set to "JWT" and "alg" set to
// one of the supported algorithm identifiers; any other fields are passed
// through unchanged.
type Header map[string]any

// Payload is the set of claims carried by a token.
type Payload map[string]any

// KeyPair holds a PEM-encoded RSA private key and its public key.
type KeyPair = signing.KeyPair

// Supported algorithm identifiers.
const (
	HS256 = "HS256" // HMAC with SHA-256
	HS384 = "HS384" // HMAC with SHA-384
	HS512 = "HS512" // HMAC with SHA-512
	RS256 = "RS256" // RSA PKCS #1 v1.5 with SHA-256
	RS384 = "RS384" // RSA PKCS #1 v1.5 with SHA-384
	RS512 = "RS512" // RSA PKCS #1 v1.5 with SHA-512
)

// Header field names and the only accepted token type.
const (
	HeaderType      = "typ"
	HeaderAlgorithm = "alg"
	TypeJWT         = "JWT"
)

// Registered claim names (RFC 7519 section 4.1).
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// RegisteredClaimNames maps each registered claim to its descriptive name.
var RegisteredClaimNames = map[string]string{
	ClaimIssuer:    "Issuer",
	ClaimSubject:   "Subject",
	ClaimAudience:  "Audience",
	ClaimExpiresAt: "Expiration Time",
	ClaimNotBefore: "Not Before",
	ClaimIssuedAt:  "Issued At",
	ClaimID:        "JWT ID",
}

// SupportedAlgorithms returns every algorithm identifier tokens may use, sorted.
func SupportedAlgorithms() []string {
	return signing.Supported()
}

// IsSupportedAlgorithm reports whether alg is one of the supported identifiers.
// Matching is exact.
func IsSupportedAlgorithm(alg string) bool {
	_, ok := signing.Lookup(alg)
	return ok
}
