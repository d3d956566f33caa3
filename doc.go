// Package jwtkit builds, serializes, parses and validates signed compact
// tokens (JWT) using HMAC (HS256, HS384, HS512) or RSA PKCS #1 v1.5 (RS256,
// RS384, RS512) signatures.
//
// A Token moves through Empty, Built or Imported, and Validated states.
// Generate signs a header and payload; Import splits and decodes a compact
// string without checking it; Validate checks the header and signature and
// returns a Result instead of an error, because a bad signature is an ordinary
// outcome callers branch on.
//
// A Factory holds the current signing and verification keys and mints a fresh
// Token for every call, so keys may be rotated while other goroutines are
// generating or validating.
//
//	f, err := jwtkit.New(jwtkit.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	f.SetKeys(secret, secret)
//
//	tok, err := f.Generate(jwtkit.Header{"alg": jwtkit.HS256, "typ": "JWT"}, jwtkit.Payload{"sub": "guy"})
//	if err != nil {
//		return err
//	}
//	if res := f.Validate(tok.String()); !res.Valid() {
//		return res.Err
//	}
//
// Registered claims (exp, nbf, aud, ...) can be read through Token.Registered
// but are not enforced.
package jwtkit
