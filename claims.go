package jwtkit

import (
	"encoding/json"
	"fmt"
	"slices"
)

// RegisteredClaims is a read-only view of the registered claims found in a
// payload. Nothing here is checked against the clock or any expected value.
type RegisteredClaims struct {
	Issuer    string       `json:"iss,omitempty"`
	Subject   string       `json:"sub,omitempty"`
	Audience  ClaimStrings `json:"aud,omitempty"`
	ExpiresAt *NumericDate `json:"exp,omitempty"`
	NotBefore *NumericDate `json:"nbf,omitempty"`
	IssuedAt  *NumericDate `json:"iat,omitempty"`
	ID        string       `json:"jti,omitempty"`
}

// HasAudience reports whether aud lists audience.
func (c RegisteredClaims) HasAudience(audience string) bool {
	return slices.Contains(c.Audience, audience)
}

// ClaimStrings is the aud claim, which may be a single string or an array.
type ClaimStrings []string

func (s *ClaimStrings) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = ClaimStrings{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("aud must be a string or an array of strings")
	}
	*s = many
	return nil
}

func (s ClaimStrings) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}
