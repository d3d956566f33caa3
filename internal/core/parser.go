package core

import (
	"errors"
	"fmt"
)

// ErrMalformedToken reports a compact token that cannot be split into three
// well-formed segments.
var ErrMalformedToken = errors.New("malformed token")

// DefaultMaxTokenSize bounds the compact form accepted by SplitCompact when no
// explicit limit is configured.
const DefaultMaxTokenSize = 8192

// Segments holds the three encoded parts of a compact token.
type Segments struct {
	Header    string
	Payload   string
	Signature string
}

// SigningInput returns the exact bytes covered by the signature.
func (s Segments) SigningInput() string {
	return s.Header + "." + s.Payload
}

// Compact joins the segments back into H.P.S form.
func (s Segments) Compact() string {
	return s.Header + "." + s.Payload + "." + s.Signature
}

// SplitCompact splits token into exactly three non-empty segments drawn from the
// URL-safe alphabet. A maxSize of zero or less disables the size check.
func SplitCompact(token string, maxSize int) (Segments, error) {
	if len(token) == 0 {
		return Segments{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if maxSize > 0 && len(token) > maxSize {
		return Segments{}, fmt.Errorf("%w: token too large: maximum %d characters allowed", ErrMalformedToken, maxSize)
	}

	var dots [2]int
	count := 0
	for i := 0; i < len(token); i++ {
		if token[i] != '.' {
			continue
		}
		if count < len(dots) {
			dots[count] = i
		}
		count++
	}
	if count != 2 {
		return Segments{}, fmt.Errorf("%w: expected 3 segments, found %d", ErrMalformedToken, count+1)
	}

	seg := Segments{
		Header:    token[:dots[0]],
		Payload:   token[dots[0]+1 : dots[1]],
		Signature: token[dots[1]+1:],
	}

	for _, part := range []struct {
		name  string
		value string
	}{
		{"header", seg.Header},
		{"payload", seg.Payload},
		{"signature", seg.Signature},
	} {
		if part.value == "" {
			return Segments{}, fmt.Errorf("%w: empty %s segment", ErrMalformedToken, part.name)
		}
		if i := invalidURLCharIndex(part.value); i >= 0 {
			return Segments{}, fmt.Errorf("%w: invalid character in %s segment at offset %d", ErrMalformedToken, part.name, i)
		}
	}

	return seg, nil
}

func invalidURLCharIndex(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_') {
			return i
		}
	}
	return -1
}
