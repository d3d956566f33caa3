package core

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	// ErrMalformedEncoding reports a segment that is not valid Base64 after
	// translating the URL-safe alphabet back to the standard one.
	ErrMalformedEncoding = errors.New("malformed base64url encoding")

	// ErrMalformedJSON reports a decoded segment that is not a single JSON object.
	ErrMalformedJSON = errors.New("malformed JSON segment")
)

var (
	toURLAlphabet = strings.NewReplacer("+", "-", "/", "_", "=", "")
	toStdAlphabet = strings.NewReplacer("-", "+", "_", "/")
)

// EncodeSegment encodes data as URL-safe Base64 without padding.
func EncodeSegment(data []byte) string {
	return toURLAlphabet.Replace(base64.StdEncoding.EncodeToString(data))
}

// DecodeSegment reverses EncodeSegment. Padding is restored before decoding, so
// both padded and unpadded input is accepted.
func DecodeSegment(segment string) ([]byte, error) {
	std := toStdAlphabet.Replace(segment)

	// The standard decoder silently skips CR and LF.
	if i := strings.IndexFunc(std, func(r rune) bool { return !isStdBase64Char(r) }); i >= 0 {
		return nil, fmt.Errorf("%w: illegal character at offset %d", ErrMalformedEncoding, i)
	}

	switch len(std) % 4 {
	case 1:
		return nil, fmt.Errorf("%w: invalid length %d", ErrMalformedEncoding, len(segment))
	case 2:
		std += "=="
	case 3:
		std += "="
	}

	data, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			return nil, fmt.Errorf("%w: illegal data at offset %d", ErrMalformedEncoding, int64(corrupt))
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return data, nil
}

// EncodeJSON serializes v to JSON and encodes the result as a segment.
func EncodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal segment: %w", err)
	}
	return EncodeSegment(raw), nil
}

// DecodeJSONObject decodes a segment that must hold exactly one JSON object.
// Numbers are kept as json.Number so values survive a round trip unchanged.
func DecodeJSONObject(segment string) (map[string]any, error) {
	raw, err := DecodeSegment(segment)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedJSON)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedJSON)
	}

	return obj, nil
}

func isStdBase64Char(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '+' || r == '/' || r == '='
}

// IsCanonicalSegment reports whether segment is exactly the encoding of data.
// Non-zero trailing bits in the final character decode to the same bytes but are
// not canonical.
func IsCanonicalSegment(segment string, data []byte) bool {
	return EncodeSegment(data) == segment
}
