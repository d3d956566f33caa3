package jwtkit

import (
	"errors"
	"fmt"

	"github.com/cybergodev/jwtkit/internal/core"
	"github.com/cybergodev/jwtkit/internal/signing"
)

// Predefined errors. Use errors.Is to classify failures; TokenError,
// ValidationError and Result.Err all wrap one of these.
var (
	// Encoding and structure
	ErrMalformedEncoding = core.ErrMalformedEncoding
	ErrMalformedToken    = core.ErrMalformedToken

	// Header checks
	ErrTypeMismatch         = errors.New("token type is not JWT")
	ErrMissingAlgorithm     = errors.New("token algorithm not specified")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

	// Signature and keys
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrKeyError         = signing.ErrKeyError

	// Lifecycle and configuration
	ErrTokenState    = errors.New("operation not permitted in current token state")
	ErrFactoryClosed = errors.New("factory is closed: cannot perform operations")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TokenError is returned by Generate and Import. Op is "generate" or "import";
// Segment names the part of the token involved, if any.
type TokenError struct {
	Op      string
	Segment string
	Err     error
}

func (e *TokenError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("jwtkit: %s %s: %v", e.Op, e.Segment, e.Err)
	}
	return fmt.Sprintf("jwtkit: %s: %v", e.Op, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// ValidationError describes which field failed a check and why.
type ValidationError struct {
	Field   string // The header field or token part that failed
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for field '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
