package jwtkit

import "errors"

// Reason classifies the outcome of Validate.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformedToken
	ReasonTypeMismatch
	ReasonMissingAlgorithm
	ReasonUnsupportedAlgorithm
	ReasonSignatureInvalid
	ReasonKeyError
)

var reasonNames = [...]string{
	ReasonNone:                 "none",
	ReasonMalformedToken:       "malformed_token",
	ReasonTypeMismatch:         "type_mismatch",
	ReasonMissingAlgorithm:     "missing_algorithm",
	ReasonUnsupportedAlgorithm: "unsupported_algorithm",
	ReasonSignatureInvalid:     "signature_invalid",
	ReasonKeyError:             "key_error",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Sentinel returns the predefined error matching r, or nil for ReasonNone.
func (r Reason) Sentinel() error {
	switch r {
	case ReasonMalformedToken:
		return ErrMalformedToken
	case ReasonTypeMismatch:
		return ErrTypeMismatch
	case ReasonMissingAlgorithm:
		return ErrMissingAlgorithm
	case ReasonUnsupportedAlgorithm:
		return ErrUnsupportedAlgorithm
	case ReasonSignatureInvalid:
		return ErrSignatureInvalid
	case ReasonKeyError:
		return ErrKeyError
	default:
		return nil
	}
}

// Result is the outcome of validating a token. A valid result only means the
// token is well formed, uses an accepted algorithm and carries a matching
// signature; claims such as exp or iss are not checked.
type Result struct {
	Reason Reason
	Err    error // nil when valid; otherwise wraps Reason.Sentinel()
}

// Valid reports whether validation succeeded.
func (r Result) Valid() bool {
	return r.Reason == ReasonNone
}

// Is reports whether the failure matches target, as errors.Is does.
func (r Result) Is(target error) bool {
	return r.Err != nil && errors.Is(r.Err, target)
}

func (r Result) String() string {
	if r.Valid() {
		return "valid"
	}
	if r.Err != nil {
		return r.Reason.String() + ": " + r.Err.Error()
	}
	return r.Reason.String()
}

func failure(reason Reason, field, message string, cause error) Result {
	if cause == nil {
		cause = reason.Sentinel()
	}
	return Result{
		Reason: reason,
		Err:    &ValidationError{Field: field, Message: message, Err: cause},
	}
}
