package jwtkit

import (
	"fmt"

	"github.com/cybergodev/jwtkit/internal/signing"
)

const (
	maxStringLength = 256
	maxHeaderFields = 32
)

// checkType requires typ to be exactly "JWT".
func checkType(h Header) error {
	typ, ok := h[HeaderType].(string)
	if !ok || typ != TypeJWT {
		return &ValidationError{
			Field:   HeaderType,
			Message: fmt.Sprintf("must be %q", TypeJWT),
			Err:     ErrTypeMismatch,
		}
	}
	return nil
}

// resolveAlgorithm finds the descriptor for the header's alg. A missing, null
// or empty alg is ErrMissingAlgorithm; a value that is not a string, not
// registered or not in allowed is ErrUnsupportedAlgorithm. A nil allowed set
// accepts every registered algorithm.
func resolveAlgorithm(h Header, allowed map[string]struct{}) (signing.Descriptor, Reason, error) {
	raw, present := h[HeaderAlgorithm]
	if !present || raw == nil {
		return signing.Descriptor{}, ReasonMissingAlgorithm, &ValidationError{
			Field:   HeaderAlgorithm,
			Message: "not specified",
			Err:     ErrMissingAlgorithm,
		}
	}

	alg, ok := raw.(string)
	if ok && alg == "" {
		return signing.Descriptor{}, ReasonMissingAlgorithm, &ValidationError{
			Field:   HeaderAlgorithm,
			Message: "not specified",
			Err:     ErrMissingAlgorithm,
		}
	}
	if !ok {
		return signing.Descriptor{}, ReasonUnsupportedAlgorithm, &ValidationError{
			Field:   HeaderAlgorithm,
			Message: "must be a string",
			Err:     ErrUnsupportedAlgorithm,
		}
	}

	desc, found := signing.Lookup(alg)
	if found && allowed != nil {
		_, found = allowed[alg]
	}
	if !found {
		if err := validateString(HeaderAlgorithm, alg, maxStringLength); err != nil {
			alg = "<invalid>"
		}
		return signing.Descriptor{}, ReasonUnsupportedAlgorithm, &ValidationError{
			Field:   HeaderAlgorithm,
			Message: fmt.Sprintf("algorithm %q is not accepted", alg),
			Err:     ErrUnsupportedAlgorithm,
		}
	}

	return desc, ReasonNone, nil
}

// checkHeaderFields bounds the header a caller may ask to sign.
func checkHeaderFields(h Header) error {
	if len(h) > maxHeaderFields {
		return &ValidationError{
			Field:   "header",
			Message: fmt.Sprintf("too many fields: maximum %d allowed", maxHeaderFields),
			Err:     ErrMalformedToken,
		}
	}
	for key := range h {
		if err := validateString("header_key", key, maxStringLength); err != nil {
			return err
		}
	}
	return nil
}

func validateString(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("too long: maximum %d characters", maxLength),
			Err:     ErrMalformedToken,
		}
	}

	for i := 0; i < len(value); i++ {
		if value[i] < 32 || value[i] == 127 {
			return &ValidationError{
				Field:   fieldName,
				Message: "contains invalid control character",
				Err:     ErrMalformedToken,
			}
		}
	}

	return nil
}

func allowedSet(algs []string) map[string]struct{} {
	if len(algs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(algs))
	for _, alg := range algs {
		set[alg] = struct{}{}
	}
	return set
}
