package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cybergodev/jwtkit"
)

var (
	// ErrTokenMissing is passed to the ErrorHandler when a request carries no
	// token and credentials are required.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenInvalid is passed to the ErrorHandler when a token was offered
	// but could not be extracted, imported or validated.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTooManyFailures is passed to the ErrorHandler when the client has used
	// up its failure budget.
	ErrTooManyFailures = errors.New("too many failed authentication attempts")
)

// ErrorHandler writes the response for a rejected request. err matches one of
// ErrTokenMissing, ErrTokenInvalid or ErrTooManyFailures; for invalid tokens
// ReasonOf reports why.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// DefaultErrorHandler answers 401 for missing and invalid tokens, 429 when the
// failure budget is spent and 500 otherwise, with a JSON body.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrTooManyFailures):
		status = http.StatusTooManyRequests
		body.Error = ErrTooManyFailures.Error()
	case errors.Is(err, ErrTokenMissing):
		status = http.StatusUnauthorized
		body.Error = ErrTokenMissing.Error()
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, ErrTokenInvalid):
		status = http.StatusUnauthorized
		body.Error = ErrTokenInvalid.Error()
		if reason, ok := ReasonOf(err); ok {
			body.Reason = reason.String()
		}
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	default:
		body.Error = "something went wrong while checking the token"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// invalidError ties a validation Result to ErrTokenInvalid.
type invalidError struct {
	result jwtkit.Result
}

func (e invalidError) Is(target error) bool {
	return target == ErrTokenInvalid
}

func (e invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenInvalid, e.result)
}

func (e invalidError) Unwrap() error {
	return e.result.Err
}

// ReasonOf extracts the validation reason from an error passed to an
// ErrorHandler.
func ReasonOf(err error) (jwtkit.Reason, bool) {
	var invalid invalidError
	if errors.As(err, &invalid) {
		return invalid.result.Reason, true
	}
	return jwtkit.ReasonNone, false
}
