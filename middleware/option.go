package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cybergodev/jwtkit"
)

// Option configures a Middleware.
type Option func(*Middleware)

// WithTokenExtractor replaces AuthHeaderTokenExtractor.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(m *Middleware) {
		if extractor != nil {
			m.extractor = extractor
		}
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithCredentialsOptional lets requests without a token through unauthenticated.
// A token that is present must still be valid.
func WithCredentialsOptional(optional bool) Option {
	return func(m *Middleware) {
		m.credentialsOptional = optional
	}
}

// WithValidateOnOptions controls whether OPTIONS requests are authenticated.
func WithValidateOnOptions(validate bool) Option {
	return func(m *Middleware) {
		m.validateOnOptions = validate
	}
}

// WithFailureLimiter spends one token from limiter for every rejected token
// and answers 429 to clients whose budget is empty.
func WithFailureLimiter(limiter *jwtkit.RateLimiter) Option {
	return func(m *Middleware) {
		m.limiter = limiter
	}
}

// WithClientKey replaces RemoteHost as the limiter key, for example to key by
// a header set by a trusted proxy.
func WithClientKey(fn func(*http.Request) string) Option {
	return func(m *Middleware) {
		if fn != nil {
			m.clientKey = fn
		}
	}
}

// WithLogger replaces the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}
