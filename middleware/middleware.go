package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cybergodev/jwtkit"
)

// TokenSource imports compact tokens. The returned Token must carry the
// verification key to validate with; *jwtkit.Factory does.
type TokenSource interface {
	ImportContext(ctx context.Context, token string) (*jwtkit.Token, error)
}

type contextKey struct{}

// FromContext returns the validated token stored by the middleware.
func FromContext(ctx context.Context) (*jwtkit.Token, bool) {
	tok, ok := ctx.Value(contextKey{}).(*jwtkit.Token)
	return tok, ok
}

// NewContext returns a copy of ctx carrying tok.
func NewContext(ctx context.Context, tok *jwtkit.Token) context.Context {
	return context.WithValue(ctx, contextKey{}, tok)
}

// Middleware validates request tokens before calling the next handler.
type Middleware struct {
	source              TokenSource
	extractor           TokenExtractor
	errorHandler        ErrorHandler
	credentialsOptional bool
	validateOnOptions   bool
	limiter             *jwtkit.RateLimiter
	clientKey           func(*http.Request) string
	logger              logrus.FieldLogger
}

// New returns a Middleware validating tokens imported through source. By
// default credentials are required, OPTIONS requests are validated, and
// errors are answered by DefaultErrorHandler.
func New(source TokenSource, opts ...Option) *Middleware {
	m := &Middleware{
		source:            source,
		extractor:         AuthHeaderTokenExtractor,
		errorHandler:      DefaultErrorHandler,
		validateOnOptions: true,
		clientKey:         RemoteHost,
		logger:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		client := m.clientKey(r)
		entry := m.logger.WithFields(logrus.Fields{"path": r.URL.Path, "client": client})

		if m.limiter != nil && m.limiter.Exhausted(client) {
			entry.Warn("client exceeded authentication failure budget")
			m.errorHandler(w, r, ErrTooManyFailures)
			return
		}

		token, err := m.extractor(r)
		if err != nil {
			m.reject(w, r, entry, jwtkit.Result{Reason: jwtkit.ReasonMalformedToken, Err: err})
			return
		}

		if token == "" {
			if m.credentialsOptional {
				next.ServeHTTP(w, r)
				return
			}
			entry.Debug("request without token")
			m.errorHandler(w, r, ErrTokenMissing)
			return
		}

		tok, err := m.source.ImportContext(r.Context(), token)
		if err != nil {
			m.reject(w, r, entry, jwtkit.Result{Reason: jwtkit.ReasonMalformedToken, Err: err})
			return
		}
		if res := tok.Validate(); !res.Valid() {
			m.reject(w, r, entry, res)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), tok)))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, entry logrus.FieldLogger, res jwtkit.Result) {
	if m.limiter != nil {
		m.limiter.Allow(m.clientKey(r))
	}
	entry.WithField("reason", res.Reason.String()).Info("token rejected")
	m.errorHandler(w, r, invalidError{result: res})
}

// RemoteHost keys clients by the host part of RemoteAddr.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
