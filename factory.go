package jwtkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cybergodev/jwtkit/internal/security"
	"github.com/cybergodev/jwtkit/metrics"
)

const tracerName = "github.com/cybergodev/jwtkit"

// Factory holds the current keys and mints a fresh Token for every call. Keys
// may be replaced at any time; each call works on a copy taken when it starts.
// A Factory is safe for concurrent use.
type Factory struct {
	mu              sync.RWMutex
	signingKey      *security.SecureBytes
	verificationKey *security.SecureBytes
	closed          bool

	allowed      []string
	maxTokenSize int
	warnWeakKeys bool

	logger  logrus.FieldLogger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger replaces the default stderr logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records every operation with r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(f *Factory) {
		f.metrics = r
	}
}

// WithTracer replaces the tracer taken from the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Factory) {
		if tracer != nil {
			f.tracer = tracer
		}
	}
}

// New creates a Factory. Key files named in cfg are loaded immediately; keys
// can also be installed later with SetKeys or LoadKeyFiles.
func New(cfg Config, opts ...Option) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	f := &Factory{
		allowed:      append([]string(nil), cfg.AllowedAlgorithms...),
		maxTokenSize: cfg.maxTokenSize(),
		warnWeakKeys: cfg.WarnWeakKeys,
		logger:       newDefaultLogger(cfg.LogLevel),
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}

	if cfg.SigningKeyFile != "" || cfg.VerificationKeyFile != "" {
		if err := f.LoadKeyFiles(cfg.SigningKeyFile, cfg.VerificationKeyFile); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func newDefaultLogger(level string) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// SetSigningKey installs the key used by Generate. The key is copied.
func (f *Factory) SetSigningKey(key []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFactoryClosed
	}
	f.replaceKey(&f.signingKey, key, metrics.KeySigning)
	return nil
}

// SetVerificationKey installs the key used by Validate. The key is copied.
func (f *Factory) SetVerificationKey(key []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFactoryClosed
	}
	f.replaceKey(&f.verificationKey, key, metrics.KeyVerification)
	return nil
}

// SetKeys installs both keys at once, so no call observes one new key paired
// with one old key. For HMAC pass the same secret twice.
func (f *Factory) SetKeys(signingKey, verificationKey []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFactoryClosed
	}
	f.replaceKey(&f.signingKey, signingKey, metrics.KeySigning)
	f.replaceKey(&f.verificationKey, verificationKey, metrics.KeyVerification)
	return nil
}

// LoadKeyFiles reads and installs keys from disk. An empty path leaves that key
// unchanged. Trailing line breaks are trimmed from non-PEM secrets.
func (f *Factory) LoadKeyFiles(signingPath, verificationPath string) error {
	signingKey, err := readKeyFile(signingPath)
	if err != nil {
		return err
	}
	verificationKey, err := readKeyFile(verificationPath)
	if err != nil {
		security.ZeroBytes(signingKey)
		return err
	}
	defer security.ZeroBytes(signingKey)
	defer security.ZeroBytes(verificationKey)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFactoryClosed
	}
	if signingPath != "" {
		f.replaceKey(&f.signingKey, signingKey, metrics.KeySigning)
	}
	if verificationPath != "" {
		f.replaceKey(&f.verificationKey, verificationKey, metrics.KeyVerification)
	}
	f.logger.WithFields(logrus.Fields{
		"signing_path":      signingPath,
		"verification_path": verificationPath,
	}).Info("keys loaded from files")
	return nil
}

// ReadKeyFile reads key material the way LoadKeyFiles does.
func ReadKeyFile(path string) ([]byte, error) {
	return readKeyFile(path)
}

func readKeyFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %v", ErrKeyError, err)
	}
	if !isPEM(data) {
		data = bytes.TrimRight(data, "\r\n")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: key file %s is empty", ErrKeyError, path)
	}
	return data, nil
}

func isPEM(key []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(key), []byte("-----BEGIN"))
}

// replaceKey must be called with f.mu held.
func (f *Factory) replaceKey(slot **security.SecureBytes, key []byte, kind string) {
	if *slot != nil {
		(*slot).Destroy()
	}
	*slot = security.NewSecureBytes(key)
	f.metrics.ObserveKeyUpdate(kind)

	entry := f.logger.WithField("key", kind)
	if f.warnWeakKeys && len(key) > 0 && !isPEM(key) && security.IsWeakKey(key) {
		entry.Warn("weak HMAC secret installed: use at least 32 random bytes")
	}
	entry.Debug("key updated")
}

func (f *Factory) snapshot() (signingKey, verificationKey []byte, err error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, nil, ErrFactoryClosed
	}
	return f.signingKey.Snapshot(), f.verificationKey.Snapshot(), nil
}

func (f *Factory) newToken(signingKey, verificationKey []byte) *Token {
	return NewToken(
		withSnapshot(signingKey, verificationKey),
		WithAllowedAlgorithms(f.allowed...),
		WithMaxTokenSize(f.maxTokenSize),
		withObserver(f.observeValidation),
	)
}

// Generate signs header and payload with the current signing key.
func (f *Factory) Generate(header Header, payload Payload) (*Token, error) {
	return f.GenerateContext(context.Background(), header, payload)
}

// GenerateContext is Generate with tracing and cancellation.
func (f *Factory) GenerateContext(ctx context.Context, header Header, payload Payload) (*Token, error) {
	ctx, span := f.tracer.Start(ctx, "jwtkit.Generate")
	defer span.End()

	start := time.Now()
	alg := metricAlgorithm(header[HeaderAlgorithm])
	span.SetAttributes(attribute.String("jwt.alg", alg))

	tok, err := f.generate(ctx, header, payload)
	f.metrics.ObserveOperation(metrics.OpGenerate, alg, err, time.Since(start))

	entry := f.logger.WithFields(logrus.Fields{"op": "generate", "alg": alg})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		entry.WithError(err).Debug("token generation failed")
		return nil, err
	}
	entry.Debug("token generated")
	return tok, nil
}

func (f *Factory) generate(ctx context.Context, header Header, payload Payload) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signingKey, verificationKey, err := f.snapshot()
	if err != nil {
		return nil, err
	}
	tok := f.newToken(signingKey, verificationKey)
	if err := tok.Generate(header, payload); err != nil {
		return nil, err
	}
	return tok, nil
}

// Import parses token without validating it. The returned Token carries the
// current verification key, so Validate can be called on it directly.
func (f *Factory) Import(token string) (*Token, error) {
	return f.ImportContext(context.Background(), token)
}

// ImportContext is Import with tracing and cancellation.
func (f *Factory) ImportContext(ctx context.Context, token string) (*Token, error) {
	ctx, span := f.tracer.Start(ctx, "jwtkit.Import")
	defer span.End()

	start := time.Now()
	tok, err := f.importToken(ctx, token)

	alg := metricAlgorithm(nil)
	if tok != nil {
		alg = metricAlgorithm(tok.Algorithm())
	}
	span.SetAttributes(attribute.String("jwt.alg", alg))
	f.metrics.ObserveOperation(metrics.OpImport, alg, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
		f.logger.WithFields(logrus.Fields{"op": "import"}).WithError(err).Debug("token import failed")
		return nil, err
	}
	return tok, nil
}

func (f *Factory) importToken(ctx context.Context, token string) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signingKey, verificationKey, err := f.snapshot()
	if err != nil {
		return nil, err
	}
	security.ZeroBytes(signingKey)
	tok := f.newToken(nil, verificationKey)
	if err := tok.Import(token); err != nil {
		return nil, err
	}
	return tok, nil
}

// Validate imports and validates token with the current verification key. It
// never returns an error value: every failure is described by the Result.
func (f *Factory) Validate(token string) Result {
	return f.ValidateContext(context.Background(), token)
}

// ValidateContext is Validate with tracing and cancellation. A closed factory
// yields ReasonKeyError; a cancelled context yields ReasonMalformedToken with
// the context error.
func (f *Factory) ValidateContext(ctx context.Context, token string) Result {
	ctx, span := f.tracer.Start(ctx, "jwtkit.Validate")
	defer span.End()

	tok, err := f.importToken(ctx, token)
	if err != nil {
		res := Result{Reason: importFailureReason(err), Err: err}
		f.observeValidation("", res, 0)
		recordResult(span, "", res)
		return res
	}

	res := tok.Validate()
	recordResult(span, tok.Algorithm(), res)
	return res
}

// ValidateToken validates a token obtained from Import with the current
// verification key rather than the one captured at import.
func (f *Factory) ValidateToken(tok *Token) Result {
	_, verificationKey, err := f.snapshot()
	if err != nil {
		return Result{Reason: ReasonKeyError, Err: err}
	}
	defer security.ZeroBytes(verificationKey)
	return tok.ValidateWith(verificationKey)
}

func importFailureReason(err error) Reason {
	if errors.Is(err, ErrFactoryClosed) {
		return ReasonKeyError
	}
	return ReasonMalformedToken
}

func recordResult(span trace.Span, alg string, res Result) {
	span.SetAttributes(
		attribute.String("jwt.alg", metricAlgorithm(alg)),
		attribute.String("jwt.reason", res.Reason.String()),
	)
	if !res.Valid() {
		span.SetStatus(codes.Error, res.Reason.String())
	}
}

func (f *Factory) observeValidation(alg string, res Result, elapsed time.Duration) {
	label := metricAlgorithm(alg)
	f.metrics.ObserveValidation(label, res.Reason.String(), elapsed)

	entry := f.logger.WithFields(logrus.Fields{
		"op":     "validate",
		"alg":    label,
		"reason": res.Reason.String(),
	})
	if res.Valid() {
		entry.Debug("token valid")
		return
	}
	entry.WithError(res.Err).Debug("token rejected")
}

// metricAlgorithm maps header values onto a bounded label set.
func metricAlgorithm(v any) string {
	alg, ok := v.(string)
	switch {
	case !ok || alg == "":
		return "none"
	case IsSupportedAlgorithm(alg):
		return alg
	default:
		return "unsupported"
	}
}

// Close zeroes the keys held by the factory. Later calls fail with
// ErrFactoryClosed.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFactoryClosed
	}
	f.signingKey.Destroy()
	f.verificationKey.Destroy()
	f.signingKey = nil
	f.verificationKey = nil
	f.closed = true
	f.logger.Debug("factory closed")
	return nil
}

// IsClosed reports whether Close has been called.
func (f *Factory) IsClosed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}
