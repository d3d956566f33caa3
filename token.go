package jwtkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cybergodev/jwtkit/internal/core"
)

// Token is a single compact token moving from Empty to Built or Imported and
// then Validated. A Token is not safe for concurrent use; a Factory hands every
// caller its own.
type Token struct {
	state     tokenState
	validated bool

	signingKey      []byte
	verificationKey []byte
	allowed         map[string]struct{}
	maxSize         int

	observe func(alg string, res Result, elapsed time.Duration)
}

// TokenOption configures a Token created by NewToken.
type TokenOption func(*Token)

// WithSigningKey sets the key used by Generate: an HMAC secret or a PEM RSA
// private key. The key is copied.
func WithSigningKey(key []byte) TokenOption {
	return func(t *Token) {
		t.signingKey = bytes.Clone(key)
	}
}

// WithVerificationKey sets the key used by Validate: an HMAC secret or a PEM
// RSA public key. The key is copied.
func WithVerificationKey(key []byte) TokenOption {
	return func(t *Token) {
		t.verificationKey = bytes.Clone(key)
	}
}

// WithAllowedAlgorithms restricts Generate and Validate to algs. By default
// every supported algorithm is accepted.
func WithAllowedAlgorithms(algs ...string) TokenOption {
	return func(t *Token) {
		t.allowed = allowedSet(algs)
	}
}

// WithMaxTokenSize bounds the compact form accepted by Import and produced by
// Generate. Zero or less disables the limit.
func WithMaxTokenSize(n int) TokenOption {
	return func(t *Token) {
		t.maxSize = n
	}
}

// withSnapshot installs keys the caller already copied.
func withSnapshot(signingKey, verificationKey []byte) TokenOption {
	return func(t *Token) {
		t.signingKey = signingKey
		t.verificationKey = verificationKey
	}
}

func withObserver(fn func(alg string, res Result, elapsed time.Duration)) TokenOption {
	return func(t *Token) {
		t.observe = fn
	}
}

// NewToken returns an empty Token.
func NewToken(opts ...TokenOption) *Token {
	t := &Token{
		state:   emptyState{},
		maxSize: core.DefaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Generate signs header and payload and moves the token to the Built state.
// header must carry a supported alg and typ "JWT"; a nil payload is encoded as
// an empty object. The header and payload are copied.
func (t *Token) Generate(header Header, payload Payload) error {
	if t.State() != StateEmpty {
		return &TokenError{Op: "generate", Err: fmt.Errorf("%w: token is %s", ErrTokenState, t.State())}
	}

	desc, _, err := resolveAlgorithm(header, t.allowed)
	if err != nil {
		return &TokenError{Op: "generate", Segment: "header", Err: err}
	}
	if err := checkType(header); err != nil {
		return &TokenError{Op: "generate", Segment: "header", Err: err}
	}
	if err := checkHeaderFields(header); err != nil {
		return &TokenError{Op: "generate", Segment: "header", Err: err}
	}
	if len(t.signingKey) == 0 {
		return &TokenError{Op: "generate", Err: fmt.Errorf("%w: signing key not set", ErrKeyError)}
	}

	if payload == nil {
		payload = Payload{}
	}

	encodedHeader, err := core.EncodeJSON(header)
	if err != nil {
		return &TokenError{Op: "generate", Segment: "header", Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}
	encodedPayload, err := core.EncodeJSON(payload)
	if err != nil {
		return &TokenError{Op: "generate", Segment: "payload", Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}

	seg := core.Segments{Header: encodedHeader, Payload: encodedPayload}
	signature, err := desc.Sign([]byte(seg.SigningInput()), t.signingKey)
	if err != nil {
		return &TokenError{Op: "generate", Segment: "signature", Err: err}
	}
	seg.Signature = core.EncodeSegment(signature)

	if t.maxSize > 0 && len(seg.Compact()) > t.maxSize {
		return &TokenError{Op: "generate", Err: fmt.Errorf("%w: token too large: maximum %d characters allowed", ErrMalformedToken, t.maxSize)}
	}

	t.state = builtState{signedToken{
		header:    copyMap(header),
		payload:   copyMap(payload),
		segments:  seg,
		signature: signature,
	}}
	return nil
}

// Import parses a compact token and moves it to the Imported state. Nothing is
// verified here; call Validate before trusting the contents.
func (t *Token) Import(token string) error {
	if t.State() != StateEmpty {
		return &TokenError{Op: "import", Err: fmt.Errorf("%w: token is %s", ErrTokenState, t.State())}
	}

	seg, err := core.SplitCompact(token, t.maxSize)
	if err != nil {
		return &TokenError{Op: "import", Err: err}
	}

	header, err := core.DecodeJSONObject(seg.Header)
	if err != nil {
		return &TokenError{Op: "import", Segment: "header", Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}
	payload, err := core.DecodeJSONObject(seg.Payload)
	if err != nil {
		return &TokenError{Op: "import", Segment: "payload", Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}
	signature, err := core.DecodeSegment(seg.Signature)
	if err != nil {
		return &TokenError{Op: "import", Segment: "signature", Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}

	t.state = importedState{
		signedToken: signedToken{
			header:    header,
			payload:   payload,
			segments:  seg,
			signature: signature,
		},
		canonical: core.IsCanonicalSegment(seg.Signature, signature),
	}
	return nil
}

// Validate checks the token with the verification key it was created with.
func (t *Token) Validate() Result {
	return t.ValidateWith(t.verificationKey)
}

// ValidateWith checks the token against key. Checks run in a fixed order: the
// token must hold content, typ must be "JWT", alg must be present and accepted,
// and the signature over the stored header and payload segments must verify.
// The first failing check decides the Reason.
func (t *Token) ValidateWith(key []byte) Result {
	start := time.Now()
	res := t.validate(key)
	t.validated = res.Valid()
	if t.observe != nil {
		t.observe(t.Algorithm(), res, time.Since(start))
	}
	return res
}

func (t *Token) validate(key []byte) Result {
	st, ok := t.signed()
	if !ok {
		return failure(ReasonMalformedToken, "token", "nothing to validate", nil)
	}

	if err := checkType(st.header); err != nil {
		return Result{Reason: ReasonTypeMismatch, Err: err}
	}

	desc, reason, err := resolveAlgorithm(st.header, t.allowed)
	if err != nil {
		return Result{Reason: reason, Err: err}
	}

	if len(key) == 0 {
		return failure(ReasonKeyError, "key", "verification key not set", nil)
	}

	match, err := desc.Verify([]byte(st.segments.SigningInput()), key, st.signature)
	if err != nil {
		return failure(ReasonKeyError, "key", "verification key rejected", err)
	}
	if !match {
		return failure(ReasonSignatureInvalid, "signature", "does not match", nil)
	}
	if imported, ok := t.state.(importedState); ok && !imported.canonical {
		return failure(ReasonSignatureInvalid, "signature", "non-canonical encoding", nil)
	}

	return Result{}
}

// State reports the current lifecycle stage.
func (t *Token) State() State {
	if t.validated {
		return StateValidated
	}
	return t.state.stage()
}

// String returns the compact form, or "" for an empty token.
func (t *Token) String() string {
	st, ok := t.signed()
	if !ok {
		return ""
	}
	return st.segments.Compact()
}

// Header returns a copy of the header, or nil for an empty token.
func (t *Token) Header() Header {
	st, ok := t.signed()
	if !ok {
		return nil
	}
	return copyMap(st.header)
}

// Payload returns a copy of the payload, or nil for an empty token. Imported
// numbers are json.Number values.
func (t *Token) Payload() Payload {
	st, ok := t.signed()
	if !ok {
		return nil
	}
	return copyMap(st.payload)
}

// Algorithm returns the header's alg when it is a string.
func (t *Token) Algorithm() string {
	st, ok := t.signed()
	if !ok {
		return ""
	}
	alg, _ := st.header[HeaderAlgorithm].(string)
	return alg
}

// Registered decodes the registered claims from the payload segment. The
// values are reported as found; none of them are enforced.
func (t *Token) Registered() (RegisteredClaims, error) {
	st, ok := t.signed()
	if !ok {
		return RegisteredClaims{}, fmt.Errorf("%w: token is empty", ErrTokenState)
	}
	raw, err := core.DecodeSegment(st.segments.Payload)
	if err != nil {
		return RegisteredClaims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	var claims RegisteredClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return RegisteredClaims{}, fmt.Errorf("%w: registered claims: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

func copyMap[M ~map[string]any](m M) M {
	if m == nil {
		return nil
	}
	out := make(M, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
