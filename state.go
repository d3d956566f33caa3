package jwtkit

import "github.com/cybergodev/jwtkit/internal/core"

// State is the lifecycle stage of a Token.
type State int

const (
	StateEmpty State = iota
	StateBuilt
	StateImported
	StateValidated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilt:
		return "built"
	case StateImported:
		return "imported"
	case StateValidated:
		return "validated"
	default:
		return "unknown"
	}
}

// tokenState is implemented by emptyState, builtState and importedState.
type tokenState interface {
	stage() State
}

type emptyState struct{}

func (emptyState) stage() State { return StateEmpty }

// signedToken is the content shared by built and imported tokens. segments are
// the encoded parts exactly as produced or received; the signing input is always
// derived from them.
type signedToken struct {
	header    Header
	payload   Payload
	segments  core.Segments
	signature []byte
}

type builtState struct {
	signedToken
}

func (builtState) stage() State { return StateBuilt }

type importedState struct {
	signedToken
	// canonical is false when the signature segment carries non-zero trailing
	// bits and so is not the exact encoding of signature.
	canonical bool
}

func (importedState) stage() State { return StateImported }

func (t *Token) signed() (signedToken, bool) {
	switch st := t.state.(type) {
	case builtState:
		return st.signedToken, true
	case importedState:
		return st.signedToken, true
	default:
		return signedToken{}, false
	}
}
