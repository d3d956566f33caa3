package security

import (
	"runtime"
	"sync"
)

// SecureBytes owns a private copy of sensitive bytes and zeroes it on Destroy.
// It is safe for concurrent use.
type SecureBytes struct {
	mu   sync.RWMutex
	data []byte
}

// NewSecureBytes copies data into a new SecureBytes. The caller keeps ownership
// of data.
func NewSecureBytes(data []byte) *SecureBytes {
	s := &SecureBytes{data: make([]byte, len(data))}
	copy(s.data, data)
	runtime.SetFinalizer(s, (*SecureBytes).Destroy)
	return s
}

// Snapshot returns an independent copy of the held bytes, or nil once destroyed
// or when nothing is held.
func (s *SecureBytes) Snapshot() []byte {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// Len returns the number of bytes held.
func (s *SecureBytes) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Destroy zeroes the held bytes. Calling it more than once is harmless.
func (s *SecureBytes) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ZeroBytes(s.data)
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// ZeroBytes overwrites data with zeros.
func ZeroBytes(data []byte) {
	clear(data)
	runtime.KeepAlive(data)
}
