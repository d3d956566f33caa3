// Package keywatch reloads key files into a factory when they change on disk.
package keywatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/cybergodev/jwtkit"
)

// DefaultDebounce is how long the watcher waits for writes to settle before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherClosed is returned by Start after Close.
var ErrWatcherClosed = errors.New("key watcher is closed")

// KeySetter receives reloaded keys. *jwtkit.Factory implements it.
type KeySetter interface {
	SetKeys(signingKey, verificationKey []byte) error
}

// Watcher watches a signing key file and a verification key file. For HMAC
// both paths name the same secret file.
type Watcher struct {
	target           KeySetter
	signingPath      string
	verificationPath string

	debounce time.Duration
	logger   logrus.FieldLogger
	onReload func(error)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle time before a reload. Non-positive values are
// ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger replaces the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReloadHook calls fn after every reload triggered by a file event, with
// the reload error or nil.
func WithReloadHook(fn func(error)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New returns a Watcher; nothing is read or watched until Start.
func New(target KeySetter, signingPath, verificationPath string, opts ...Option) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("keywatch: target is nil")
	}
	if signingPath == "" || verificationPath == "" {
		return nil, errors.New("keywatch: signing and verification paths are required")
	}

	w := &Watcher{
		target:           target,
		signingPath:      filepath.Clean(signingPath),
		verificationPath: filepath.Clean(verificationPath),
		debounce:         DefaultDebounce,
		logger:           logrus.StandardLogger(),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reload reads both files and installs them together. On error the target
// keeps its previous keys.
func (w *Watcher) Reload() error {
	signingKey, err := jwtkit.ReadKeyFile(w.signingPath)
	if err != nil {
		return fmt.Errorf("keywatch: signing key: %w", err)
	}
	verificationKey, err := jwtkit.ReadKeyFile(w.verificationPath)
	if err != nil {
		return fmt.Errorf("keywatch: verification key: %w", err)
	}
	defer clear(signingKey)
	defer clear(verificationKey)

	if err := w.target.SetKeys(signingKey, verificationKey); err != nil {
		return fmt.Errorf("keywatch: install keys: %w", err)
	}
	return nil
}

// Start loads the keys once and then watches the directories holding the key
// files until ctx is done or Close is called. Directories rather than files
// are watched so that editors and tools that replace files by rename are
// noticed.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.Reload(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("keywatch: %w", err)
	}

	dirs := map[string]struct{}{
		filepath.Dir(w.signingPath):      {},
		filepath.Dir(w.verificationPath): {},
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("keywatch: watch %s: %w", dir, err)
		}
	}

	w.mu.Lock()
	if w.closed || w.watcher != nil {
		w.mu.Unlock()
		fsw.Close()
		if w.closed {
			return ErrWatcherClosed
		}
		return errors.New("keywatch: already started")
	}
	w.watcher = fsw
	w.mu.Unlock()

	reload := make(chan struct{}, 1)
	w.wg.Add(2)
	go w.handleEvents(ctx, fsw, reload)
	go w.scheduleReload(ctx, reload)

	w.logger.WithFields(logrus.Fields{
		"signing_path":      w.signingPath,
		"verification_path": w.verificationPath,
	}).Info("watching key files")
	return nil
}

func (w *Watcher) handleEvents(ctx context.Context, fsw *fsnotify.Watcher, reload chan<- struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.isKeyFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("key watcher error")
		}
	}
}

func (w *Watcher) scheduleReload(ctx context.Context, reload <-chan struct{}) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-reload:
			if timer != nil {
				timer.Reset(w.debounce)
			} else {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}
		case <-fire:
			timer, fire = nil, nil
			err := w.Reload()
			if err != nil {
				w.logger.WithError(err).Warn("key reload failed, keeping previous keys")
			} else {
				w.logger.Info("keys reloaded")
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}

func (w *Watcher) isKeyFile(name string) bool {
	name = filepath.Clean(name)
	return name == w.signingPath || name == w.verificationPath
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	fsw := w.watcher
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	return err
}
