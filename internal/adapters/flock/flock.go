// Package flock guards the lock document with an exclusive advisory file lock.
package flock

import (
	"os"
	"sync"

	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Locker = (*Locker)(nil)

// Locker implements ports.Locker over a ".lock" sidecar next to the guarded
// path. The sidecar file survives releases; only the lock state matters.
type Locker struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// NewLocker creates a locker guarding path.
func NewLocker(path string) *Locker {
	return &Locker{path: path + ".lock"}
}

// Acquire takes the exclusive lock, failing fast with domain.ErrLockHeld when
// another process holds it. Acquiring an already-held lock is a no-op.
func (l *Locker) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // Sidecar next to the lock document
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open lock file"), "path", l.path)
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return err
	}

	l.file = f
	return nil
}

// Release drops the lock. Safe to call when the lock is not held.
func (l *Locker) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil

	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to release lock"), "path", l.path)
	}
	if closeErr != nil {
		return zerr.With(zerr.Wrap(closeErr, "failed to close lock file"), "path", l.path)
	}
	return nil
}
