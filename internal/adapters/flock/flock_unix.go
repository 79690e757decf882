//go:build unix

package flock

import (
	"errors"
	"os"
	"syscall"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// lockFile takes a non-blocking exclusive flock(2) on f. Advisory flock state
// is released automatically if the process dies, so a crashed run never
// wedges the project.
func lockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return zerr.With(domain.ErrLockHeld, "path", f.Name())
		}
		return zerr.With(zerr.Wrap(err, "failed to lock file"), "path", f.Name())
	}
	return nil
}

func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
