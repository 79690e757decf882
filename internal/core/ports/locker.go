package ports

// Locker serializes repair runs against a project with an exclusive advisory
// file lock.
//
//go:generate mockgen -destination=mocks/locker_mock.go -package=mocks -source=locker.go
type Locker interface {
	// Acquire takes the lock, returning domain.ErrLockHeld immediately when
	// another process holds it. Never blocks.
	Acquire() error

	// Release drops the lock. Safe to call when the lock is not held.
	Release() error
}

// LockerFactory builds a Locker guarding the lock document at path.
type LockerFactory func(path string) Locker
