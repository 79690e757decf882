package ports

import "go.trai.ch/hale/internal/core/domain"

// LockStore persists the lock document for a project.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type LockStore interface {
	// Read loads and validates the lock document.
	//
	// Returns domain.ErrLockNotFound when no document exists,
	// domain.ErrLockMalformed when it cannot be parsed, and
	// domain.ErrUnsupportedSchema when its schema major version is not
	// supported. A schema mismatch is never reported as malformed.
	Read() (domain.LockDocument, error)

	// Write persists the document atomically: the content is written to a
	// temporary file and renamed into place, so a concurrent reader sees
	// either the old document or the new one, never a partial write.
	Write(doc domain.LockDocument) error

	// Path returns the absolute path of the lock document.
	Path() string
}

// LockStoreFactory builds a LockStore for the project at root. Operations
// resolve the root at call time, so stores are constructed per invocation.
type LockStoreFactory func(root string) LockStore
