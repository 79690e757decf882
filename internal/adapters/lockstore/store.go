// Package lockstore persists lock documents as human-readable YAML files.
package lockstore

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockStore = (*Store)(nil)

// Store implements ports.LockStore with one env.lock file per project root.
type Store struct {
	fs   billy.Filesystem
	path string
	mu   sync.RWMutex
}

// NewStore creates a store for the project at root.
func NewStore(fs billy.Filesystem, root string) *Store {
	return &Store{fs: fs, path: fs.Join(root, domain.LockFileName)}
}

// Path returns the lock document path.
func (s *Store) Path() string {
	return s.path
}

// Read loads and validates the lock document.
func (s *Store) Read() (domain.LockDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := util.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.LockDocument{}, zerr.With(domain.ErrLockNotFound, "path", s.path)
		}
		return domain.LockDocument{}, zerr.With(zerr.Wrap(err, "failed to read lock document"), "path", s.path)
	}

	return decodeDocument(data)
}

// Write persists the document atomically. The content lands in a temporary
// file in the same directory and is renamed into place, so a concurrent
// reader sees either the old document or the new one.
func (s *Store) Write(doc domain.LockDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create lock directory"), "path", dir)
	}

	tmp, err := s.fs.TempFile(dir, domain.LockFileName+".tmp-")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temporary lock file"), "path", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write lock document"), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write lock document"), "path", tmpName)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to replace lock document"), "path", s.path)
	}
	return nil
}
