package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// Init captures the full environment and records it as the project's expected
// state. An existing lock document is never overwritten unless force is set;
// this includes documents that are present but unreadable.
func (a *App) Init(ctx context.Context, root string, force bool) (domain.LockDocument, error) {
	store := a.stores(root)
	if !force {
		_, err := store.Read()
		if err == nil || !errors.Is(err, domain.ErrLockNotFound) {
			return domain.LockDocument{}, zerr.With(domain.ErrLockExists, "path", store.Path())
		}
	}

	lock := a.lockers(store.Path())
	if err := lock.Acquire(); err != nil {
		return domain.LockDocument{}, err
	}
	defer a.release(lock)

	vctx, vertex := a.tel.Record(ctx, "capture environment")
	fp, err := a.prober.CaptureFull(vctx, root)
	vertex.Complete(err)
	if err != nil {
		return domain.LockDocument{}, zerr.Wrap(err, "failed to capture the environment")
	}

	doc := domain.NewLockDocument(fp, generatedBy())
	if err := store.Write(doc); err != nil {
		return domain.LockDocument{}, zerr.Wrap(err, "failed to write the lock document")
	}
	a.log.Info(fmt.Sprintf("recorded environment state in %s", store.Path()))
	return doc, nil
}

// Lock refreshes the stored fingerprint from the live environment, creating
// the document when none exists. With full set the platform and the installed
// package digest are recaptured as well; otherwise the document carries only
// what the fast probe sees.
func (a *App) Lock(ctx context.Context, root string, full bool) (domain.LockDocument, error) {
	store := a.stores(root)
	lock := a.lockers(store.Path())
	if err := lock.Acquire(); err != nil {
		return domain.LockDocument{}, err
	}
	defer a.release(lock)

	existing, err := store.Read()
	if err != nil && !errors.Is(err, domain.ErrLockNotFound) {
		return domain.LockDocument{}, err
	}
	found := err == nil

	vctx, vertex := a.tel.Record(ctx, "capture environment")
	var fp domain.EnvironmentFingerprint
	if full {
		fp, err = a.prober.CaptureFull(vctx, root)
	} else {
		fp, err = a.prober.Capture(vctx, root)
	}
	vertex.Complete(err)
	if err != nil {
		return domain.LockDocument{}, zerr.Wrap(err, "failed to capture the environment")
	}

	var doc domain.LockDocument
	if found {
		doc = existing.Refresh(fp, generatedBy())
	} else {
		doc = domain.NewLockDocument(fp, generatedBy())
	}
	if err := store.Write(doc); err != nil {
		return domain.LockDocument{}, zerr.Wrap(err, "failed to write the lock document")
	}
	a.log.Info(fmt.Sprintf("refreshed environment state in %s", store.Path()))
	return doc, nil
}
