package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/engine/doctor"
	"go.trai.ch/zerr"
)

// Doctor diagnoses the project and returns the findings in stable check
// order. A category narrows the run; the zero value runs the full suite.
// Probe failures degrade into findings rather than aborting, but a lock
// document that exists and cannot be trusted is a hard error.
func (a *App) Doctor(ctx context.Context, root string, category domain.CheckCategory) ([]domain.Finding, error) {
	cc, err := a.checkContext(ctx, root)
	if err != nil {
		return nil, err
	}
	cc.Category = category
	return a.doctor.Run(ctx, *cc), nil
}

// Verify compares the stored fingerprint against the live environment and
// returns the discrepancies. Deciding whether they fail the run is left to
// the caller, which knows the strictness it was asked for.
func (a *App) Verify(ctx context.Context, root string) ([]domain.Discrepancy, error) {
	stored, err := a.stores(root).Read()
	if err != nil {
		return nil, err
	}

	vctx, vertex := a.tel.Record(ctx, "probe environment")
	live, err := a.prober.Capture(vctx, root)
	vertex.Complete(err)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to capture the environment")
	}

	return domain.CompareFingerprints(stored.Fingerprint, live), nil
}

// Status describes a project's lock state for display.
type Status struct {
	// LockPath is where the lock document lives, whether or not it exists.
	LockPath string

	// Document is the stored lock document; nil when the project has none.
	Document *domain.LockDocument

	// Live is the current environment; nil when probing failed.
	Live *domain.EnvironmentFingerprint

	// ProbeErr carries the probe failure when Live is nil.
	ProbeErr error

	// Discrepancies lists the drift between Document and Live when both
	// are available.
	Discrepancies []domain.Discrepancy
}

// Status reports the stored and live environment side by side. A missing
// lock document and a failing probe are both part of the status, not errors;
// only an unreadable lock document aborts.
func (a *App) Status(ctx context.Context, root string) (Status, error) {
	store := a.stores(root)
	st := Status{LockPath: store.Path()}

	doc, err := store.Read()
	switch {
	case err == nil:
		st.Document = &doc
	case errors.Is(err, domain.ErrLockNotFound):
	default:
		return Status{}, err
	}

	vctx, vertex := a.tel.Record(ctx, "probe environment")
	live, err := a.prober.Capture(vctx, root)
	vertex.Complete(err)
	if err != nil {
		st.ProbeErr = err
		return st, nil
	}
	st.Live = &live

	if st.Document != nil {
		st.Discrepancies = domain.CompareFingerprints(st.Document.Fingerprint, live)
	}
	return st, nil
}

// checkContext assembles everything the check suite reads: configuration,
// manifest, the stored document, a live capture and the package inventories.
// Manifest and configuration failures abort; the rest degrades so doctor can
// still report on a broken environment.
func (a *App) checkContext(ctx context.Context, root string) (*doctor.CheckContext, error) {
	cfg, err := a.config.Load(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	manifest, err := a.prober.ReadManifest(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read the project manifest")
	}

	cc := &doctor.CheckContext{
		Root:     root,
		Manifest: manifest,
		Config:   cfg,
	}

	stored, err := a.stores(root).Read()
	switch {
	case err == nil:
		cc.Stored = &stored
	case errors.Is(err, domain.ErrLockNotFound):
		// The drift check reports the missing document.
	default:
		return nil, err
	}

	vctx, vertex := a.tel.Record(ctx, "probe environment")
	cc.Live, cc.ProbeErr = a.prober.Capture(vctx, root)
	vertex.Complete(cc.ProbeErr)

	if installed, err := a.prober.InstalledPackages(root); err == nil {
		cc.Installed = installed
	} else {
		a.log.Warn(fmt.Sprintf("failed to enumerate installed packages: %v", err))
	}
	if locked, err := a.prober.LockedPackages(root); err == nil {
		cc.Locked = locked
	} else {
		a.log.Warn(fmt.Sprintf("failed to parse the lockfile: %v", err))
	}
	return cc, nil
}
