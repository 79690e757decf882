// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/hale/internal/core/domain"
)

// Prober captures the live environment state of a project.
//
// Implementations are responsible for:
//   - Querying the runtime and package manager versions via process execution
//   - Detecting the package manager from the manifest and lockfile presence
//   - Hashing the lockfile content
//   - Resolving tracked framework versions from installed packages
//
//go:generate go run go.uber.org/mock/mockgen -source=prober.go -destination=mocks/mock_prober.go -package=mocks
type Prober interface {
	// Capture probes the project at root and returns its fingerprint.
	//
	// Returns domain.ErrProbeNotFound when the runtime or package manager
	// binary cannot be located, domain.ErrProbeUnreadable when a required
	// project file cannot be read, and domain.ErrProbeTimeout when a
	// process query exceeds its budget.
	Capture(ctx context.Context, root string) (domain.EnvironmentFingerprint, error)

	// CaptureFull probes like Capture and additionally records the platform
	// and a digest over the installed package set. Slower; used by explicit
	// lock refreshes rather than drift checks.
	CaptureFull(ctx context.Context, root string) (domain.EnvironmentFingerprint, error)

	// ReadManifest parses the project manifest at root.
	ReadManifest(root string) (domain.Manifest, error)

	// InstalledPackages lists the packages present under node_modules,
	// sorted by name. An absent node_modules yields an empty list.
	InstalledPackages(root string) ([]domain.InstalledPackage, error)

	// LockedPackages parses the resolved package set out of the project
	// lockfile, sorted by name. Projects without a parseable lockfile yield
	// an empty list.
	LockedPackages(root string) ([]domain.LockedPackage, error)
}
