package doctor

import (
	"context"

	"github.com/go-git/go-billy/v5"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

// CheckContext carries everything a check may inspect. Checks read it and
// never mutate it; the engine fills Runner and FS before dispatch when the
// caller leaves them nil.
type CheckContext struct {
	// Root is the project directory under diagnosis.
	Root string

	// Manifest is the parsed project manifest.
	Manifest domain.Manifest

	// Stored is the lock document on disk; nil when the project has none.
	Stored *domain.LockDocument

	// Live is the current environment capture. Zero when ProbeErr is set.
	Live domain.EnvironmentFingerprint

	// ProbeErr is the error that prevented the live capture, if any. Checks
	// that need the capture degrade to a finding or skip instead of failing.
	ProbeErr error

	// Installed lists the packages under node_modules, sorted by name.
	Installed []domain.InstalledPackage

	// Locked lists the lockfile's resolved packages; empty when the project
	// has no parseable lockfile.
	Locked []domain.LockedPackage

	// FS is the filesystem checks read project files through.
	FS billy.Filesystem

	// Runner executes tool queries.
	Runner ports.CommandRunner

	// Config carries project settings and policies.
	Config domain.Config

	// Category restricts the run to one check category when set.
	Category domain.CheckCategory
}

// Check is one diagnostic. Evaluate returns a finding per problem in its
// area; a healthy area yields none. A returned error marks the check itself
// as broken and is reported as a check_error finding by the engine.
type Check interface {
	ID() string
	Category() domain.CheckCategory
	Evaluate(ctx context.Context, cc *CheckContext) ([]domain.Finding, error)
}
