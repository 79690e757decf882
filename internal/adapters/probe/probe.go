// Package probe captures live environment fingerprints of Node.js projects.
package probe

import (
	"context"
	"runtime"

	"github.com/go-git/go-billy/v5"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

var _ ports.Prober = (*Prober)(nil)

// Prober inspects a project directory and the local toolchain to build
// environment fingerprints. Project reads go through the injected filesystem;
// version queries go through the injected runner.
type Prober struct {
	fs     billy.Filesystem
	runner ports.CommandRunner
}

// NewProber creates a new Prober.
func NewProber(fs billy.Filesystem, runner ports.CommandRunner) *Prober {
	return &Prober{fs: fs, runner: runner}
}

// Capture probes the project at root and returns its fingerprint.
func (p *Prober) Capture(ctx context.Context, root string) (domain.EnvironmentFingerprint, error) {
	return p.capture(ctx, root, false)
}

// CaptureFull probes like Capture and additionally records the platform and a
// digest over the installed package set.
func (p *Prober) CaptureFull(ctx context.Context, root string) (domain.EnvironmentFingerprint, error) {
	return p.capture(ctx, root, true)
}

func (p *Prober) capture(ctx context.Context, root string, full bool) (domain.EnvironmentFingerprint, error) {
	manifest, err := p.ReadManifest(root)
	if err != nil {
		return domain.EnvironmentFingerprint{}, err
	}

	nodeVersion, err := p.nodeVersion(ctx, root)
	if err != nil {
		return domain.EnvironmentFingerprint{}, err
	}

	pm, err := p.detectPackageManager(ctx, root, manifest)
	if err != nil {
		return domain.EnvironmentFingerprint{}, err
	}

	lockfile, err := p.detectLockfile(root)
	if err != nil {
		return domain.EnvironmentFingerprint{}, err
	}

	fp := domain.EnvironmentFingerprint{
		RuntimeVersion: nodeVersion,
		PackageManager: pm,
		Lockfile:       lockfile,
		Frameworks:     p.detectFrameworks(root, manifest),
	}

	if full {
		fp.Platform = &domain.Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
		fp.NodeModulesHash = p.nodeModulesDigest(root)
	}

	return fp, nil
}
