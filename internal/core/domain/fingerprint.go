// Package domain contains the core domain models and comparison logic for
// environment fingerprints, repair plans, and dependency graphs.
package domain

import "maps"

// PackageManager identifies the package manager a project is built with.
type PackageManager struct {
	// Name is the tool name (e.g., "npm", "pnpm", "yarn").
	Name string

	// Version is the tool version string (e.g., "8.15.1").
	Version string
}

// LockfileRef describes the package manager lockfile found in a project.
type LockfileRef struct {
	// Path is the lockfile path relative to the project root.
	Path string

	// Type is the lockfile file name (e.g., "package-lock.json", "pnpm-lock.yaml").
	Type string

	// ContentHash is the hash of the lockfile content, prefixed with the
	// algorithm identifier (e.g., "sha256:<hex>").
	ContentHash string
}

// Platform records the operating system and architecture of a capture.
// Only present on full captures.
type Platform struct {
	OS   string
	Arch string
}

// EnvironmentFingerprint is a point-in-time snapshot of a project's toolchain.
// It is an immutable value: updates produce a new fingerprint, never a mutation.
type EnvironmentFingerprint struct {
	// RuntimeVersion is the Node.js version without the leading "v" (e.g., "20.11.0").
	RuntimeVersion string

	// PackageManager identifies the package manager and its version.
	PackageManager PackageManager

	// Lockfile describes the detected lockfile. Zero value when the project has none.
	Lockfile LockfileRef

	// Frameworks maps tracked framework names to their resolved versions.
	Frameworks map[string]string

	// Platform is set on full captures only.
	Platform *Platform

	// NodeModulesHash is a digest over installed package identities,
	// prefixed with its algorithm identifier. Set on full captures only.
	NodeModulesHash string
}

// Clone returns a deep copy so callers can derive new values without aliasing maps.
func (f EnvironmentFingerprint) Clone() EnvironmentFingerprint {
	out := f
	if f.Frameworks != nil {
		out.Frameworks = maps.Clone(f.Frameworks)
	}
	if f.Platform != nil {
		p := *f.Platform
		out.Platform = &p
	}
	return out
}

// Equal reports whether two fingerprints describe the same environment.
// Platform and NodeModulesHash are capture extras and do not participate.
func (f EnvironmentFingerprint) Equal(other EnvironmentFingerprint) bool {
	if f.RuntimeVersion != other.RuntimeVersion ||
		f.PackageManager != other.PackageManager ||
		f.Lockfile != other.Lockfile {
		return false
	}
	return maps.Equal(f.Frameworks, other.Frameworks)
}
