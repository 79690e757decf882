package domain

import "maps"

// Manifest is the parsed package.json of a project.
type Manifest struct {
	Name    string
	Version string

	// PackageManager is the raw packageManager field (e.g., "pnpm@8.15.1"),
	// empty when the manifest does not pin one.
	PackageManager string

	// Engines maps engine names to declared version ranges
	// (e.g., "node" -> ">=20.0.0").
	Engines map[string]string

	Dependencies     map[string]string
	DevDependencies  map[string]string
	PeerDependencies map[string]string
}

// DeclaredDependencies merges runtime and development dependencies.
// Runtime wins when a name appears in both sections.
func (m Manifest) DeclaredDependencies() map[string]string {
	out := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	maps.Copy(out, m.DevDependencies)
	maps.Copy(out, m.Dependencies)
	return out
}

// InstalledPackage identifies one package found under node_modules, together
// with the compatibility metadata its own manifest declares.
type InstalledPackage struct {
	Name    string
	Version string

	// EnginesNode is the package's declared engines.node range, empty when
	// the package does not declare one.
	EnginesNode string

	// PeerDependencies maps peer package names to required version ranges.
	PeerDependencies map[string]string
}

// LockedPackage is one entry of the package manager's own lockfile.
type LockedPackage struct {
	Name    string
	Version string

	// Nested marks entries installed below another package rather than at
	// the node_modules top level (npm lockfiles record both).
	Nested bool

	// Dependencies and PeerDependencies carry the entry's declared ranges
	// when the lockfile format records them.
	Dependencies     map[string]string
	PeerDependencies map[string]string
}
