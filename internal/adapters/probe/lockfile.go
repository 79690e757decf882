package probe

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// LockedPackages parses the resolved package set out of the project lockfile.
// package-lock.json (npm v2 and v3) and pnpm-lock.yaml are supported; yarn and
// bun lockfiles are not parseable and yield an empty list, as do projects
// without a lockfile.
func (p *Prober) LockedPackages(root string) ([]domain.LockedPackage, error) {
	if path := p.fs.Join(root, "pnpm-lock.yaml"); p.exists(path) {
		return p.pnpmLockedPackages(path)
	}
	if path := p.fs.Join(root, "package-lock.json"); p.exists(path) {
		return p.npmLockedPackages(path)
	}
	return nil, nil
}

// npmLock mirrors the v2/v3 package-lock.json layout. The packages map keys
// entries by their install path under node_modules; v1 lockfiles lack the map
// and parse to an empty set.
type npmLock struct {
	Packages map[string]npmLockEntry `json:"packages"`
}

type npmLockEntry struct {
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

func (p *Prober) npmLockedPackages(path string) ([]domain.LockedPackage, error) {
	data, err := util.ReadFile(p.fs, path)
	if err != nil {
		return nil, zerr.With(domain.ErrProbeUnreadable, "path", path)
	}

	var lock npmLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, nil
	}

	var pkgs []domain.LockedPackage
	for key, entry := range lock.Packages {
		name, nested, ok := npmLockName(key)
		if !ok || entry.Version == "" {
			continue
		}
		pkgs = append(pkgs, domain.LockedPackage{
			Name:             name,
			Version:          entry.Version,
			Nested:           nested,
			Dependencies:     entry.Dependencies,
			PeerDependencies: entry.PeerDependencies,
		})
	}
	sortLocked(pkgs)
	return pkgs, nil
}

// npmLockName extracts the package name from a packages-map key. The root
// project occupies the empty key; deduplicated installs repeat node_modules in
// the path ("node_modules/a/node_modules/b") and keep the scope prefix for
// scoped packages.
func npmLockName(key string) (name string, nested, ok bool) {
	const marker = "node_modules/"
	idx := strings.LastIndex(key, marker)
	if idx < 0 {
		return "", false, false
	}
	name = key[idx+len(marker):]
	if name == "" {
		return "", false, false
	}
	return name, idx > 0, true
}

// pnpmLock mirrors the pnpm-lock.yaml layout. Package metadata lives under
// packages, dependency edges under snapshots in the v9 format.
type pnpmLock struct {
	Packages  map[string]pnpmLockEntry `yaml:"packages"`
	Snapshots map[string]pnpmLockEntry `yaml:"snapshots"`
}

type pnpmLockEntry struct {
	Dependencies     map[string]string `yaml:"dependencies"`
	PeerDependencies map[string]string `yaml:"peerDependencies"`
}

func (p *Prober) pnpmLockedPackages(path string) ([]domain.LockedPackage, error) {
	data, err := util.ReadFile(p.fs, path)
	if err != nil {
		return nil, zerr.With(domain.ErrProbeUnreadable, "path", path)
	}

	var lock pnpmLock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, nil
	}

	byID := make(map[string]*domain.LockedPackage)
	collect := func(entries map[string]pnpmLockEntry) {
		for key, entry := range entries {
			name, version, ok := pnpmLockKey(key)
			if !ok {
				continue
			}
			id := name + "@" + version
			pkg, found := byID[id]
			if !found {
				pkg = &domain.LockedPackage{Name: name, Version: version}
				byID[id] = pkg
			}
			if pkg.Dependencies == nil {
				pkg.Dependencies = stripPeerSuffixes(entry.Dependencies)
			}
			if pkg.PeerDependencies == nil {
				pkg.PeerDependencies = stripPeerSuffixes(entry.PeerDependencies)
			}
		}
	}
	collect(lock.Packages)
	collect(lock.Snapshots)

	pkgs := make([]domain.LockedPackage, 0, len(byID))
	for _, pkg := range byID {
		pkgs = append(pkgs, *pkg)
	}
	sortLocked(pkgs)
	return pkgs, nil
}

// pnpmLockKey splits a packages-map key into name and version. Keys look like
// "react@18.2.0" in the v9 format or "/react@18.2.0" in older ones, with an
// optional peer suffix in parentheses. The version separator is the last "@"
// so scoped names stay intact.
func pnpmLockKey(key string) (name, version string, ok bool) {
	key = strings.TrimPrefix(key, "/")
	if idx := strings.IndexByte(key, '('); idx >= 0 {
		key = key[:idx]
	}
	idx := strings.LastIndexByte(key, '@')
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// stripPeerSuffixes drops the "(peer@version)" qualifiers pnpm appends to
// resolved versions in snapshot entries.
func stripPeerSuffixes(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for name, version := range m {
		if idx := strings.IndexByte(version, '('); idx >= 0 {
			version = version[:idx]
		}
		out[name] = version
	}
	return out
}

func sortLocked(pkgs []domain.LockedPackage) {
	slices.SortFunc(pkgs, func(a, b domain.LockedPackage) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
}
