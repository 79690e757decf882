package probe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/util"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// nodeModulesDir is where package managers install dependencies.
const nodeModulesDir = "node_modules"

// InstalledPackages lists the packages present under node_modules, sorted by
// name. Symlinked entries (pnpm layouts) are followed. An absent node_modules
// yields an empty list.
func (p *Prober) InstalledPackages(root string) ([]domain.InstalledPackage, error) {
	dir := p.fs.Join(root, nodeModulesDir)

	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to list installed packages"), "path", dir)
	}

	var pkgs []domain.InstalledPackage
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "."):
			continue
		case strings.HasPrefix(name, "@"):
			// Scoped packages live one level down (@scope/name).
			scoped, err := p.fs.ReadDir(p.fs.Join(dir, name))
			if err != nil {
				continue
			}
			for _, sub := range scoped {
				pkgs = p.appendInstalled(pkgs, dir, name+"/"+sub.Name())
			}
		default:
			pkgs = p.appendInstalled(pkgs, dir, name)
		}
	}

	slices.SortFunc(pkgs, func(a, b domain.InstalledPackage) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pkgs, nil
}

// appendInstalled appends name when a versioned package manifest exists for it.
func (p *Prober) appendInstalled(pkgs []domain.InstalledPackage, dir, name string) []domain.InstalledPackage {
	info, ok := p.packageInfo(p.resolveSymlink(p.fs.Join(dir, name)))
	if !ok {
		return pkgs
	}
	info.Name = name
	return append(pkgs, info)
}

// packageInfo reads the fields of a package directory's manifest that matter
// for compatibility checks. Packages without a version are not considered
// installed.
func (p *Prober) packageInfo(dir string) (domain.InstalledPackage, bool) {
	data, err := util.ReadFile(p.fs, p.fs.Join(dir, manifestName))
	if err != nil {
		return domain.InstalledPackage{}, false
	}

	var pkg struct {
		Version          string            `json:"version"`
		Engines          map[string]string `json:"engines"`
		PeerDependencies map[string]string `json:"peerDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Version == "" {
		return domain.InstalledPackage{}, false
	}

	return domain.InstalledPackage{
		Version:          pkg.Version,
		EnginesNode:      pkg.Engines["node"],
		PeerDependencies: pkg.PeerDependencies,
	}, true
}

// resolveSymlink follows path one link deep. pnpm installs top-level packages
// as symlinks into its virtual store.
func (p *Prober) resolveSymlink(path string) string {
	fi, err := p.fs.Lstat(path)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return path
	}

	target, err := p.fs.Readlink(path)
	if err != nil {
		return path
	}
	if !filepath.IsAbs(target) {
		return p.fs.Join(filepath.Dir(path), target)
	}
	return target
}

// nodeModulesDigest hashes the installed package set into a stable digest.
// Projects without node_modules yield an empty digest.
func (p *Prober) nodeModulesDigest(root string) string {
	pkgs, err := p.InstalledPackages(root)
	if err != nil {
		return ""
	}
	return domain.InstalledDigest(pkgs)
}
