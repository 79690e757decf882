package probe

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/go-git/go-billy/v5/util"

	"go.trai.ch/hale/internal/adapters/shell"
	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/zerr"
)

// lockfileNames lists known lockfiles in detection priority order. The first
// match wins when a project carries more than one.
var lockfileNames = []struct {
	file string
	pm   string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"package-lock.json", "npm"},
}

// trackedFrameworks is the set of framework packages recorded in fingerprints.
var trackedFrameworks = []string{"next", "react", "react-dom", "typescript", "vite", "vue"}

// nodeVersion queries the Node.js runtime version, normalized without the
// leading "v".
func (p *Prober) nodeVersion(ctx context.Context, root string) (string, error) {
	out, err := p.toolVersion(ctx, root, "node")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(out, "v"), nil
}

// toolVersion runs "<tool> --version" and returns the trimmed output.
func (p *Prober) toolVersion(ctx context.Context, root, tool string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, shell.ShortTimeout)
	defer cancel()

	res, err := p.runner.Run(runCtx, root, []string{tool, "--version"})
	if err != nil {
		return "", classifyToolErr(err, tool)
	}

	version := strings.TrimSpace(res.Stdout)
	if version == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrProbeNotFound, "tool reported an empty version"), "tool", tool)
	}
	return version, nil
}

// classifyToolErr maps process failures onto the probe error taxonomy.
func classifyToolErr(err error, tool string) error {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return zerr.With(domain.ErrProbeNotFound, "tool", tool)
	case errors.Is(err, context.DeadlineExceeded):
		return zerr.With(domain.ErrProbeTimeout, "tool", tool)
	default:
		return zerr.With(zerr.Wrap(err, "version query failed"), "tool", tool)
	}
}

// detectPackageManager identifies the package manager for the project.
//
// A packageManager manifest field ("name@version") wins and its declared
// version is taken as is, without querying the tool. Otherwise the lockfile
// on disk picks the tool and its version comes from "<tool> --version".
func (p *Prober) detectPackageManager(ctx context.Context, root string, manifest domain.Manifest) (domain.PackageManager, error) {
	if name, version, ok := strings.Cut(manifest.PackageManager, "@"); ok && name != "" && version != "" {
		return domain.PackageManager{Name: name, Version: version}, nil
	}

	name := "npm"
	for _, lf := range lockfileNames {
		if p.exists(p.fs.Join(root, lf.file)) {
			name = lf.pm
			break
		}
	}

	version, err := p.toolVersion(ctx, root, name)
	if err != nil {
		return domain.PackageManager{}, err
	}
	return domain.PackageManager{Name: name, Version: version}, nil
}

// detectLockfile finds the project lockfile and hashes its content. A project
// with no lockfile yields the zero ref.
func (p *Prober) detectLockfile(root string) (domain.LockfileRef, error) {
	for _, lf := range lockfileNames {
		path := p.fs.Join(root, lf.file)
		if !p.exists(path) {
			continue
		}

		data, err := util.ReadFile(p.fs, path)
		if err != nil {
			return domain.LockfileRef{}, zerr.With(domain.ErrProbeUnreadable, "path", path)
		}
		return domain.LockfileRef{
			Path:        lf.file,
			Type:        lf.file,
			ContentHash: domain.ContentHash(data),
		}, nil
	}
	return domain.LockfileRef{}, nil
}

// detectFrameworks resolves versions for tracked framework packages. The
// installed copy under node_modules wins; the declared manifest range,
// stripped of "^" and "~" prefixes, is the fallback.
func (p *Prober) detectFrameworks(root string, manifest domain.Manifest) map[string]string {
	declared := manifest.DeclaredDependencies()

	out := make(map[string]string)
	for _, name := range trackedFrameworks {
		if version := p.installedVersion(root, name); version != "" {
			out[name] = version
			continue
		}
		if rng, ok := declared[name]; ok && rng != "" {
			out[name] = strings.TrimLeft(rng, "^~")
		}
	}
	return out
}

// installedVersion reads the version of an installed package, following the
// symlink pnpm layouts use for top-level entries.
func (p *Prober) installedVersion(root, name string) string {
	info, ok := p.packageInfo(p.resolveSymlink(p.fs.Join(root, nodeModulesDir, name)))
	if !ok {
		return ""
	}
	return info.Version
}

func (p *Prober) exists(path string) bool {
	_, err := p.fs.Stat(path)
	return err == nil
}
