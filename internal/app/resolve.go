package app

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// Resolve builds the project's dependency constraint graph and resolves every
// package that more than one dependent pins. An unsatisfiable outcome comes
// back as both the resolution and an error, so callers get the conflict
// detail and a nonzero exit from the same call.
func (a *App) Resolve(ctx context.Context, root string) (domain.Resolution, error) {
	cfg, err := a.config.Load(root)
	if err != nil {
		return domain.Resolution{}, zerr.Wrap(err, "failed to load configuration")
	}

	manifest, err := a.prober.ReadManifest(root)
	if err != nil {
		return domain.Resolution{}, zerr.Wrap(err, "failed to read the project manifest")
	}
	locked, err := a.prober.LockedPackages(root)
	if err != nil {
		return domain.Resolution{}, zerr.Wrap(err, "failed to parse the lockfile")
	}
	installed, err := a.prober.InstalledPackages(root)
	if err != nil {
		return domain.Resolution{}, zerr.Wrap(err, "failed to enumerate installed packages")
	}

	graph := resolver.BuildGraph(manifest, locked, installed)

	vctx, vertex := a.tel.Record(ctx, "resolve shared dependencies")
	res, err := a.resolver.Resolve(vctx, resolver.Input{
		Graph:    graph,
		Registry: a.registries(cfg.Registry),
		Config:   cfg.Resolver,
	})
	vertex.Complete(err)
	if err != nil {
		return domain.Resolution{}, err
	}

	if res.Unsatisfiable() {
		return res, zerr.With(domain.ErrUnsatisfiable, "conflicts", len(res.Conflicts))
	}
	return res, nil
}

// Versions lists published versions of a package, newest first. A range
// constraint filters the list; without one, prereleases are dropped. A
// positive limit caps the result.
func (a *App) Versions(ctx context.Context, root, pkg, constraint string, limit int) ([]string, error) {
	cfg, err := a.config.Load(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	var rng *semver.Constraints
	if constraint != "" {
		rng, err = semver.NewConstraint(constraint)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid range constraint"), "constraint", constraint)
		}
	}

	vctx, vertex := a.tel.Record(ctx, "query registry for "+pkg)
	versions, err := a.registries(cfg.Registry).Versions(vctx, pkg)
	vertex.Complete(err)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		v, err := semver.NewVersion(versions[i])
		if err != nil {
			continue
		}
		if rng == nil && v.Prerelease() != "" {
			continue
		}
		if rng != nil && !rng.Check(v) {
			continue
		}
		out = append(out, versions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
