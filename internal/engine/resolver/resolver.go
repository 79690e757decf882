// Package resolver assigns versions to packages that several dependents
// constrain at once, drawing candidates from an npm registry.
package resolver

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
)

// Input carries one resolution request.
type Input struct {
	// Graph is the constraint graph to solve. It is mutated in place: chosen
	// versions are pinned onto its nodes.
	Graph *domain.DependencyGraph

	// Registry supplies version candidates and peer ranges. When nil the
	// resolver verifies the versions already recorded in the graph instead.
	Registry ports.Registry

	Config domain.ResolverConfig
}

// Resolver picks versions for multiply-constrained packages.
type Resolver struct {
	log ports.Logger
}

func New(log ports.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve assigns a version to every package constrained by two or more
// dependents. Each pass picks, per package, the candidate satisfying all of
// its parseable incoming ranges under the configured preference; a changed
// pick re-derives that package's peer constraints from the registry, so
// passes repeat until the assignment stabilizes or the iteration bound is
// reached. Packages whose constraints admit no candidate are reported as
// conflicts, never guessed at.
func (r *Resolver) Resolve(ctx context.Context, in Input) (domain.Resolution, error) {
	cfg := in.Config
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = domain.DefaultConfig().Resolver.MaxIterations
	}

	res := domain.Resolution{Chosen: make(map[string]string)}
	for res.Iterations < cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Iterations++

		changed, conflicts := r.pass(ctx, in.Graph, in.Registry, cfg.Preference, res.Chosen)
		res.Conflicts = conflicts
		if !changed {
			res.Converged = true
			break
		}
	}
	return res, nil
}

func (r *Resolver) pass(
	ctx context.Context,
	g *domain.DependencyGraph,
	reg ports.Registry,
	pref domain.ResolverPreference,
	chosen map[string]string,
) (bool, []domain.Conflict) {
	changed := false
	var conflicts []domain.Conflict

	for i, node := range g.Nodes() {
		incoming := g.Incoming(i)
		if len(incoming) < 2 {
			continue
		}

		name := node.Name.String()
		candidates := r.candidates(ctx, reg, name, node.Version)
		if len(candidates) == 0 {
			continue
		}

		pick, ok := r.pick(name, candidates, incoming, node.Version, pref)
		if !ok {
			conflicts = append(conflicts, domain.Conflict{Package: name, Constraints: incoming})
			continue
		}

		chosen[name] = pick
		if pick == node.Version {
			continue
		}
		g.SetVersion(i, pick)
		r.repin(ctx, g, reg, i, name, pick)
		changed = true
	}
	return changed, conflicts
}

// candidates lists the versions eligible for a package, newest last. Registry
// failures degrade to the version already in the graph so offline runs still
// verify the current assignment.
func (r *Resolver) candidates(ctx context.Context, reg ports.Registry, name, current string) []string {
	if reg == nil {
		return fallback(current)
	}
	versions, err := reg.Versions(ctx, name)
	if err != nil {
		r.log.Warn(fmt.Sprintf("registry lookup for %s failed, checking the current version only: %v", name, err))
		return fallback(current)
	}
	if len(versions) == 0 {
		return fallback(current)
	}
	return versions
}

func fallback(current string) []string {
	if current == "" {
		return nil
	}
	return []string{current}
}

// pick returns the preferred candidate satisfying every parseable incoming
// range. Prerelease candidates are skipped unless the package already sits on
// a prerelease.
func (r *Resolver) pick(
	name string,
	candidates []string,
	incoming []domain.ConstraintRef,
	current string,
	pref domain.ResolverPreference,
) (string, bool) {
	ranges := r.ranges(name, incoming)
	cur, err := semver.NewVersion(current)
	allowPre := err == nil && cur.Prerelease() != ""

	var satisfying []string
	for _, candidate := range candidates {
		v, err := semver.NewVersion(candidate)
		if err != nil {
			continue
		}
		if v.Prerelease() != "" && !allowPre {
			continue
		}
		ok := true
		for _, rng := range ranges {
			if !rng.Check(v) {
				ok = false
				break
			}
		}
		if ok {
			satisfying = append(satisfying, candidate)
		}
	}
	if len(satisfying) == 0 {
		return "", false
	}
	if pref == domain.PreferMinimal {
		return satisfying[0], true
	}
	return satisfying[len(satisfying)-1], true
}

func (r *Resolver) ranges(pkg string, incoming []domain.ConstraintRef) []*semver.Constraints {
	out := make([]*semver.Constraints, 0, len(incoming))
	for _, ref := range incoming {
		rng, err := semver.NewConstraint(normalizeRange(ref.Range))
		if err != nil {
			r.log.Warn(fmt.Sprintf("ignoring unparsable range %q on %s required by %s", ref.Range, pkg, ref.RequiredBy))
			continue
		}
		out = append(out, rng)
	}
	return out
}

// normalizeRange maps npm range notations without comparator meaning onto
// ones the constraint parser accepts.
func normalizeRange(rng string) string {
	rng = strings.TrimSpace(rng)
	if after, ok := strings.CutPrefix(rng, "workspace:"); ok {
		rng = after
	}
	switch rng {
	case "", "*", "latest":
		return "*"
	}
	return rng
}

// repin replaces a package's outgoing constraints with the peer ranges its
// newly chosen version declares.
func (r *Resolver) repin(ctx context.Context, g *domain.DependencyGraph, reg ports.Registry, i int, name, version string) {
	peers, err := reg.PeerDependencies(ctx, name, version)
	if err != nil {
		r.log.Warn(fmt.Sprintf("peer dependencies of %s@%s are unavailable, keeping the recorded constraints: %v", name, version, err))
		return
	}
	reqs := make([]domain.Requirement, 0, len(peers))
	for _, peer := range slices.Sorted(maps.Keys(peers)) {
		reqs = append(reqs, domain.Requirement{Name: peer, Range: peers[peer]})
	}
	g.SetOutgoing(i, reqs)
}
