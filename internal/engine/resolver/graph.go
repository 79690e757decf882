package resolver

import (
	"maps"
	"slices"

	"go.trai.ch/hale/internal/core/domain"
)

// BuildGraph assembles the constraint graph for a project: the manifest's
// declared dependencies, the requirements of every top-level locked package,
// and the peer ranges of installed packages the lockfile does not cover.
// Installed copies also supply versions for packages the lockfile left
// unversioned.
func BuildGraph(
	manifest domain.Manifest,
	locked []domain.LockedPackage,
	installed []domain.InstalledPackage,
) *domain.DependencyGraph {
	g := domain.NewDependencyGraph()

	root := g.AddNode(rootName(manifest), manifest.Version)
	declared := manifest.DeclaredDependencies()
	for _, name := range slices.Sorted(maps.Keys(declared)) {
		g.AddEdge(root, g.AddNode(name, ""), declared[name])
	}

	fromLock := make(map[string]bool, len(locked))
	for _, p := range locked {
		if p.Nested {
			continue
		}
		from := g.AddNode(p.Name, p.Version)
		addRequirements(g, from, p.Dependencies)
		addRequirements(g, from, p.PeerDependencies)
		fromLock[p.Name] = true
	}

	for _, p := range installed {
		from := g.AddNode(p.Name, p.Version)
		if fromLock[p.Name] {
			continue
		}
		addRequirements(g, from, p.PeerDependencies)
	}
	return g
}

func addRequirements(g *domain.DependencyGraph, from int, reqs map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(reqs)) {
		g.AddEdge(from, g.AddNode(name, ""), reqs[name])
	}
}

func rootName(m domain.Manifest) string {
	if m.Name == "" {
		return "root"
	}
	return m.Name
}
