package domain

import "iter"

// PackageNode is one package in a dependency graph.
type PackageNode struct {
	// Name is the interned package name (e.g., "react").
	Name InternedString

	// Version is the declared or installed version, empty when the package is
	// known only through constraints.
	Version string
}

// Requirement is a dependency declaration: a package name and the version
// range required of it.
type Requirement struct {
	Name  string
	Range string
}

// ConstraintEdge is a "requires" relation between two nodes, carrying the
// version-range constraint the dependent imposes.
type ConstraintEdge struct {
	From       int
	To         int
	Constraint string
}

// DependencyGraph holds packages in a flat arena with edges stored as index
// pairs. Peer-dependency graphs are frequently cyclic, so nodes never
// reference each other directly; traversal works over indices. Built fresh
// per resolve invocation and never persisted.
type DependencyGraph struct {
	nodes []PackageNode
	index map[InternedString]int
	edges []ConstraintEdge
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		index: make(map[InternedString]int),
	}
}

// AddNode inserts a package and returns its index. Adding an existing name
// returns the existing index, filling in the version if it was unknown.
func (g *DependencyGraph) AddNode(name, version string) int {
	key := NewInternedString(name)
	if i, ok := g.index[key]; ok {
		if g.nodes[i].Version == "" && version != "" {
			g.nodes[i].Version = version
		}
		return i
	}
	g.nodes = append(g.nodes, PackageNode{Name: key, Version: version})
	i := len(g.nodes) - 1
	g.index[key] = i
	return i
}

// Lookup returns the index of a package by name.
func (g *DependencyGraph) Lookup(name string) (int, bool) {
	i, ok := g.index[NewInternedString(name)]
	return i, ok
}

// AddEdge records that node from requires node to within the given range.
func (g *DependencyGraph) AddEdge(from, to int, constraint string) {
	g.edges = append(g.edges, ConstraintEdge{From: from, To: to, Constraint: constraint})
}

// SetOutgoing replaces every requirement declared by node from. Targets that
// are not yet in the graph are created as constraint-only nodes. The resolver
// uses this to re-derive a package's peer constraints after choosing a new
// version for it.
func (g *DependencyGraph) SetOutgoing(from int, reqs []Requirement) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From != from {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	for _, req := range reqs {
		to := g.AddNode(req.Name, "")
		g.AddEdge(from, to, req.Range)
	}
}

// Node returns the package at the given index.
func (g *DependencyGraph) Node(i int) PackageNode {
	return g.nodes[i]
}

// SetVersion pins the version recorded for a node.
func (g *DependencyGraph) SetVersion(i int, version string) {
	g.nodes[i].Version = version
}

// NodeCount returns the number of packages in the graph.
func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

// Incoming returns every constraint imposed on node i, with the name of the
// requiring package, in insertion order.
func (g *DependencyGraph) Incoming(i int) []ConstraintRef {
	var out []ConstraintRef
	for _, e := range g.edges {
		if e.To == i {
			out = append(out, ConstraintRef{
				RequiredBy: g.nodes[e.From].Name.String(),
				Range:      e.Constraint,
			})
		}
	}
	return out
}

// Outgoing returns the requirements declared by node i.
func (g *DependencyGraph) Outgoing(i int) []Requirement {
	var out []Requirement
	for _, e := range g.edges {
		if e.From == i {
			out = append(out, Requirement{
				Name:  g.nodes[e.To].Name.String(),
				Range: e.Constraint,
			})
		}
	}
	return out
}

// Nodes returns an iterator over (index, node) pairs in insertion order.
func (g *DependencyGraph) Nodes() iter.Seq2[int, PackageNode] {
	return func(yield func(int, PackageNode) bool) {
		for i, n := range g.nodes {
			if !yield(i, n) {
				return
			}
		}
	}
}
