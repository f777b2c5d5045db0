package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Name identifies a package. Names are case-sensitive and compared as-is.
type Name = string

// Graph maps each package to the ordered list of its direct dependencies.
//
// A package present with an empty list is known to have no dependencies.
// A package absent from the graph was never resolved. Dependency lists never
// contain duplicates. Packages are kept in insertion order so that output is
// stable between runs.
//
// Graph is not safe for concurrent mutation.
type Graph struct {
	deps  map[Name][]Name
	order []Name
}

// Edge is a directed dependency edge From -> To.
type Edge struct {
	From Name
	To   Name
}

// String returns the edge as "from -> to".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[Name][]Name)}
}

// FromMap builds a graph from a plain map. Keys are inserted in sorted order
// because map iteration order is not stable.
func FromMap(m map[Name][]Name) *Graph {
	g := New()
	keys := make([]Name, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g.Set(k, m[k])
	}
	return g
}

// Set records the direct dependencies of name, replacing any previous list.
// Duplicates are dropped, keeping the first occurrence.
func (g *Graph) Set(name Name, deps []Name) {
	if _, ok := g.deps[name]; !ok {
		g.order = append(g.order, name)
	}
	g.deps[name] = dedupe(deps)
}

// AddEdge appends to to the dependency list of from, creating from if needed.
// Adding an edge that already exists is a no-op.
func (g *Graph) AddEdge(from, to Name) {
	deps, ok := g.deps[from]
	if !ok {
		g.order = append(g.order, from)
	}
	if slices.Contains(deps, to) {
		return
	}
	g.deps[from] = append(deps, to)
}

// Deps returns the direct dependencies of name and whether name is known.
// The returned slice must not be modified.
func (g *Graph) Deps(name Name) ([]Name, bool) {
	deps, ok := g.deps[name]
	return deps, ok
}

// Has reports whether name has been resolved into the graph.
func (g *Graph) Has(name Name) bool {
	_, ok := g.deps[name]
	return ok
}

// Len returns the number of resolved packages.
func (g *Graph) Len() int {
	return len(g.order)
}

// Names returns the resolved packages in insertion order.
func (g *Graph) Names() []Name {
	return slices.Clone(g.order)
}

// Edges returns every edge, grouped by source package in insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.order {
		for _, to := range g.deps[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Lookup returns an EdgeFunc that reads edges from g. Unknown packages have
// no edges.
func (g *Graph) Lookup() EdgeFunc {
	return func(name Name) []Name {
		deps, _ := g.Deps(name)
		return deps
	}
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, name := range g.order {
		c.Set(name, g.deps[name])
	}
	return c
}

// MarshalJSON encodes the graph as an object of package -> dependencies.
// Known packages without dependencies encode as an empty array.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := make(map[Name][]Name, len(g.deps))
	for name, deps := range g.deps {
		if deps == nil {
			deps = []Name{}
		}
		out[name] = deps
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object of package -> dependencies.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var m map[Name][]Name
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*g = *FromMap(m)
	return nil
}

func dedupe(names []Name) []Name {
	out := make([]Name, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
