package graph

import (
	"context"
	"slices"
	"sort"
)

// ClosureResult is the set of packages reachable from a start package.
type ClosureResult struct {
	// Start is the package the closure was computed from.
	Start Name

	// Packages lists every package reachable within the depth bound,
	// in first-reached order. Start is never included.
	Packages []Name

	// Depths maps each package in Packages to its minimum hop distance.
	Depths map[Name]int

	// CycleDetected is true if any edge pointed back into the current path.
	CycleDetected bool
}

// Contains reports whether name is in the closure.
func (c *ClosureResult) Contains(name Name) bool {
	_, ok := c.Depths[name]
	return ok
}

// Len returns the number of packages in the closure.
func (c *ClosureResult) Len() int {
	return len(c.Packages)
}

// Empty reports whether nothing was reachable from Start.
func (c *ClosureResult) Empty() bool {
	return len(c.Packages) == 0
}

// Sorted returns the packages in lexical order.
func (c *ClosureResult) Sorted() []Name {
	out := slices.Clone(c.Packages)
	sort.Strings(out)
	return out
}

// Closure computes every package reachable from start within maxDepth hops,
// following edges. It uses the same traversal and cycle rule as Build but
// walks an already-materialized graph, so the same function answers both
// "what does X depend on" and "what depends on X".
func Closure(start Name, edges EdgeFunc, maxDepth int) *ClosureResult {
	expand := func(_ context.Context, name Name) ([]Name, error) {
		return edges(name), nil
	}
	// expand never fails and the context is never cancelled.
	walked, _ := walk(context.Background(), start, maxDepth, expand)

	depths := make(map[Name]int, len(walked.reached))
	for _, name := range walked.reached {
		depths[name] = walked.depths[name]
	}
	return &ClosureResult{
		Start:         start,
		Packages:      walked.reached,
		Depths:        depths,
		CycleDetected: walked.cycle,
	}
}

// TransitiveDeps returns the packages start depends on within maxDepth hops.
func TransitiveDeps(g *Graph, start Name, maxDepth int) *ClosureResult {
	return Closure(start, g.Lookup(), maxDepth)
}

// TransitiveDependents returns the packages that depend on start within
// maxDepth hops.
func TransitiveDependents(g *Graph, start Name, maxDepth int) *ClosureResult {
	return Closure(start, Reverse(g).Lookup(), maxDepth)
}
