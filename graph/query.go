package graph

import "sort"

// Stats provides statistics about a graph as seen from a root package.
type Stats struct {
	// Packages is the number of resolved packages.
	Packages int

	// Edges is the total number of dependency edges.
	Edges int

	// DirectDependencies is the number of direct dependencies of the root.
	DirectDependencies int

	// TransitiveDependencies is the number of packages reachable from the
	// root, direct ones included.
	TransitiveDependencies int

	// Leaves is the number of resolved packages with no dependencies.
	Leaves int

	// MaxDepth is the largest minimum distance from the root to any
	// reachable package.
	MaxDepth int
}

// Statistics returns statistics about g relative to root.
func Statistics(g *Graph, root Name) Stats {
	s := Stats{
		Packages: g.Len(),
		Edges:    len(g.Edges()),
		Leaves:   len(Leaves(g)),
	}
	if deps, ok := g.Deps(root); ok {
		s.DirectDependencies = len(deps)
	}

	// Every reachable package is at most Len()+1 hops away.
	closure := Closure(root, g.Lookup(), g.Len()+1)
	s.TransitiveDependencies = closure.Len()
	for _, d := range closure.Depths {
		if d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	return s
}

// Leaves returns resolved packages with no dependencies, sorted by name.
func Leaves(g *Graph) []Name {
	var leaves []Name
	for _, name := range g.order {
		if len(g.deps[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Roots returns resolved packages that nothing in g depends on, sorted by
// name.
func Roots(g *Graph) []Name {
	rev := Reverse(g)
	var roots []Name
	for _, name := range g.order {
		if !rev.Has(name) {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// Path finds a shortest dependency path from one package to another.
// Returns nil if no path exists.
func Path(g *Graph, from, to Name) []Name {
	if from == to {
		return []Name{from}
	}

	type queueItem struct {
		name Name
		path []Name
	}

	visited := map[Name]bool{from: true}
	queue := []queueItem{{name: from, path: []Name{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps, _ := g.Deps(current.name)
		for _, dep := range deps {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			newPath := make([]Name, len(current.path)+1)
			copy(newPath, current.path)
			newPath[len(current.path)] = dep
			if dep == to {
				return newPath
			}
			queue = append(queue, queueItem{name: dep, path: newPath})
		}
	}

	return nil
}
