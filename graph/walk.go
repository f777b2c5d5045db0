package graph

import (
	"context"
	"slices"
)

// EdgeFunc returns the direct dependencies of a package in an
// already-materialized graph.
type EdgeFunc func(name Name) []Name

// expandFunc returns the outgoing edges of a package during a walk. A non-nil
// error aborts the walk.
type expandFunc func(ctx context.Context, name Name) ([]Name, error)

// frame is one entry of the traversal stack.
type frame struct {
	name  Name
	depth int
	path  []Name
}

// walkResult is what a walk observed.
type walkResult struct {
	// reached holds every package pushed onto the stack, in first-push order.
	reached []Name
	// depths holds the minimum hop distance from the start for every
	// package seen, including the start itself.
	depths map[Name]int
	cycle  bool
}

// walk runs the depth-first traversal shared by Build and Closure.
//
// The stack starts as (start, 0, [start]). A package popped at a depth no
// smaller than the depth it was last processed at is skipped. A package
// popped at depth >= maxDepth is recorded but not expanded. An edge u -> v
// whose target is already on u's path sets the cycle flag and is not pushed.
//
// A package reached again through a strictly shorter path is expanded
// again, so recorded depths are minimal and the reached set does not depend
// on stack order. expand is expected to memoize, which keeps the number of
// underlying lookups at one per package.
func walk(ctx context.Context, start Name, maxDepth int, expand expandFunc) (*walkResult, error) {
	res := &walkResult{depths: map[Name]int{start: 0}}
	processed := make(map[Name]int)
	stack := []frame{{name: start, depth: 0, path: []Name{start}}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if d, ok := processed[top.name]; ok && d <= top.depth {
			continue
		}
		processed[top.name] = top.depth

		if top.depth >= maxDepth {
			continue
		}

		deps, err := expand(ctx, top.name)
		if err != nil {
			return nil, err
		}

		next := top.depth + 1
		for _, dep := range deps {
			if slices.Contains(top.path, dep) {
				res.cycle = true
				continue
			}
			if d, ok := res.depths[dep]; !ok {
				res.depths[dep] = next
				res.reached = append(res.reached, dep)
			} else if next < d {
				res.depths[dep] = next
			}
			path := make([]Name, len(top.path)+1)
			copy(path, top.path)
			path[len(top.path)] = dep
			stack = append(stack, frame{name: dep, depth: next, path: path})
		}
	}

	return res, nil
}
