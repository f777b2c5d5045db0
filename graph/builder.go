package graph

import (
	"context"
	"log/slog"
	"sort"
)

// Lookup fetches the direct dependencies of a package, typically from a
// registry or a file. Implementations may block on I/O.
type Lookup interface {
	DirectDeps(ctx context.Context, name Name) ([]Name, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, name Name) ([]Name, error)

// DirectDeps calls f(ctx, name).
func (f LookupFunc) DirectDeps(ctx context.Context, name Name) ([]Name, error) {
	return f(ctx, name)
}

// Builder constructs a depth-bounded forward graph from a root package.
type Builder struct {
	// Lookup resolves direct dependencies.
	Lookup Lookup

	// MaxDepth bounds how many hops from the root are expanded.
	// Packages at MaxDepth appear as edge targets but are not looked up.
	MaxDepth int

	// Cache memoizes lookups. If nil, each Build call uses a fresh cache.
	Cache *Cache

	// Logger receives soft-failure warnings and debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// BuildResult is the output of a Build call.
type BuildResult struct {
	// Root is the package the traversal started from.
	Root Name

	// Graph holds every package that was looked up successfully.
	Graph *Graph

	// CycleDetected is true if any edge pointed back into the current path.
	CycleDetected bool

	// Depths maps every package seen to its minimum distance from Root.
	Depths map[Name]int

	// Failures lists non-root packages whose lookup failed, sorted by name.
	// Those packages contribute no edges.
	Failures []Failure

	// Lookups is the number of lookups that reached the underlying Lookup.
	Lookups int

	// CacheHits is the number of lookups served from the cache.
	CacheHits int
}

// NewBuilder creates a builder for the given lookup and depth bound.
func NewBuilder(lookup Lookup, maxDepth int) *Builder {
	return &Builder{
		Lookup:   lookup,
		MaxDepth: maxDepth,
	}
}

// Build is shorthand for NewBuilder(lookup, maxDepth).Build(ctx, root).
func Build(ctx context.Context, root Name, lookup Lookup, maxDepth int) (*BuildResult, error) {
	return NewBuilder(lookup, maxDepth).Build(ctx, root)
}

// Build traverses dependencies starting at root.
//
// A failed lookup of root returns a *RootError. A failed lookup of any other
// package is logged, recorded in BuildResult.Failures, and treated as having
// no dependencies. If ctx is done, Build returns ctx.Err() instead of a
// partial result.
func (b *Builder) Build(ctx context.Context, root Name) (*BuildResult, error) {
	cache := b.Cache
	if cache == nil {
		cache = NewCache()
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hits, misses := cache.Hits(), cache.Misses()

	g := New()
	failed := make(map[Name]error)

	expand := func(ctx context.Context, name Name) ([]Name, error) {
		cached := cache.Contains(name)
		deps, err := cache.GetOrCompute(name, func() ([]Name, error) {
			return b.Lookup.DirectDeps(ctx, name)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if name == root {
				return nil, &RootError{Package: root, Err: err}
			}
			if _, seen := failed[name]; !seen {
				logger.Warn("dependency lookup failed, treating package as a leaf",
					"package", name, "error", err)
				failed[name] = err
			}
			return nil, nil
		}
		if cached {
			logger.Debug("dependency cache hit", "package", name)
		}
		g.Set(name, deps)
		return deps, nil
	}

	walked, err := walk(ctx, root, b.MaxDepth, expand)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BuildResult{
		Root:          root,
		Graph:         g,
		CycleDetected: walked.cycle,
		Depths:        walked.depths,
		Lookups:       cache.Misses() - misses,
		CacheHits:     cache.Hits() - hits,
	}
	for name, err := range failed {
		res.Failures = append(res.Failures, Failure{Package: name, Err: err})
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Package < res.Failures[j].Package
	})

	logger.Debug("graph built",
		"root", root,
		"packages", g.Len(),
		"lookups", res.Lookups,
		"cycle_detected", res.CycleDetected)

	return res, nil
}
