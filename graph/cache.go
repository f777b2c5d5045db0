package graph

import (
	"context"
	"errors"
	"slices"
)

// Cache memoizes direct-dependency lookups for a single run.
//
// The compute function for a given package runs at most once, no matter how
// many branches of the graph reach that package. Failed lookups are cached
// too, so a failing package is not retried within the same run. Context
// cancellation and deadline errors are the exception: they are returned but
// not stored, so a later run with a live context looks the package up again.
//
// Cache is not safe for concurrent use. Create one per traversal.
type Cache struct {
	entries map[Name]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	deps []Name
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Name]cacheEntry)}
}

// GetOrCompute returns the cached dependencies of name, calling compute on
// the first request only.
func (c *Cache) GetOrCompute(name Name, compute func() ([]Name, error)) ([]Name, error) {
	if e, ok := c.entries[name]; ok {
		c.hits++
		return e.deps, e.err
	}
	c.misses++
	deps, err := compute()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err != nil {
		deps = nil
	} else if deps == nil {
		deps = []Name{}
	}
	c.entries[name] = cacheEntry{deps: slices.Clone(deps), err: err}
	return c.entries[name].deps, err
}

// Contains reports whether a lookup for name has already been made.
func (c *Cache) Contains(name Name) bool {
	_, ok := c.entries[name]
	return ok
}

// Len returns the number of memoized packages.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Hits returns how many lookups were served from the cache.
func (c *Cache) Hits() int {
	return c.hits
}

// Misses returns how many lookups invoked the compute function.
func (c *Cache) Misses() int {
	return c.misses
}
