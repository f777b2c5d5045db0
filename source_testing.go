package pkgdeps

import (
	"context"
	"errors"
	"sync"
)

// Compile-time interface compliance checks
var _ PackageSource = (*StaticSource)(nil)
var _ PackageSource = (*CountingSource)(nil)
var _ PackageSource = (*FailingSource)(nil)

// StaticSource serves dependencies from a fixed map. Every package resolves
// to Version, and unknown packages are reported as KindNotFound.
// Useful for testing without a registry.
type StaticSource struct {
	Deps    map[string][]string
	Version string
}

// NewStaticSource creates a source whose packages all resolve to "1.0.0".
func NewStaticSource(deps map[string][]string) *StaticSource {
	return &StaticSource{Deps: deps, Version: "1.0.0"}
}

// ResolveVersion returns s.Version for known packages.
func (s *StaticSource) ResolveVersion(ctx context.Context, name string) (string, error) {
	if _, ok := s.Deps[name]; !ok {
		return "", &SourceError{Kind: KindNotFound, Package: name}
	}
	return s.Version, nil
}

// DirectDependencies returns a copy of the dependencies listed for name.
func (s *StaticSource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	deps, ok := s.Deps[name]
	if !ok {
		return nil, &SourceError{Kind: KindNotFound, Package: name, Version: version}
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out, nil
}

// CountingSource wraps a source and counts calls per package.
// It is safe for concurrent use.
type CountingSource struct {
	Source PackageSource

	mu       sync.Mutex
	resolves map[string]int
	lookups  map[string]int
}

// NewCountingSource wraps src.
func NewCountingSource(src PackageSource) *CountingSource {
	return &CountingSource{
		Source:   src,
		resolves: make(map[string]int),
		lookups:  make(map[string]int),
	}
}

// ResolveVersion records the call and delegates.
func (s *CountingSource) ResolveVersion(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	s.resolves[name]++
	s.mu.Unlock()
	return s.Source.ResolveVersion(ctx, name)
}

// DirectDependencies records the call and delegates.
func (s *CountingSource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	s.mu.Lock()
	s.lookups[name]++
	s.mu.Unlock()
	return s.Source.DirectDependencies(ctx, name, version)
}

// Lookups returns how many times DirectDependencies was called for name.
func (s *CountingSource) Lookups(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups[name]
}

// Resolves returns how many times ResolveVersion was called for name.
func (s *CountingSource) Resolves(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolves[name]
}

// TotalLookups returns the number of DirectDependencies calls.
func (s *CountingSource) TotalLookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.lookups {
		total += n
	}
	return total
}

// FailingSource wraps a source and fails lookups of selected packages.
// Useful for testing error handling paths.
type FailingSource struct {
	Source PackageSource
	Fail   map[string]error
}

// NewFailingSource fails every listed package with a KindFetch SourceError.
func NewFailingSource(src PackageSource, names ...string) *FailingSource {
	fail := make(map[string]error, len(names))
	for _, name := range names {
		fail[name] = &SourceError{Kind: KindFetch, Package: name, Err: errors.New("connection refused")}
	}
	return &FailingSource{Source: src, Fail: fail}
}

// ResolveVersion fails for listed packages and delegates otherwise.
func (s *FailingSource) ResolveVersion(ctx context.Context, name string) (string, error) {
	if err, ok := s.Fail[name]; ok {
		return "", err
	}
	return s.Source.ResolveVersion(ctx, name)
}

// DirectDependencies fails for listed packages and delegates otherwise.
func (s *FailingSource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	if err, ok := s.Fail[name]; ok {
		return nil, err
	}
	return s.Source.DirectDependencies(ctx, name, version)
}
