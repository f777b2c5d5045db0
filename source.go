package pkgdeps

import (
	"context"

	"github.com/albertocavalcante/go-pkgdeps/graph"
)

// Latest is the version placeholder that asks a source to resolve the
// current release of a package.
const Latest = "latest"

// PackageSource answers the two questions dependency analysis asks about a
// package: which version is current, and what a given version directly
// depends on.
//
// Implementations return *SourceError for failures they can classify.
type PackageSource interface {
	// ResolveVersion returns the concrete current version of name.
	ResolveVersion(ctx context.Context, name string) (string, error)

	// DirectDependencies returns the bare names name@version depends on,
	// without duplicates and in declaration order.
	DirectDependencies(ctx context.Context, name, version string) ([]string, error)
}

// GraphProvider is implemented by sources that hold their complete graph in
// memory. Analyze uses the whole graph instead of traversing lookups, which
// lets reverse queries see every dependent in the source.
type GraphProvider interface {
	Graph() *graph.Graph
}

// IsLatest reports whether version asks for the current release.
func IsLatest(version string) bool {
	return version == "" || version == Latest
}

// sourceLookup adapts a PackageSource to graph.Lookup. The root is looked
// up at its requested version; every other package at its current version.
type sourceLookup struct {
	src         PackageSource
	root        string
	rootVersion string
}

func (l *sourceLookup) DirectDeps(ctx context.Context, name string) ([]string, error) {
	version := l.rootVersion
	if name != l.root || IsLatest(version) {
		v, err := l.src.ResolveVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		version = v
	}
	return l.src.DirectDependencies(ctx, name, version)
}

var _ graph.Lookup = (*sourceLookup)(nil)
