// Package pkgdeps analyzes dependency relationships between software
// packages.
//
// Given a root package it determines which packages the root transitively
// depends on or, in reverse mode, which packages transitively depend on the
// root. The traversal is bounded by a maximum depth, detects cycles, and
// looks up each package at most once per run.
//
// # Overview
//
// The package provides three kinds of PackageSource:
//
//   - RegistrySource: a JSON package registry such as PyPI
//   - LocalSource: a "name: dep dep" listing file
//   - BazelRegistrySource: a Bazel registry directory
//
// The traversal engine, graph type and output formats live in the graph
// subpackage.
//
// # Quick Start
//
//	src := pkgdeps.NewRegistrySource(registry.DefaultBaseURL)
//	res, err := pkgdeps.Analyze(ctx, src, pkgdeps.Request{
//	    Package:  "requests",
//	    MaxDepth: 2,
//	})
//	if err != nil {
//	    // *graph.RootError when the root itself cannot be resolved
//	}
//	fmt.Println(res.Closure.Sorted())
//
// From a listing file:
//
//	res, err := pkgdeps.AnalyzeFile(ctx, "deps.txt", pkgdeps.Request{
//	    Package:  "root",
//	    MaxDepth: 3,
//	    Reverse:  true,
//	})
//
// # Failures
//
// A failed lookup of the root package aborts the run with a
// *graph.RootError. A failed lookup of any other package is logged and
// recorded in Result.Failures; that package is treated as a leaf.
package pkgdeps

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/albertocavalcante/go-pkgdeps/graph"
	"github.com/albertocavalcante/go-pkgdeps/metrics"
	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// Request describes one analysis.
type Request struct {
	// Package is the root package name.
	Package string

	// Version is the root version in X.Y.Z form, or "" / Latest to resolve
	// the current release.
	Version string

	// MaxDepth bounds the traversal in hops from the root. Must be positive.
	MaxDepth int

	// Reverse selects dependents instead of dependencies.
	Reverse bool
}

// Validate checks the request, returning a *ValidationError on the first
// problem found.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Package) == "" {
		return &ValidationError{Field: "package", Value: r.Package, Reason: "must not be empty"}
	}
	if !IsLatest(r.Version) && !registry.IsVersion(r.Version) {
		return &ValidationError{Field: "version", Value: r.Version, Reason: `must be X.Y.Z or "latest"`}
	}
	if r.MaxDepth <= 0 {
		return &ValidationError{Field: "depth", Reason: "must be a positive integer"}
	}
	return nil
}

// Result is the outcome of an analysis.
type Result struct {
	// Root is the analyzed package.
	Root string

	// Version is the root version that was analyzed. Sources without
	// versions report Latest.
	Version string

	// Reverse reports whether dependents were computed.
	Reverse bool

	// Forward is the dependency graph that was built or loaded.
	Forward *graph.Graph

	// Graph is Forward, or its reverse when Reverse is set.
	Graph *graph.Graph

	// Closure holds the packages reachable from Root in Graph.
	Closure *graph.ClosureResult

	// CycleDetected is true if the build or the closure dropped a cyclic edge.
	CycleDetected bool

	// Failures lists non-root packages whose lookup failed.
	Failures []graph.Failure

	// Lookups and CacheHits count source lookups made while building Forward.
	// Both are zero for sources that provide a complete graph.
	Lookups   int
	CacheHits int
}

// Empty reports the "no dependencies found" (or "no dependents found")
// outcome. It is not an error.
func (r *Result) Empty() bool {
	return r.Closure == nil || r.Closure.Empty()
}

// Packages returns the closure in lexical order.
func (r *Result) Packages() []string {
	if r.Closure == nil {
		return nil
	}
	return r.Closure.Sorted()
}

// Analyze resolves the root version, builds the dependency graph from src,
// optionally reverses it, and computes the transitive closure of the root.
//
// If src implements GraphProvider its complete graph is used as the forward
// graph. Otherwise the graph is built by traversal from the root.
func Analyze(ctx context.Context, src PackageSource, req Request, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	req.Package = strings.TrimSpace(req.Package)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := cfg.log()
	cfg.emit(ProgressEvent{Type: ProgressAnalyzeStart, Package: req.Package})

	res, err := analyze(ctx, src, req, cfg)

	outcome := metrics.OutcomeOK
	var rootErr *graph.RootError
	switch {
	case errors.As(err, &rootErr):
		outcome = metrics.OutcomeRootFailed
	case err != nil:
		outcome = metrics.OutcomeError
	case res.Empty():
		outcome = metrics.OutcomeEmpty
	}
	cfg.recorder.ObserveRun(cfg.mode, outcome, time.Since(start))
	cfg.emit(ProgressEvent{Type: ProgressAnalyzeEnd, Package: req.Package, Err: err})

	if err != nil {
		logger.Error("analysis failed", "package", req.Package, "error", err)
		return nil, err
	}
	logger.Info("analysis complete",
		"package", res.Root,
		"version", res.Version,
		"reverse", res.Reverse,
		"packages", res.Closure.Len(),
		"cycle_detected", res.CycleDetected,
		"soft_failures", len(res.Failures),
		"duration", time.Since(start))
	return res, nil
}

// AnalyzeFile analyzes a dependency listing file.
func AnalyzeFile(ctx context.Context, path string, req Request, opts ...Option) (*Result, error) {
	src, err := NewLocalSource(path)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, src, req, opts...)
}

func analyze(ctx context.Context, src PackageSource, req Request, cfg *config) (*Result, error) {
	logger := cfg.log()

	version := req.Version
	if IsLatest(version) {
		v, err := src.ResolveVersion(ctx, req.Package)
		if err != nil {
			return nil, &graph.RootError{Package: req.Package, Err: err}
		}
		version = v
		logger.Info("resolved root version", "package", req.Package, "version", version)
	}

	res := &Result{
		Root:    req.Package,
		Version: version,
		Reverse: req.Reverse,
	}

	if gp, ok := src.(GraphProvider); ok {
		res.Forward = gp.Graph()
		if skipped, ok := src.(interface{ Skipped() []int }); ok {
			for _, line := range skipped.Skipped() {
				logger.Debug("skipped malformed listing line", "line", line)
			}
		}
	} else {
		built, err := buildForward(ctx, src, req.Package, version, req.MaxDepth, cfg)
		if err != nil {
			return nil, err
		}
		res.Forward = built.Graph
		res.CycleDetected = built.CycleDetected
		res.Failures = built.Failures
		res.Lookups = built.Lookups
		res.CacheHits = built.CacheHits
		cfg.recorder.ObserveTraversal(built.Lookups, built.CacheHits, len(built.Failures), built.CycleDetected)
	}
	cfg.recorder.ObserveGraph("forward", res.Forward.Len(), len(res.Forward.Edges()))

	res.Graph = res.Forward
	if req.Reverse {
		res.Graph = graph.Reverse(res.Forward)
		cfg.recorder.ObserveGraph("reverse", res.Graph.Len(), len(res.Graph.Edges()))
		logger.Debug("built reverse graph", "packages", res.Graph.Len())
	}

	res.Closure = graph.Closure(res.Root, res.Graph.Lookup(), req.MaxDepth)
	res.CycleDetected = res.CycleDetected || res.Closure.CycleDetected
	cfg.recorder.ObserveClosure(res.Closure.Len())

	return res, nil
}

// buildForward traverses src from the root.
func buildForward(ctx context.Context, src PackageSource, root, version string, maxDepth int, cfg *config) (*graph.BuildResult, error) {
	var lookup graph.Lookup = &sourceLookup{src: src, root: root, rootVersion: version}
	if cfg.onProgress != nil {
		inner := lookup
		lookup = graph.LookupFunc(func(ctx context.Context, name string) ([]string, error) {
			cfg.emit(ProgressEvent{Type: ProgressLookupStart, Package: name})
			deps, err := inner.DirectDeps(ctx, name)
			cfg.emit(ProgressEvent{Type: ProgressLookupEnd, Package: name, Err: err})
			return deps, err
		})
	}

	b := graph.NewBuilder(lookup, maxDepth)
	b.Cache = cfg.cache
	b.Logger = cfg.logger
	return b.Build(ctx, root)
}
