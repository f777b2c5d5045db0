package pkgdeps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/albertocavalcante/go-pkgdeps/graph"
)

// LocalSource is a PackageSource backed by a dependency listing file.
//
// The file is read once, up front. Each non-blank line of the form
//
//	name: dep dep dep
//
// declares the direct dependencies of name. Lines without a colon or with
// an empty name are skipped; their 1-based numbers are available from
// Skipped. If a name appears on several lines the last one wins.
//
// Lookups never touch the file system after construction.
type LocalSource struct {
	path    string
	graph   *graph.Graph
	skipped []int
}

// NewLocalSource reads and parses the listing at path.
func NewLocalSource(path string) (*LocalSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Kind: KindFile, URL: pathToFileURL(path), Err: err}
	}
	defer func() { _ = f.Close() }()

	g, skipped, err := ParseLocalGraph(f)
	if err != nil {
		return nil, &SourceError{Kind: KindFile, URL: pathToFileURL(path), Err: err}
	}
	return &LocalSource{path: path, graph: g, skipped: skipped}, nil
}

// NewLocalSourceFromGraph wraps an in-memory graph.
func NewLocalSourceFromGraph(g *graph.Graph) *LocalSource {
	return &LocalSource{graph: g}
}

// ParseLocalGraph parses a dependency listing. It returns the graph and the
// line numbers of skipped malformed lines. Lines may be of any length. Only
// read errors are returned.
func ParseLocalGraph(r io.Reader) (*graph.Graph, []int, error) {
	g := graph.New()
	var skipped []int

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("read dependency listing: %w", err)
		}
		if raw == "" && err != nil {
			break
		}
		lineNo++
		line := strings.TrimSpace(raw)
		if line != "" {
			name, deps, ok := strings.Cut(line, ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				skipped = append(skipped, lineNo)
			} else {
				g.Set(name, strings.Fields(deps))
			}
		}
		if err != nil {
			break
		}
	}
	return g, skipped, nil
}

// Path returns the file the source was read from, or "" for in-memory
// sources.
func (s *LocalSource) Path() string {
	return s.path
}

// Skipped returns the 1-based line numbers that were ignored as malformed.
func (s *LocalSource) Skipped() []int {
	return s.skipped
}

// Graph returns the complete graph described by the listing.
func (s *LocalSource) Graph() *graph.Graph {
	return s.graph
}

// ResolveVersion always returns Latest: listings carry no versions.
func (s *LocalSource) ResolveVersion(ctx context.Context, name string) (string, error) {
	return Latest, nil
}

// DirectDependencies returns the dependencies listed for name. The version
// is ignored. A name the listing never declares has no dependencies.
func (s *LocalSource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	deps, _ := s.graph.Deps(name)
	out := make([]string, len(deps))
	copy(out, deps)
	return out, nil
}

var (
	_ PackageSource = (*LocalSource)(nil)
	_ GraphProvider = (*LocalSource)(nil)
)
