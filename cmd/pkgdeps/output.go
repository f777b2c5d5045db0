package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
	"github.com/albertocavalcante/go-pkgdeps/graph"
	"github.com/albertocavalcante/go-pkgdeps/internal/config"
)

const separator = "=================================================="

func printParameters(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "Parameters:")
	fmt.Fprintf(w, "  package:    %s\n", cfg.Package)
	fmt.Fprintf(w, "  repository: %s\n", cfg.Repository)
	fmt.Fprintf(w, "  repo_mode:  %s\n", cfg.Mode)
	fmt.Fprintf(w, "  version:    %s\n", cfg.Version)
	fmt.Fprintf(w, "  output:     %s\n", cfg.Output)
	fmt.Fprintf(w, "  depth:      %d\n", cfg.Depth)
	fmt.Fprintf(w, "  ascii:      %t\n", cfg.ASCII)
	fmt.Fprintf(w, "  reverse:    %t\n", cfg.Reverse)
	fmt.Fprintln(w, separator)
}

func direction(res *pkgdeps.Result) string {
	if res.Reverse {
		return "dependents"
	}
	return "dependencies"
}

func rootLabel(res *pkgdeps.Result) string {
	if pkgdeps.IsLatest(res.Version) {
		return res.Root
	}
	return res.Root + "@" + res.Version
}

// printResult prints the closure, the cycle notice and any soft failures.
func printResult(w io.Writer, res *pkgdeps.Result) {
	if res.Empty() {
		fmt.Fprintf(w, "No %s found for %s.\n", direction(res), rootLabel(res))
	} else {
		fmt.Fprintf(w, "Transitive %s of %s (%d):\n", direction(res), rootLabel(res), res.Closure.Len())
		for _, name := range res.Packages() {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	if res.CycleDetected {
		fmt.Fprintln(w, "Note: circular dependency detected; cyclic edges were not followed.")
	}

	if len(res.Failures) > 0 {
		fmt.Fprintf(w, "Warning: %d package(s) could not be resolved:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Package, f.Err)
		}
	}
}

func printWhy(w io.Writer, res *pkgdeps.Result, target string) {
	path := graph.Path(res.Graph, res.Root, target)
	if path == nil {
		fmt.Fprintf(w, "No path from %s to %s.\n", res.Root, target)
		return
	}
	fmt.Fprintf(w, "Path: %s\n", strings.Join(path, " -> "))
}

func printTree(w io.Writer, res *pkgdeps.Result, depth int) error {
	fmt.Fprintf(w, "\nASCII tree of %s for %s:\n", direction(res), res.Root)
	return graph.WriteTree(w, res.Graph, res.Root, depth)
}

// writeGraph prints the analyzed graph in the given format.
func writeGraph(w io.Writer, format string, res *pkgdeps.Result) error {
	switch format {
	case config.FormatD2:
		return graph.WriteD2(w, res.Graph)
	case config.FormatDOT:
		return graph.WriteDOT(w, res.Graph, res.Root)
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Graph)
	}
	return fmt.Errorf("unknown format %q", format)
}

func printStats(w io.Writer, res *pkgdeps.Result) {
	s := graph.Statistics(res.Graph, res.Root)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Graph statistics")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Packages", s.Packages},
		{"Edges", s.Edges},
		{"Direct " + direction(res), s.DirectDependencies},
		{"Transitive " + direction(res), s.TransitiveDependencies},
		{"Leaves", s.Leaves},
		{"Max depth", s.MaxDepth},
		{"Lookups", res.Lookups},
		{"Cache hits", res.CacheHits},
		{"Failures", len(res.Failures)},
	})
	t.Render()
}
