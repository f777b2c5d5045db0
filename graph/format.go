package graph

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Tree branch drawing.
const (
	branchMid   = "├── "
	branchLast  = "└── "
	indentMid   = "│   "
	indentLast  = "    "
	circularTag = " (circular)"
)

// WriteD2 writes g as D2 diagram source: a direction header followed by one
// directed-edge statement per dependency edge.
func WriteD2(w io.Writer, g *Graph) error {
	var buf bytes.Buffer
	buf.WriteString("direction: down\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "%s -> %s\n", quoteD2(e.From), quoteD2(e.To))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// quoteD2 quotes a D2 identifier, escaping embedded quotes and backslashes.
func quoteD2(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// WriteDOT writes g in Graphviz DOT format. The root package, if non-empty,
// is drawn bold.
func WriteDOT(w io.Writer, g *Graph, root Name) error {
	var buf bytes.Buffer

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n\n")

	if root != "" {
		fmt.Fprintf(&buf, "  %q [style=bold];\n", root)
	}
	for _, name := range g.order {
		if name == root {
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", name)
	}

	buf.WriteString("\n")

	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// treeItem is one pending line of tree output.
type treeItem struct {
	name   Name
	prefix string
	last   bool
	depth  int
	path   []Name
}

// WriteTree writes an indented tree of g starting at root. Packages up to
// maxDepth hops from root are printed. A package that already appears on
// its own branch is marked "(circular)" and not expanded further.
func WriteTree(w io.Writer, g *Graph, root Name, maxDepth int) error {
	var buf bytes.Buffer
	buf.WriteString(root + "\n")

	var stack []treeItem
	push := func(parent treeItem) {
		deps, _ := g.Deps(parent.name)
		childPrefix := parent.prefix
		if parent.depth > 0 {
			if parent.last {
				childPrefix += indentLast
			} else {
				childPrefix += indentMid
			}
		}
		// Push in reverse so the first dependency is printed first.
		for i := len(deps) - 1; i >= 0; i-- {
			path := make([]Name, len(parent.path)+1)
			copy(path, parent.path)
			path[len(parent.path)] = deps[i]
			stack = append(stack, treeItem{
				name:   deps[i],
				prefix: childPrefix,
				last:   i == len(deps)-1,
				depth:  parent.depth + 1,
				path:   path,
			})
		}
	}

	if maxDepth > 0 {
		push(treeItem{name: root, path: []Name{root}})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		connector := branchMid
		if item.last {
			connector = branchLast
		}
		buf.WriteString(item.prefix + connector + item.name)

		if slices.Contains(item.path[:len(item.path)-1], item.name) {
			buf.WriteString(circularTag + "\n")
			continue
		}
		buf.WriteString("\n")

		if item.depth < maxDepth {
			push(item)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Tree returns the output of WriteTree as a string.
func Tree(g *Graph, root Name, maxDepth int) string {
	var b strings.Builder
	_ = WriteTree(&b, g, root, maxDepth)
	return b.String()
}
