package graph

// Reverse inverts g: every edge u -> v becomes v -> u.
//
// Packages with no incoming edges in g are absent from the result rather
// than present with an empty list, so Has on the reversed graph answers
// "does anything depend on this package". Dependents are listed in the
// insertion order of their source packages in g.
func Reverse(g *Graph) *Graph {
	rev := New()
	for _, e := range g.Edges() {
		rev.AddEdge(e.To, e.From)
	}
	return rev
}
