// Package graph provides the package dependency graph and the traversal
// engine used to build and query it.
//
// The package supports:
//
//   - Building a depth-bounded forward graph from a root package
//   - Inverting a forward graph into a dependents graph
//   - Computing transitive dependencies or dependents within a depth bound
//   - Rendering graphs as D2, Graphviz DOT, JSON, or an indented tree
//
// # Building a Graph
//
// Build walks dependencies with an explicit stack, so arbitrarily deep or
// cyclic inputs never grow the call stack:
//
//	res, err := graph.Build(ctx, "requests", lookup, 3)
//	if err != nil {
//	    // the root package could not be resolved
//	}
//	fmt.Println(res.CycleDetected, res.Graph.Len())
//
// Lookups for non-root packages that fail are recorded in res.Failures and
// traversal continues. Every lookup goes through a Cache, so each package is
// fetched at most once per Build call.
//
// # Querying the Graph
//
//	deps := graph.TransitiveDeps(g, "requests", 2)
//	dependents := graph.TransitiveDependents(g, "urllib3", 2)
//
// # Output Formats
//
//	graph.WriteD2(w, g)              // D2 diagram source
//	graph.WriteDOT(w, g, "requests") // Graphviz DOT
//	graph.WriteTree(w, g, "requests", 2)
//	data, _ := json.Marshal(g)
package graph
