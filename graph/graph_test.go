package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLookup serves edges from a map and counts calls per package.
type countingLookup struct {
	edges map[Name][]Name
	fail  map[Name]error
	calls map[Name]int
}

func newCountingLookup(edges map[Name][]Name) *countingLookup {
	return &countingLookup{
		edges: edges,
		fail:  make(map[Name]error),
		calls: make(map[Name]int),
	}
}

func (l *countingLookup) DirectDeps(_ context.Context, name Name) ([]Name, error) {
	l.calls[name]++
	if err, ok := l.fail[name]; ok {
		return nil, err
	}
	return l.edges[name], nil
}

// Helper to create a test graph:
//
//	root
//	├── a
//	│   └── c
//	└── b
//	    └── c (shared)
func createTestGraph() *Graph {
	g := New()
	g.Set("root", []Name{"a", "b"})
	g.Set("a", []Name{"c"})
	g.Set("b", []Name{"c"})
	g.Set("c", nil)
	return g
}

func TestGraph_SetDedupesAndKeepsOrder(t *testing.T) {
	g := New()
	g.Set("x", []Name{"b", "a", "b", "c", "a"})
	g.Set("y", nil)

	deps, ok := g.Deps("x")
	require.True(t, ok)
	assert.Equal(t, []Name{"b", "a", "c"}, deps)
	assert.Equal(t, []Name{"x", "y"}, g.Names())
}

func TestGraph_KnownEmptyVersusAbsent(t *testing.T) {
	g := New()
	g.Set("leaf", nil)

	deps, ok := g.Deps("leaf")
	assert.True(t, ok)
	assert.Empty(t, deps)

	_, ok = g.Deps("unknown")
	assert.False(t, ok)
	assert.False(t, g.Has("unknown"))
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")

	deps, _ := g.Deps("a")
	assert.Equal(t, []Name{"b", "c"}, deps)
	assert.False(t, g.Has("b"))
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := createTestGraph()

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":["a","b"],"a":["c"],"b":["c"],"c":[]}`, string(data))

	var decoded Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.Len())
	deps, _ := decoded.Deps("root")
	assert.Equal(t, []Name{"a", "b"}, deps)
}

func TestCache_ComputesOnce(t *testing.T) {
	c := NewCache()
	calls := 0
	compute := func() ([]Name, error) {
		calls++
		return nil, nil
	}

	first, err := c.GetOrCompute("leaf", compute)
	require.NoError(t, err)
	second, err := c.GetOrCompute("leaf", compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.NotNil(t, first)
	assert.Empty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Hits())
	assert.Equal(t, 1, c.Misses())
}

func TestCache_CachesFailures(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")
	calls := 0
	compute := func() ([]Name, error) {
		calls++
		return []Name{"ignored"}, boom
	}

	_, err := c.GetOrCompute("bad", compute)
	require.ErrorIs(t, err, boom)
	deps, err := c.GetOrCompute("bad", compute)
	require.ErrorIs(t, err, boom)

	assert.Nil(t, deps)
	assert.Equal(t, 1, calls)
}

func TestBuild_LinearChainRespectsDepth(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
		"D": {},
	})

	res, err := Build(context.Background(), "A", lookup, 2)
	require.NoError(t, err)

	assert.True(t, res.Graph.Has("A"))
	assert.True(t, res.Graph.Has("B"))
	// C is at the depth bound: recorded as an edge target, never looked up.
	assert.False(t, res.Graph.Has("C"))
	assert.Equal(t, 0, lookup.calls["C"])
	assert.Equal(t, 2, res.Depths["C"])
	assert.NotContains(t, res.Depths, "D")
	assert.False(t, res.CycleDetected)
}

func TestBuild_CycleTerminates(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{
		"A": {"B"},
		"B": {"A"},
	})

	res, err := Build(context.Background(), "A", lookup, 5)
	require.NoError(t, err)

	assert.True(t, res.CycleDetected)
	assert.Equal(t, 1, lookup.calls["A"])
	assert.Equal(t, 1, lookup.calls["B"])
	// Declared edges are kept; only traversal drops the back edge.
	deps, _ := res.Graph.Deps("B")
	assert.Equal(t, []Name{"A"}, deps)
}

func TestBuild_SelfLoop(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{"A": {"A", "B"}})

	res, err := Build(context.Background(), "A", lookup, 3)
	require.NoError(t, err)
	assert.True(t, res.CycleDetected)
	assert.Equal(t, 1, res.Depths["B"])
}

func TestBuild_DiamondFetchesSharedNodeOnce(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": {},
	})

	res, err := Build(context.Background(), "A", lookup, 5)
	require.NoError(t, err)

	for name, n := range lookup.calls {
		assert.Equalf(t, 1, n, "package %s fetched %d times", name, n)
	}
	assert.Equal(t, 4, res.Lookups)
	assert.Equal(t, 2, res.Depths["D"])
	assert.False(t, res.CycleDetected)
}

func TestBuild_MinimumDepthIsOrderIndependent(t *testing.T) {
	// The long branch A -> P -> Q -> X is popped first and reaches X at the
	// depth bound. X must still be expanded from its shorter path A -> X.
	lookup := newCountingLookup(map[Name][]Name{
		"A": {"X", "P"},
		"P": {"Q"},
		"Q": {"X"},
		"X": {"Y"},
		"Y": {"Z"},
		"Z": {},
	})

	res, err := Build(context.Background(), "A", lookup, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Depths["X"])
	assert.Equal(t, 2, res.Depths["Y"])
	assert.Equal(t, 3, res.Depths["Z"])
	assert.Equal(t, 1, lookup.calls["X"])
	assert.Equal(t, 0, lookup.calls["Z"])
}

func TestBuild_NonRootFailureIsSoft(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{
		"root": {"bad", "good"},
		"good": {"leaf"},
		"leaf": {},
	})
	lookup.fail["bad"] = errors.New("registry unavailable")

	res, err := Build(context.Background(), "root", lookup, 3)
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad", res.Failures[0].Package)
	assert.False(t, res.Graph.Has("bad"))
	assert.True(t, res.Graph.Has("leaf"))
}

func TestBuild_RootFailureIsFatal(t *testing.T) {
	boom := errors.New("not found")
	lookup := newCountingLookup(nil)
	lookup.fail["root"] = boom

	res, err := Build(context.Background(), "root", lookup, 3)
	require.Error(t, err)
	assert.Nil(t, res)

	var rootErr *RootError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, "root", rootErr.Package)
	assert.ErrorIs(t, err, boom)
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, "A", newCountingLookup(map[Name][]Name{"A": {"B"}}), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache_DoesNotStoreContextErrors(t *testing.T) {
	c := NewCache()
	calls := 0

	_, err := c.GetOrCompute("a", func() ([]Name, error) {
		calls++
		return nil, context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Contains("a"))

	deps, err := c.GetOrCompute("a", func() ([]Name, error) {
		calls++
		return []Name{"b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Name{"b"}, deps)
	assert.Equal(t, 2, calls)
}

func TestBuild_CancelledDuringLastLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	edges := map[Name][]Name{"A": {"B"}, "B": {}}
	lookup := LookupFunc(func(ctx context.Context, name Name) ([]Name, error) {
		if name == "B" {
			cancel()
			return nil, ctx.Err()
		}
		return edges[name], nil
	})

	b := NewBuilder(lookup, 3)
	b.Cache = NewCache()
	res, err := b.Build(ctx, "A")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)

	var rootErr *RootError
	assert.False(t, errors.As(err, &rootErr))
	assert.False(t, b.Cache.Contains("B"))

	// The shared cache does not carry the cancellation into the next run.
	b.Lookup = LookupFunc(func(_ context.Context, name Name) ([]Name, error) {
		return edges[name], nil
	})
	res, err = b.Build(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.True(t, res.Graph.Has("B"))
}

func TestBuild_SharedCacheAcrossBuilds(t *testing.T) {
	lookup := newCountingLookup(map[Name][]Name{"A": {"B"}, "B": {}})
	b := NewBuilder(lookup, 3)
	b.Cache = NewCache()

	_, err := b.Build(context.Background(), "A")
	require.NoError(t, err)
	res, err := b.Build(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Lookups)
	assert.Equal(t, 2, res.CacheHits)
	assert.Equal(t, 1, lookup.calls["A"])
}

func TestReverse(t *testing.T) {
	g := createTestGraph()
	rev := Reverse(g)

	for _, e := range g.Edges() {
		deps, ok := rev.Deps(e.To)
		require.Truef(t, ok, "reverse graph missing %s", e.To)
		assert.Contains(t, deps, e.From)
	}

	deps, _ := rev.Deps("c")
	assert.Equal(t, []Name{"a", "b"}, deps)
	// Nothing depends on root, so it is absent rather than empty.
	assert.False(t, rev.Has("root"))
}

func TestClosure_LinearChain(t *testing.T) {
	g := FromMap(map[Name][]Name{"A": {"B"}, "B": {"C"}, "C": {"D"}, "D": {}})

	c := TransitiveDeps(g, "A", 2)
	assert.ElementsMatch(t, []Name{"B", "C"}, c.Packages)
	assert.False(t, c.Contains("D"))
	assert.False(t, c.CycleDetected)
}

func TestClosure_ExcludesStart(t *testing.T) {
	g := FromMap(map[Name][]Name{"x": {"y"}, "y": {"x"}})

	c := TransitiveDeps(g, "x", 5)
	assert.Equal(t, []Name{"y"}, c.Packages)
	assert.True(t, c.CycleDetected)
}

func TestClosure_UnknownStart(t *testing.T) {
	c := TransitiveDeps(New(), "ghost", 3)
	assert.True(t, c.Empty())
	assert.False(t, c.CycleDetected)
}

func TestTransitiveDependents(t *testing.T) {
	g := FromMap(map[Name][]Name{"p": {"q"}, "r": {"q"}})

	c := TransitiveDependents(g, "q", 2)
	assert.Equal(t, []Name{"p", "r"}, c.Sorted())
}

func TestStatistics(t *testing.T) {
	s := Statistics(createTestGraph(), "root")

	assert.Equal(t, 4, s.Packages)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, 2, s.DirectDependencies)
	assert.Equal(t, 3, s.TransitiveDependencies)
	assert.Equal(t, 1, s.Leaves)
	assert.Equal(t, 2, s.MaxDepth)
}

func TestRootsAndLeaves(t *testing.T) {
	g := createTestGraph()
	assert.Equal(t, []Name{"root"}, Roots(g))
	assert.Equal(t, []Name{"c"}, Leaves(g))
}

func TestPath(t *testing.T) {
	g := createTestGraph()

	assert.Equal(t, []Name{"root", "a", "c"}, Path(g, "root", "c"))
	assert.Equal(t, []Name{"a"}, Path(g, "a", "a"))
	assert.Nil(t, Path(g, "c", "root"))
}
