// Package e2e runs pkgdeps against the live PyPI registry and the real d2
// binary. The tests are skipped in short mode and when the registry or d2
// is unavailable.
package e2e

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
	"time"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
	"github.com/albertocavalcante/go-pkgdeps/graph"
	"github.com/albertocavalcante/go-pkgdeps/internal/render"
	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// requireRegistry skips the test unless the live registry answers.
func requireRegistry(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, registry.DefaultBaseURL+"/pip/json", nil)
	if err != nil {
		t.Fatalf("Failed to build probe request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("Registry unreachable: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("Registry probe returned %d", resp.StatusCode)
	}
}

func newLiveSource() *pkgdeps.RegistrySource {
	return pkgdeps.NewRegistrySource(registry.DefaultBaseURL,
		registry.WithTimeout(30*time.Second),
		registry.WithRateLimit(5, 2))
}

func TestLive_RequestsDirectDependencies(t *testing.T) {
	requireRegistry(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := pkgdeps.Analyze(ctx, newLiveSource(), pkgdeps.Request{Package: "requests", MaxDepth: 1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !registry.IsVersion(res.Version) {
		t.Errorf("Resolved version %q is not X.Y.Z", res.Version)
	}

	// Long-standing runtime requirements of requests.
	for _, want := range []string{"certifi", "idna", "urllib3"} {
		if !res.Closure.Contains(want) {
			t.Errorf("Expected %s among dependencies, got %v", want, res.Packages())
		}
	}

	t.Logf("requests@%s depends on %v (%d lookups)", res.Version, res.Packages(), res.Lookups)
}

func TestLive_PinnedVersion(t *testing.T) {
	requireRegistry(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := pkgdeps.Analyze(ctx, newLiveSource(), pkgdeps.Request{
		Package:  "requests",
		Version:  "2.31.0",
		MaxDepth: 1,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := []string{"certifi", "charset-normalizer", "idna", "urllib3"}
	for _, name := range want {
		if !slices.Contains(res.Packages(), name) {
			t.Errorf("requests@2.31.0: missing %s in %v", name, res.Packages())
		}
	}
}

func TestLive_DeeperTraversalIsSuperset(t *testing.T) {
	requireRegistry(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src := newLiveSource()
	cache := graph.NewCache()

	shallow, err := pkgdeps.Analyze(ctx, src, pkgdeps.Request{Package: "flask", MaxDepth: 1}, pkgdeps.WithCache(cache))
	if err != nil {
		t.Fatalf("Analyze depth 1 failed: %v", err)
	}
	deep, err := pkgdeps.Analyze(ctx, src, pkgdeps.Request{Package: "flask", MaxDepth: 3}, pkgdeps.WithCache(cache))
	if err != nil {
		t.Fatalf("Analyze depth 3 failed: %v", err)
	}

	for _, name := range shallow.Packages() {
		if !deep.Closure.Contains(name) {
			t.Errorf("%s reachable at depth 1 but not at depth 3", name)
		}
	}
	for name, d := range deep.Closure.Depths {
		if d > 3 {
			t.Errorf("%s at depth %d exceeds the bound", name, d)
		}
	}
	if deep.CacheHits == 0 {
		t.Errorf("Expected the shared cache to serve depth-1 packages again")
	}
}

func TestLive_UnknownPackageIsRootFailure(t *testing.T) {
	requireRegistry(t)

	_, err := pkgdeps.Analyze(context.Background(), newLiveSource(), pkgdeps.Request{
		Package:  "this-package-should-not-exist-pkgdeps-e2e",
		MaxDepth: 1,
	})

	var rootErr *graph.RootError
	if !errors.As(err, &rootErr) {
		t.Fatalf("Expected *graph.RootError, got %v", err)
	}
	if !errors.Is(err, pkgdeps.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRender_RealD2(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}
	if _, err := exec.LookPath(render.DefaultBinary); err != nil {
		t.Skip("d2 not installed")
	}

	g := graph.FromMap(map[string][]string{
		"root": {"a", "b"},
		"a":    {"c"},
		"b":    {"c"},
	})

	for _, ext := range []string{".svg", ".png"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "graph"+ext)
			d2 := &render.D2{}
			if _, err := d2.RenderGraph(context.Background(), g, out); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("Output missing: %v", err)
			}
			if info.Size() == 0 {
				t.Errorf("Output %s is empty", out)
			}
		})
	}
}
