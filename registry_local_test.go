package pkgdeps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-pkgdeps/graph"
)

// writeBazelModule lays out modules/<name>/metadata.json and
// modules/<name>/<version>/MODULE.bazel under root.
func writeBazelModule(t *testing.T, root, name, metadata string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "modules", name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if metadata != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadata), 0o644))
	}
	for version, content := range files {
		vdir := filepath.Join(dir, version)
		require.NoError(t, os.MkdirAll(vdir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(vdir, "MODULE.bazel"), []byte(content), 0o644))
	}
}

func newBazelRegistry(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeBazelModule(t, root, "rules_go",
		`{"versions": ["0.49.0", "0.50.1", "0.51.0"], "yanked_versions": {"0.51.0": "broken"}}`,
		map[string]string{
			"0.50.1": `module(name = "rules_go", version = "0.50.1")
bazel_dep(name = "bazel_skylib", version = "1.5.0")
bazel_dep(name = "platforms", version = "0.0.10")
bazel_dep(name = "bazel_skylib", version = "1.6.0")
bazel_dep(name = "gazelle", version = "0.38.0", dev_dependency = True)
`,
		})
	writeBazelModule(t, root, "bazel_skylib",
		`{"versions": ["1.5.0"]}`,
		map[string]string{
			"1.5.0": `module(name = "bazel_skylib", version = "1.5.0")
bazel_dep(name = "platforms", version = "0.0.4")
`,
		})
	writeBazelModule(t, root, "platforms",
		`{"versions": ["0.0.10"]}`,
		map[string]string{"0.0.10": `module(name = "platforms", version = "0.0.10")`})

	return root
}

func TestBazelRegistrySource_ResolveVersion(t *testing.T) {
	src, err := NewBazelRegistrySource(newBazelRegistry(t))
	require.NoError(t, err)

	v, err := src.ResolveVersion(context.Background(), "rules_go")
	require.NoError(t, err)
	assert.Equal(t, "0.50.1", v)
}

func TestBazelRegistrySource_DirectDependencies(t *testing.T) {
	src, err := NewBazelRegistrySource(newBazelRegistry(t))
	require.NoError(t, err)

	deps, err := src.DirectDependencies(context.Background(), "rules_go", "0.50.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bazel_skylib", "platforms"}, deps)

	leaf, err := src.DirectDependencies(context.Background(), "platforms", "0.0.10")
	require.NoError(t, err)
	assert.NotNil(t, leaf)
	assert.Empty(t, leaf)
}

func TestBazelRegistrySource_Analyze(t *testing.T) {
	src, err := NewBazelRegistrySource(newBazelRegistry(t))
	require.NoError(t, err)

	res, err := Analyze(context.Background(), src, Request{Package: "rules_go", MaxDepth: 3})
	require.NoError(t, err)

	assert.Equal(t, "0.50.1", res.Version)
	assert.Equal(t, []string{"bazel_skylib", "platforms"}, res.Packages())
	assert.Empty(t, res.Failures)
}

func TestBazelRegistrySource_Errors(t *testing.T) {
	root := newBazelRegistry(t)
	writeBazelModule(t, root, "bad_meta", `{"versions": [`, nil)
	writeBazelModule(t, root, "no_versions", `{"versions": []}`, nil)
	writeBazelModule(t, root, "bad_module", `{"versions": ["1.0.0"]}`,
		map[string]string{"1.0.0": `bazel_dep(name = `})

	src, err := NewBazelRegistrySource(root)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = src.ResolveVersion(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.ResolveVersion(ctx, "bad_meta")
	assert.ErrorIs(t, err, ErrParse)

	_, err = src.ResolveVersion(ctx, "no_versions")
	assert.ErrorIs(t, err, ErrParse)

	// A second call must not be served an empty cached entry.
	v, err := src.ResolveVersion(ctx, "bad_meta")
	assert.ErrorIs(t, err, ErrParse)
	assert.Empty(t, v)

	for _, root := range []string{"bad_meta", "no_versions"} {
		_, err = Analyze(ctx, src, Request{Package: root, MaxDepth: 1})
		var rootErr *graph.RootError
		require.ErrorAs(t, err, &rootErr, root)
		assert.ErrorIs(t, err, ErrParse, root)
		assert.NotErrorIs(t, err, ErrNotFound, root)
	}

	_, err = src.DirectDependencies(ctx, "rules_go", "9.9.9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.DirectDependencies(ctx, "bad_module", "1.0.0")
	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindParse, serr.Kind)
	assert.Equal(t, "bad_module", serr.Package)
	assert.Contains(t, serr.URL, "file://")
}

func TestBazelRegistrySource_RejectsInvalidNames(t *testing.T) {
	root := newBazelRegistry(t)
	// A metadata file outside modules/ must never be reachable.
	require.NoError(t, os.WriteFile(filepath.Join(root, "metadata.json"), []byte(`{"versions": ["1.0.0"]}`), 0o644))

	src, err := NewBazelRegistrySource(root)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"..", "../modules/rules_go", "Rules_go", "rules_go/0.50.1"} {
		_, err := src.ResolveVersion(ctx, name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}

	_, err = src.DirectDependencies(ctx, "rules_go", "../../platforms/0.0.10")
	assert.ErrorIs(t, err, ErrNotFound)

	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, serr.URL)
}

func TestBazelRegistrySource_Caching(t *testing.T) {
	root := newBazelRegistry(t)
	src, err := NewBazelRegistrySource(root)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := src.DirectDependencies(ctx, "bazel_skylib", "1.5.0")
	require.NoError(t, err)

	// Served from cache even after the file is gone.
	require.NoError(t, os.RemoveAll(filepath.Join(root, "modules", "bazel_skylib")))
	second, err := src.DirectDependencies(ctx, "bazel_skylib", "1.5.0")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBazelRegistrySource_CancelledContext(t *testing.T) {
	src, err := NewBazelRegistrySource(newBazelRegistry(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.ResolveVersion(ctx, "rules_go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBazelRegistrySource_Paths(t *testing.T) {
	root := newBazelRegistry(t)

	src, err := NewBazelRegistrySource(pathToFileURL(root))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(root), src.Root())

	_, err = NewBazelRegistrySource(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrFile)

	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewBazelRegistrySource(file)
	assert.ErrorIs(t, err, ErrFile)
}

func TestParseFileURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
		skip    bool
	}{
		{url: "file:///tmp/registry", want: filepath.Clean("/tmp/registry"), skip: runtime.GOOS == "windows"},
		{url: "file:///tmp/registry/", want: filepath.Clean("/tmp/registry"), skip: runtime.GOOS == "windows"},
		{url: "file:///C:/Users/registry", want: filepath.Clean("C:/Users/registry")},
		{url: "https://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if tt.skip {
				t.Skip("unix path")
			}
			got, err := parseFileURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
