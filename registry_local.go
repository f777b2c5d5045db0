package pkgdeps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-pkgdeps/label"
	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// BazelRegistrySource is a PackageSource backed by a Bazel registry
// directory, such as a checkout of the Bazel Central Registry.
//
// The directory should follow the standard registry layout:
//
//	{root}/modules/{name}/metadata.json
//	{root}/modules/{name}/{version}/MODULE.bazel
//
// The current version of a module is the highest non-yanked entry of its
// metadata.json. Names and versions that are not valid module names or
// versions are reported as not found without touching the filesystem. Dependencies are the non-dev bazel_dep names declared in
// MODULE.bazel. Parsed files are cached for the lifetime of the source.
type BazelRegistrySource struct {
	rootPath      string
	depsCache     sync.Map // map[string][]string keyed by "name@version"
	metadataCache sync.Map // map[string]*registry.Metadata keyed by module name
}

// NewBazelRegistrySource creates a source for a local registry directory.
// dir may be a native path or a file:// URL.
func NewBazelRegistrySource(dir string) (*BazelRegistrySource, error) {
	if isFileURL(dir) {
		path, err := parseFileURL(dir)
		if err != nil {
			return nil, err
		}
		dir = path
	}
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, &SourceError{Kind: KindFile, URL: pathToFileURL(dir), Err: err}
	}
	if !info.IsDir() {
		return nil, &SourceError{
			Kind: KindFile,
			URL:  pathToFileURL(dir),
			Err:  errors.New("registry path is not a directory"),
		}
	}
	return &BazelRegistrySource{rootPath: dir}, nil
}

// Root returns the registry directory.
func (r *BazelRegistrySource) Root() string {
	return r.rootPath
}

// ResolveVersion reads modules/{name}/metadata.json and returns its latest
// non-yanked version.
func (r *BazelRegistrySource) ResolveVersion(ctx context.Context, name string) (string, error) {
	metadata, err := r.metadata(ctx, name)
	if err != nil {
		return "", err
	}
	version := metadata.LatestVersion()
	if version == "" {
		return "", &SourceError{Kind: KindParse, Package: name, Err: errors.New("metadata lists no versions")}
	}
	return version, nil
}

// DirectDependencies parses modules/{name}/{version}/MODULE.bazel.
func (r *BazelRegistrySource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	if err := checkModule(name, version); err != nil {
		return nil, err
	}
	cacheKey := name + "@" + version
	if cached, ok := r.depsCache.Load(cacheKey); ok {
		return cached.([]string), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modulePath := filepath.Join(r.rootPath, "modules", name, version, "MODULE.bazel")
	data, err := r.readFile(modulePath, name, version)
	if err != nil {
		return nil, err
	}

	deps, err := parseBazelDeps(modulePath, data)
	if err != nil {
		return nil, &SourceError{
			Kind:    KindParse,
			Package: name,
			Version: version,
			URL:     pathToFileURL(modulePath),
			Err:     err,
		}
	}

	r.depsCache.Store(cacheKey, deps)
	return deps, nil
}

// metadata reads and caches metadata.json for a module.
func (r *BazelRegistrySource) metadata(ctx context.Context, name string) (*registry.Metadata, error) {
	if cached, ok := r.metadataCache.Load(name); ok {
		return cached.(*registry.Metadata), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkModule(name, ""); err != nil {
		return nil, err
	}

	metadataPath := filepath.Join(r.rootPath, "modules", name, "metadata.json")
	data, err := r.readFile(metadataPath, name, "")
	if err != nil {
		return nil, err
	}

	var metadata registry.Metadata
	if err = json.Unmarshal(data, &metadata); err != nil {
		err = fmt.Errorf("decode metadata: %w", err)
	} else {
		err = metadata.Validate()
	}
	if err != nil {
		return nil, &SourceError{Kind: KindParse, Package: name, URL: pathToFileURL(metadataPath), Err: err}
	}

	r.metadataCache.Store(name, &metadata)
	return &metadata, nil
}

// checkModule rejects names and versions that cannot name a registry entry.
func checkModule(name, version string) error {
	err := label.ValidateModule(name)
	if err == nil && version != "" && !label.IsVersion(version) {
		err = fmt.Errorf("invalid version %q", version)
	}
	if err != nil {
		return &SourceError{Kind: KindNotFound, Package: name, Version: version, Err: err}
	}
	return nil
}

// readFile reads a registry file, reporting a missing file as KindNotFound.
func (r *BazelRegistrySource) readFile(path, name, version string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	kind := KindFile
	if errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return nil, &SourceError{
		Kind:    kind,
		Package: name,
		Version: version,
		URL:     pathToFileURL(path),
		Err:     err,
	}
}

// parseFileURL extracts the path from a file:// URL.
// Handles both Unix (file:///path) and Windows (file:///C:/path) formats.
//
// Examples:
//
//	Unix:    file:///tmp/registry      -> /tmp/registry
//	Windows: file:///C:/Users/registry -> C:/Users/registry
func parseFileURL(url string) (string, error) {
	if !isFileURL(url) {
		return "", fmt.Errorf("not a file:// URL: %s", url)
	}

	path := strings.TrimPrefix(url, "file://")

	// file:///C:/path -> C:/path
	if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}

	return filepath.Clean(path), nil
}

// isWindowsDriveLetter returns true if c is a valid Windows drive letter (A-Z, a-z).
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// isFileURL checks if a URL is a file:// URL.
func isFileURL(url string) bool {
	return strings.HasPrefix(url, "file://")
}

// pathToFileURL converts a native file path to a file:// URL.
// Uses forward slashes and handles Windows drive letters correctly.
func pathToFileURL(path string) string {
	urlPath := filepath.ToSlash(path)

	if len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}

	return "file://" + urlPath
}

var _ PackageSource = (*BazelRegistrySource)(nil)
