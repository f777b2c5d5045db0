package pkgdeps

import (
	"fmt"
	"slices"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-pkgdeps/internal/buildutil"
)

// parseBazelDeps parses MODULE.bazel content and returns the names of its
// non-dev bazel_dep declarations, deduplicated in declaration order.
func parseBazelDeps(filename string, content []byte) ([]string, error) {
	f, err := build.ParseModule(filename, content)
	if err != nil {
		return nil, fmt.Errorf("parse MODULE.bazel: %w", err)
	}

	deps := []string{}
	for _, call := range buildutil.Calls(f, "bazel_dep") {
		if buildutil.Bool(call, "dev_dependency") {
			continue
		}
		name := buildutil.String(call, "name")
		if name == "" || slices.Contains(deps, name) {
			continue
		}
		deps = append(deps, name)
	}
	return deps, nil
}
