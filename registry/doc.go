// Package registry is a client for JSON package registries that follow the
// PyPI JSON API layout.
//
// # Registry Layout
//
// Two endpoints are used:
//
//	<base>/<name>/json            # latest release of a project
//	<base>/<name>/<version>/json  # one specific release
//
// Both return a document whose "info" object carries the concrete version
// and the raw requirement strings ("requires_dist") of that release.
//
// # Usage
//
// Resolve the current version of a project and list its dependencies:
//
//	client := registry.NewClient(registry.DefaultBaseURL,
//	    registry.WithRateLimit(10, 5))
//	version, err := client.LatestVersion(ctx, "requests")
//	if err != nil {
//	    // errors.Is(err, registry.ErrNotFound) for unknown projects
//	}
//	deps, err := client.Dependencies(ctx, "requests", version)
//
// Requirement strings are reduced to bare names by RequirementName:
//
//	registry.RequirementName("charset-normalizer (<4,>=2)") // "charset-normalizer"
//
// The package also decodes metadata.json files of Bazel registry
// directories (Metadata), which carry the version list of a module.
package registry
