package registry

import "github.com/albertocavalcante/go-pkgdeps/label"

// Document is the JSON body returned by the registry for a project or a
// specific release. Only the fields needed for dependency analysis are
// decoded; everything else in the response is ignored.
type Document struct {
	// Info describes the project at the requested (or latest) release.
	Info Info `json:"info"`
}

// Info is the "info" object of a registry document.
type Info struct {
	// Name is the project name as the registry spells it.
	Name string `json:"name"`

	// Version is the concrete release this document describes.
	Version string `json:"version"`

	// Summary is a one-line project description.
	Summary string `json:"summary,omitempty"`

	// RequiresDist lists raw requirement strings, for example
	// "idna (<4,>=2.5)" or "pytest>=7; extra == 'test'".
	// The registry returns null for releases without requirements.
	RequiresDist []string `json:"requires_dist"`

	// RequiresPython is the interpreter constraint, informational only.
	RequiresPython string `json:"requires_python,omitempty"`
}

// Dependencies returns the bare, deduplicated dependency names declared by
// the document, in first-seen order.
func (d *Document) Dependencies() []string {
	return DependencyNames(d.Info.RequiresDist)
}

// Metadata represents the metadata.json file for a module in a Bazel
// registry directory. It supplies the version list used to resolve "latest".
type Metadata struct {
	// Homepage is the URL to the project's homepage.
	Homepage string `json:"homepage,omitempty"`

	// Versions lists all available versions in the registry.
	Versions []string `json:"versions"`

	// YankedVersions maps version strings to yank reasons.
	YankedVersions map[string]string `json:"yanked_versions,omitempty"`

	// Deprecated explains why the module should not be used.
	Deprecated string `json:"deprecated,omitempty"`
}

// LatestVersion returns the highest version that is not yanked. If every
// version is yanked the highest one is returned, and if no version parses
// (for example "1..0") the last listed one. Returns an empty string if no
// versions are available.
func (m *Metadata) LatestVersion() string {
	if v := label.Highest(m.Versions, func(v string) bool { return !m.IsYanked(v) }); v != "" {
		return v
	}
	if v := label.Highest(m.Versions, nil); v != "" {
		return v
	}
	if len(m.Versions) == 0 {
		return ""
	}
	return m.Versions[len(m.Versions)-1]
}

// IsYanked returns true if the given version is yanked.
func (m *Metadata) IsYanked(version string) bool {
	_, ok := m.YankedVersions[version]
	return ok
}

// HasVersion returns true if the given version exists in the registry.
func (m *Metadata) HasVersion(version string) bool {
	for _, v := range m.Versions {
		if v == version {
			return true
		}
	}
	return false
}
