package registry

import "strings"

// requirementCutset holds the characters that end the package-name token of
// a requirement string: environment markers, comparison operators and
// parenthesized version lists.
const requirementCutset = ";<>!=()"

// RequirementName reduces a raw requirement string to its bare package name
// by truncating at the first character in ";<>!=()" and trimming
// surrounding whitespace.
//
//	RequirementName("idna (<4,>=2.5)")            // "idna"
//	RequirementName("pytest>=7; extra == 'test'") // "pytest"
func RequirementName(req string) string {
	if i := strings.IndexAny(req, requirementCutset); i >= 0 {
		req = req[:i]
	}
	return strings.TrimSpace(req)
}

// DependencyNames maps each requirement to its bare name, dropping empty
// results and duplicates while keeping first-seen order.
func DependencyNames(reqs []string) []string {
	names := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		name := RequirementName(req)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
