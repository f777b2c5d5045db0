// Package label validates and orders Bazel module names and versions.
//
// Module names must match [a-z]([a-z0-9._-]*[a-z0-9])?. Versions follow the
// Bazel registry convention: dot-separated release identifiers with an
// optional -prerelease and +build suffix, for example "0.50.1",
// "1.3.1.bcr.7" or "0.0.0-20241220-5e258e33".
package label

import (
	"fmt"
	"regexp"
)

var moduleNameRegex = regexp.MustCompile(`^[a-z]([a-z0-9._-]*[a-z0-9])?$`)

// ValidateModule returns an error unless name is a valid module name.
func ValidateModule(name string) error {
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if !moduleNameRegex.MatchString(name) {
		return fmt.Errorf("invalid module name %q: must match [a-z]([a-z0-9._-]*[a-z0-9])?", name)
	}
	return nil
}

// IsModule reports whether name is a valid module name.
func IsModule(name string) bool {
	return ValidateModule(name) == nil
}
