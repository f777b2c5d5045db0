package graph

import "fmt"

// RootError reports that the root package itself could not be resolved.
// A graph without a resolvable root carries no meaning, so this is fatal.
type RootError struct {
	Package Name
	Err     error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("resolve root package %q: %v", e.Package, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// Failure records a non-root package whose lookup failed during traversal.
// It is carried in results and never returned as an error.
type Failure struct {
	Package Name
	Err     error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Package, f.Err)
}
