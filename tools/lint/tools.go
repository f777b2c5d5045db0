//go:build tools

// Package lint pins golangci-lint for go-pkgdeps in its own module. The
// staticcheck analyzers run as part of it (see .golangci.yml).
//
// Resolve the pin once, then run from the repository root:
//
//	(cd tools/lint && go mod tidy)
//	go tool -modfile=tools/lint/go.mod golangci-lint run ./...
package lint
