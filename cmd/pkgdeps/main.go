// Command pkgdeps prints and draws the dependency graph of a package.
//
// Usage:
//
//	pkgdeps --package requests --depth 3 --ascii
//	pkgdeps --package root --repository deps.txt --repo-mode local --reverse
//	pkgdeps --package rules_go --repository ./bcr --repo-mode bcr --no-render
package main

import (
	"context"
	"os"
	"os/signal"
)

// version can be set during build with -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
