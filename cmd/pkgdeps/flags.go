package main

import (
	"github.com/spf13/pflag"

	"github.com/albertocavalcante/go-pkgdeps/internal/config"
)

func registerFlags(fs *pflag.FlagSet, v *config.Config, configPath *string) {
	d := config.Defaults()

	fs.StringVar(configPath, "config", "", "YAML settings file (default ./"+defaultConfigFile+" if present)")

	fs.StringVarP(&v.Package, "package", "p", "", "root package name")
	fs.StringVarP(&v.Repository, "repository", "r", d.Repository, "registry URL, listing file or Bazel registry directory")
	fs.StringVarP(&v.Mode, "repo-mode", "m", d.Mode, "package source: local, remote or bcr")
	fs.StringVar(&v.Version, "version", d.Version, `root version (X.Y.Z or "latest")`)
	fs.StringVarP(&v.Output, "output", "o", d.Output, "rendered diagram (.png, .jpg or .svg)")
	fs.IntVarP(&v.Depth, "depth", "d", d.Depth, "maximum traversal depth")
	fs.BoolVar(&v.ASCII, "ascii", false, "print the graph as an ASCII tree")
	fs.BoolVar(&v.Reverse, "reverse", false, "analyze packages that depend on the root")

	fs.StringVar(&v.Format, "format", "", "also print the graph to stdout: d2, dot or json")
	fs.BoolVar(&v.NoRender, "no-render", false, "write D2 source without running d2")
	fs.BoolVar(&v.Stats, "stats", false, "print graph statistics")
	fs.StringVar(&v.Why, "why", "", "print a dependency path from the root to this package")

	fs.StringVar(&v.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.DurationVar(&v.Timeout, "timeout", d.Timeout, "per-request registry timeout")
	fs.Float64Var(&v.RateLimit, "rate-limit", 0, "maximum registry requests per second (0 = unlimited)")
	fs.StringVar(&v.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	fs.StringVar(&v.D2Binary, "d2-binary", d.D2Binary, "d2 executable")
}

// flagSetters copy an explicitly set flag from src into dst.
var flagSetters = map[string]func(dst, src *config.Config){
	"package":          func(dst, src *config.Config) { dst.Package = src.Package },
	"repository":       func(dst, src *config.Config) { dst.Repository = src.Repository },
	"repo-mode":        func(dst, src *config.Config) { dst.Mode = src.Mode },
	"version":          func(dst, src *config.Config) { dst.Version = src.Version },
	"output":           func(dst, src *config.Config) { dst.Output = src.Output },
	"depth":            func(dst, src *config.Config) { dst.Depth = src.Depth },
	"ascii":            func(dst, src *config.Config) { dst.ASCII = src.ASCII },
	"reverse":          func(dst, src *config.Config) { dst.Reverse = src.Reverse },
	"format":           func(dst, src *config.Config) { dst.Format = src.Format },
	"no-render":        func(dst, src *config.Config) { dst.NoRender = src.NoRender },
	"stats":            func(dst, src *config.Config) { dst.Stats = src.Stats },
	"why":              func(dst, src *config.Config) { dst.Why = src.Why },
	"log-level":        func(dst, src *config.Config) { dst.LogLevel = src.LogLevel },
	"timeout":          func(dst, src *config.Config) { dst.Timeout = src.Timeout },
	"rate-limit":       func(dst, src *config.Config) { dst.RateLimit = src.RateLimit },
	"metrics-textfile": func(dst, src *config.Config) { dst.MetricsTextfile = src.MetricsTextfile },
	"d2-binary":        func(dst, src *config.Config) { dst.D2Binary = src.D2Binary },
}
