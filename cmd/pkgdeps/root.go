package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
	"github.com/albertocavalcante/go-pkgdeps/graph"
	"github.com/albertocavalcante/go-pkgdeps/internal/config"
	"github.com/albertocavalcante/go-pkgdeps/internal/render"
)

// Exit codes.
const (
	// ExitOK indicates success, including runs that found no dependencies.
	ExitOK = 0
	// ExitError indicates a general failure.
	ExitError = 1
	// ExitValidation indicates invalid flags, environment or config file.
	ExitValidation = 2
	// ExitRootFailure indicates the root package could not be resolved.
	ExitRootFailure = 3
	// ExitRender indicates the diagram could not be rendered.
	ExitRender = 4
)

// defaultConfigFile is read from the working directory when --config and
// PKGDEPS_CONFIG are both unset. It may be absent.
const defaultConfigFile = "pkgdeps.yaml"

type app struct {
	stdout io.Writer
	stderr io.Writer

	lookupEnv  func(string) (string, bool)
	loadDotEnv bool
	terminal   func() bool

	configPath string
	flags      config.Config
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		stdout:     stdout,
		stderr:     stderr,
		lookupEnv:  os.LookupEnv,
		loadDotEnv: true,
	}
	a.terminal = func() bool {
		f, ok := a.stderr.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
	return a
}

// flagError marks command-line parsing failures.
type flagError struct {
	err error
}

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkgdeps",
		Short: "Analyze package dependency graphs",
		Long: `pkgdeps resolves the transitive dependencies of a package, or with
--reverse the packages that depend on it, up to a maximum depth.

Packages come from a JSON package registry (--repo-mode remote), a
"name: dep dep" listing file (local) or a Bazel registry directory (bcr).
The graph is written as D2 source and rendered with the d2 command.

Settings are read from pkgdeps.yaml (or --config), then PKGDEPS_*
environment variables and .env, then flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	registerFlags(cmd.Flags(), &a.flags, &a.configPath)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		if errors.Is(err, render.ErrNotInstalled) {
			fmt.Fprintln(a.stderr, "Install d2 from https://d2lang.com/tour/install or pass --no-render.")
		}
		return exitCode(err)
	}
	return ExitOK
}

// exitCode maps an error returned by the root command to a process exit code.
func exitCode(err error) int {
	var (
		verr    *pkgdeps.ValidationError
		ferr    *flagError
		rootErr *graph.RootError
		rerr    *renderError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &ferr):
		return ExitValidation
	case errors.As(err, &rootErr):
		return ExitRootFailure
	case errors.As(err, &rerr):
		return ExitRender
	}
	return ExitError
}

// loadConfig layers defaults, the YAML file, the environment and the flags
// that were set explicitly, then validates the result.
func (a *app) loadConfig(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Defaults()

	if a.loadDotEnv {
		if err := config.LoadDotEnv(); err != nil {
			return cfg, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	path := a.configPath
	if path == "" {
		if v, ok := a.lookupEnv(config.EnvPrefix + "CONFIG"); ok {
			path = strings.TrimSpace(v)
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, &pkgdeps.ValidationError{Field: "config", Value: path, Reason: "file does not exist"}
		}
	} else {
		path = defaultConfigFile
	}
	if err := config.LoadFile(path, &cfg); err != nil {
		return cfg, &pkgdeps.ValidationError{Field: "config", Value: path, Reason: err.Error()}
	}

	if err := config.ApplyEnv(&cfg, a.lookupEnv); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *pflag.Flag) {
		if set, ok := flagSetters[f.Name]; ok {
			set(&cfg, &a.flags)
		}
	})

	cfg.Normalize()
	return cfg, cfg.Validate()
}

// newLogger returns a text logger on w tagged with a fresh run_id.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("run_id", uuid.NewString())
}
