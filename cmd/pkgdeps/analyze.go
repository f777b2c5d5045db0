package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/briandowns/spinner"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
	"github.com/albertocavalcante/go-pkgdeps/internal/config"
	"github.com/albertocavalcante/go-pkgdeps/internal/render"
	"github.com/albertocavalcante/go-pkgdeps/metrics"
	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// renderError marks failures producing the diagram.
type renderError struct {
	err error
}

func (e *renderError) Error() string { return "render failed: " + e.err.Error() }
func (e *renderError) Unwrap() error { return e.err }

func (a *app) run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(a.stderr, cfg.LogLevel)

	rec := metrics.New()
	if cfg.MetricsTextfile != "" {
		defer func() {
			if werr := rec.WriteTextfile(cfg.MetricsTextfile); werr != nil {
				logger.Warn("failed to write metrics", "path", cfg.MetricsTextfile, "error", werr)
			}
		}()
	}

	src, err := openSource(cfg, logger)
	if err != nil {
		return err
	}

	printParameters(a.stdout, cfg)

	opts := []pkgdeps.Option{
		pkgdeps.WithLogger(logger),
		pkgdeps.WithMetrics(rec),
		pkgdeps.WithMode(cfg.Mode),
	}
	prog := newProgress(a, cfg)
	if prog != nil {
		opts = append(opts, pkgdeps.WithProgress(prog.update))
	}

	res, err := pkgdeps.Analyze(ctx, src, cfg.Request(), opts...)
	prog.stop()
	if err != nil {
		return err
	}

	printResult(a.stdout, res)

	if cfg.Why != "" {
		printWhy(a.stdout, res, cfg.Why)
	}
	if cfg.Format != "" {
		if err := writeGraph(a.stdout, cfg.Format, res); err != nil {
			return err
		}
	}
	if cfg.ASCII {
		if err := printTree(a.stdout, res, cfg.Depth); err != nil {
			return err
		}
	}
	if cfg.Stats {
		printStats(a.stdout, res)
	}

	return a.draw(ctx, cfg, res, logger)
}

// draw writes the D2 source next to the output image and, unless disabled,
// renders it.
func (a *app) draw(ctx context.Context, cfg config.Config, res *pkgdeps.Result, logger *slog.Logger) error {
	srcPath := render.SourcePath(cfg.Output)
	if cfg.NoRender {
		if err := render.WriteSource(res.Graph, srcPath); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "D2 source written to %s\n", srcPath)
		return nil
	}

	d2 := &render.D2{Binary: cfg.D2Binary, Logger: logger}
	srcPath, err := d2.RenderGraph(ctx, res.Graph, cfg.Output)
	if srcPath != "" {
		fmt.Fprintf(a.stdout, "D2 source written to %s\n", srcPath)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &renderError{err: err}
	}
	fmt.Fprintf(a.stdout, "Diagram written to %s\n", cfg.Output)
	return nil
}

// openSource returns the package source selected by cfg.Mode.
func openSource(cfg config.Config, logger *slog.Logger) (pkgdeps.PackageSource, error) {
	switch cfg.Mode {
	case config.ModeLocal:
		src, err := pkgdeps.NewLocalSource(cfg.Repository)
		if err != nil {
			return nil, err
		}
		if skipped := src.Skipped(); len(skipped) > 0 {
			logger.Info("skipped malformed listing lines", "path", src.Path(), "lines", skipped)
		}
		return src, nil
	case config.ModeBCR:
		src, err := pkgdeps.NewBazelRegistrySource(cfg.Repository)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		opts := []registry.ClientOption{
			registry.WithTimeout(cfg.Timeout),
			registry.WithLogger(logger),
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, registry.WithRateLimit(cfg.RateLimit, 1))
		}
		return pkgdeps.NewRegistrySource(cfg.Repository, opts...), nil
	}
}

// progress shows a spinner on a terminal while packages are looked up.
type progress struct {
	s *spinner.Spinner
}

func newProgress(a *app, cfg config.Config) *progress {
	if cfg.Mode == config.ModeLocal || a.terminal == nil || !a.terminal() {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.stderr))
	s.Suffix = " Resolving " + cfg.Package + "..."
	s.Start()
	return &progress{s: s}
}

func (p *progress) update(e pkgdeps.ProgressEvent) {
	if e.Type != pkgdeps.ProgressLookupStart {
		return
	}
	p.s.Lock()
	p.s.Suffix = " Resolving " + e.Package + "..."
	p.s.Unlock()
}

func (p *progress) stop() {
	if p == nil {
		return
	}
	p.s.Stop()
}
