package pkgdeps

import (
	"errors"
	"log/slog"

	"github.com/albertocavalcante/go-pkgdeps/graph"
	"github.com/albertocavalcante/go-pkgdeps/metrics"
)

// Option configures an analysis run.
type Option func(*config) error

// config holds all analysis configuration.
type config struct {
	cache      *graph.Cache
	recorder   *metrics.Recorder
	mode       string
	onProgress func(ProgressEvent)

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithLogger sets a structured logger for analysis diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "pkgdeps")
//	Analyze(ctx, src, req, WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithCache supplies the lookup cache. Sharing one cache between runs
// against the same source avoids repeated lookups; by default every run
// starts with an empty cache.
func WithCache(cache *graph.Cache) Option {
	return func(c *config) error {
		if cache == nil {
			return errors.New("cache must not be nil")
		}
		c.cache = cache
		return nil
	}
}

// WithMetrics records traversal and graph metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) error {
		c.recorder = r
		return nil
	}
}

// WithMode labels metrics with the source mode ("local", "remote", "bcr").
func WithMode(mode string) Option {
	return func(c *config) error {
		if mode == "" {
			return errors.New("mode must not be empty")
		}
		c.mode = mode
		return nil
	}
}

// WithProgress sets a callback for analysis progress events.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *config) error {
		c.onProgress = fn
		return nil
	}
}

// log returns the configured logger, or a no-op logger if none was set.
// Libraries should be silent by default; callers opt in with WithLogger.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// emit delivers a progress event if a callback is set.
func (c *config) emit(e ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(e)
	}
}

// newConfig applies opts over the defaults.
func newConfig(opts ...Option) (*config, error) {
	c := &config{mode: "custom"}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ProgressEventType identifies a stage of an analysis run.
type ProgressEventType int

const (
	// ProgressAnalyzeStart fires once before the root version is resolved.
	ProgressAnalyzeStart ProgressEventType = iota
	// ProgressLookupStart fires before a package is looked up in the source.
	ProgressLookupStart
	// ProgressLookupEnd fires after a lookup; Err is set if it failed.
	ProgressLookupEnd
	// ProgressAnalyzeEnd fires once when the run finishes.
	ProgressAnalyzeEnd
)

// ProgressEvent reports analysis progress.
type ProgressEvent struct {
	Type    ProgressEventType
	Package string
	Err     error
}
