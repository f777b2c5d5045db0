// Package render turns a dependency graph into an image by way of the
// external d2 command.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/albertocavalcante/go-pkgdeps/graph"
)

// DefaultBinary is the d2 executable looked up on PATH.
const DefaultBinary = "d2"

// DefaultTimeout bounds a single d2 invocation.
const DefaultTimeout = 2 * time.Minute

// ErrNotInstalled is returned when the d2 binary cannot be found.
var ErrNotInstalled = errors.New("d2 is not installed")

// Error reports a failed d2 invocation.
type Error struct {
	Binary string
	Source string
	Output string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s %s: %v", e.Binary, e.Source, e.Output, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// D2 runs the d2 command.
type D2 struct {
	// Binary is the executable name or path. Empty means DefaultBinary.
	Binary string

	// Timeout bounds each run. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

func (d *D2) binary() string {
	if d.Binary == "" {
		return DefaultBinary
	}
	return d.Binary
}

func (d *D2) log() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// Available reports whether the d2 binary can be found.
func (d *D2) Available() bool {
	_, err := exec.LookPath(d.binary())
	return err == nil
}

// Render runs "d2 src out". The output format follows out's extension.
func (d *D2) Render(ctx context.Context, src, out string) error {
	bin, err := exec.LookPath(d.binary())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, src, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return &Error{Binary: d.binary(), Source: src, Output: out, Stderr: stderr.String(), Err: err}
	}

	d.log().Debug("rendered diagram",
		"source", src,
		"output", out,
		"duration", time.Since(start))
	return nil
}

// RenderGraph writes g as D2 source next to out and renders it. It returns
// the path of the D2 file, which is kept even when rendering fails.
func (d *D2) RenderGraph(ctx context.Context, g *graph.Graph, out string) (string, error) {
	src := SourcePath(out)
	if err := WriteSource(g, src); err != nil {
		return "", err
	}
	return src, d.Render(ctx, src, out)
}

// WriteSource writes g in D2 syntax to path.
func WriteSource(g *graph.Graph, path string) error {
	var buf bytes.Buffer
	if err := graph.WriteD2(&buf, g); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SourcePath returns out with its extension replaced by ".d2".
func SourcePath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".d2"
}
