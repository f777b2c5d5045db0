package pkgdeps

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for source failures. A *SourceError matches the sentinel
// of its Kind under errors.Is.
var (
	// ErrFetch indicates a transport or HTTP failure talking to a registry.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a response or file that could not be understood.
	ErrParse = errors.New("malformed data")

	// ErrNotFound indicates the source has no record of the package or version.
	ErrNotFound = errors.New("package not found")

	// ErrFile indicates a local file that is missing or unreadable.
	ErrFile = errors.New("file error")
)

// ErrorKind classifies a SourceError.
type ErrorKind int

const (
	KindFetch ErrorKind = iota
	KindParse
	KindNotFound
	KindFile
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	case KindNotFound:
		return "not found"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindFetch:
		return ErrFetch
	case KindParse:
		return ErrParse
	case KindNotFound:
		return ErrNotFound
	case KindFile:
		return ErrFile
	default:
		return nil
	}
}

// SourceError reports a PackageSource that could not answer a lookup.
type SourceError struct {
	Kind    ErrorKind
	Package string
	Version string // empty for version-less lookups
	URL     string // registry URL or file:// location, if known
	Err     error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error for ")
	if e.Package == "" {
		b.WriteString("source")
	} else {
		b.WriteString(e.Package)
		if e.Version != "" {
			b.WriteString("@" + e.Version)
		}
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " (%s)", e.URL)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *SourceError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// ValidationError reports malformed caller input, detected before any
// traversal starts.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
