package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the registry has no record of the requested
// project or release.
var ErrNotFound = errors.New("not found in registry")

// StatusError reports an unexpected HTTP status from the registry.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Is reports a 404 status as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// DecodeError reports a response body that is not a valid registry document.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
