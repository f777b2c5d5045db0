package pkgdeps

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceError_IsMatchesKind(t *testing.T) {
	sentinels := []error{ErrFetch, ErrParse, ErrNotFound, ErrFile}

	for i, kind := range []ErrorKind{KindFetch, KindParse, KindNotFound, KindFile} {
		err := fmt.Errorf("wrapped: %w", &SourceError{Kind: kind, Package: "p"})
		for j, sentinel := range sentinels {
			assert.Equalf(t, i == j, errors.Is(err, sentinel), "kind %s vs %v", kind, sentinel)
		}
	}
}

func TestSourceError_Error(t *testing.T) {
	tests := []struct {
		err  *SourceError
		want string
	}{
		{
			&SourceError{Kind: KindNotFound, Package: "requests", Version: "9.9.9", URL: "https://pypi.org/pypi/requests/9.9.9/json"},
			"not found error for requests@9.9.9 (https://pypi.org/pypi/requests/9.9.9/json)",
		},
		{
			&SourceError{Kind: KindFetch, Package: "idna", Err: errors.New("connection refused")},
			"fetch error for idna: connection refused",
		},
		{
			&SourceError{Kind: KindFile, URL: "file:///tmp/deps.txt", Err: errors.New("no such file")},
			"file error for source (file:///tmp/deps.txt): no such file",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestSourceError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &SourceError{Kind: KindParse, Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, `invalid version "1.x": must be X.Y.Z`,
		(&ValidationError{Field: "version", Value: "1.x", Reason: "must be X.Y.Z"}).Error())
	assert.Equal(t, "invalid depth: must be positive",
		(&ValidationError{Field: "depth", Reason: "must be positive"}).Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())
}
