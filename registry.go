package pkgdeps

import (
	"context"
	"errors"

	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// RegistrySource is a PackageSource backed by a JSON package registry.
type RegistrySource struct {
	client *registry.Client
}

// NewRegistrySource creates a source for the registry at baseURL. An empty
// baseURL selects registry.DefaultBaseURL.
func NewRegistrySource(baseURL string, opts ...registry.ClientOption) *RegistrySource {
	if baseURL == "" {
		baseURL = registry.DefaultBaseURL
	}
	return &RegistrySource{client: registry.NewClient(baseURL, opts...)}
}

// NewRegistrySourceFromClient wraps an existing registry client.
func NewRegistrySourceFromClient(client *registry.Client) *RegistrySource {
	return &RegistrySource{client: client}
}

// Client returns the underlying registry client.
func (s *RegistrySource) Client() *registry.Client {
	return s.client
}

// ResolveVersion returns the version the registry reports as current.
func (s *RegistrySource) ResolveVersion(ctx context.Context, name string) (string, error) {
	version, err := s.client.LatestVersion(ctx, name)
	if err != nil {
		return "", s.classify(ctx, name, "", err)
	}
	return version, nil
}

// DirectDependencies returns the dependency names declared by name@version.
func (s *RegistrySource) DirectDependencies(ctx context.Context, name, version string) ([]string, error) {
	deps, err := s.client.Dependencies(ctx, name, version)
	if err != nil {
		return nil, s.classify(ctx, name, version, err)
	}
	return deps, nil
}

// classify maps registry client errors onto SourceError kinds. Errors caused
// by the caller's context are returned unchanged.
func (s *RegistrySource) classify(ctx context.Context, name, version string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	serr := &SourceError{Kind: KindFetch, Package: name, Version: version, Err: err}

	var statusErr *registry.StatusError
	var decodeErr *registry.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		serr.Kind = KindParse
		serr.URL = decodeErr.URL
	case errors.As(err, &statusErr):
		serr.URL = statusErr.URL
		if errors.Is(err, registry.ErrNotFound) {
			serr.Kind = KindNotFound
		}
	}
	return serr
}

var _ PackageSource = (*RegistrySource)(nil)
