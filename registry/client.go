package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client configuration defaults.
const (
	DefaultBaseURL             = "https://pypi.org/pypi"
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
	DefaultCacheSize           = 512
)

// Client fetches project and release documents from a JSON package registry.
//
// Documents are kept in a bounded LRU keyed by request URL, and concurrent
// requests for the same URL share a single HTTP round trip. A Client is safe
// for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	cacheSize int
	cache     *lru.Cache[string, *Document]
	group     singleflight.Group

	// Options
	validateResponses bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithValidation enables or disables validation of decoded documents.
func WithValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validateResponses = enabled
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets a custom HTTP request timeout.
// Zero or negative values fall back to the default timeout (15 seconds).
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithRateLimit caps outgoing requests at perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCacheSize sets how many documents are kept in memory.
// Non-positive values fall back to DefaultCacheSize.
func WithCacheSize(size int) ClientOption {
	return func(c *Client) {
		c.cacheSize = size
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given registry URL.
//
// By default, decoded documents are validated. Use WithValidation(false) to
// accept any well-formed JSON.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		logger:            slog.New(slog.DiscardHandler),
		cacheSize:         DefaultCacheSize,
		validateResponses: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize <= 0 {
		c.cacheSize = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes.
	c.cache, _ = lru.New[string, *Document](c.cacheSize)

	return c
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Project fetches the document for the latest release of a project from
// <base>/<name>/json.
func (c *Client) Project(ctx context.Context, name string) (*Document, error) {
	u := fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(name))
	doc, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", name, err)
	}
	return doc, nil
}

// Release fetches the document for one release of a project from
// <base>/<name>/<version>/json.
func (c *Client) Release(ctx context.Context, name, version string) (*Document, error) {
	u := fmt.Sprintf("%s/%s/%s/json", c.baseURL, url.PathEscape(name), url.PathEscape(version))
	doc, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch release %s@%s: %w", name, version, err)
	}
	return doc, nil
}

// LatestVersion returns the version the registry reports as current for a
// project.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	doc, err := c.Project(ctx, name)
	if err != nil {
		return "", err
	}
	return doc.Info.Version, nil
}

// Dependencies returns the bare dependency names declared by one release.
func (c *Client) Dependencies(ctx context.Context, name, version string) ([]string, error) {
	doc, err := c.Release(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return doc.Dependencies(), nil
}

// ClearCache removes all cached documents.
func (c *Client) ClearCache() {
	c.cache.Purge()
}

// get returns the document at u, from cache when possible.
func (c *Client) get(ctx context.Context, u string) (*Document, error) {
	if doc, ok := c.cache.Get(u); ok {
		return doc, nil
	}

	v, err, shared := c.group.Do(u, func() (any, error) {
		if doc, ok := c.cache.Get(u); ok {
			return doc, nil
		}
		doc, err := c.fetchDocument(ctx, u)
		if err != nil {
			return nil, err
		}
		c.cache.Add(u, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("registry request shared", "url", u)
	}
	return v.(*Document), nil
}

// fetchDocument downloads, decodes and optionally validates one document.
func (c *Client) fetchDocument(ctx context.Context, u string) (*Document, error) {
	data, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{URL: u, Err: err}
	}

	if c.validateResponses {
		if err := doc.Validate(); err != nil {
			return nil, &DecodeError{URL: u, Err: err}
		}
	}

	return &doc, nil
}

// fetch performs an HTTP GET and returns the response body.
func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("registry request",
		"url", u,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	return io.ReadAll(resp.Body)
}
