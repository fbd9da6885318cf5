// Package overpass is the HTTP boundary to the Overpass geodata backend. It
// executes query documents built by the trails package and decodes responses
// into result sets. All failures at this boundary surface as
// domain.RemoteExecutionError.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/retry"
	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// DefaultURL is the public Overpass API endpoint.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// maxResponseSize caps response bodies read from the backend (64 MiB).
const maxResponseSize = 64 * 1024 * 1024

// ResponseCache stores raw backend responses keyed by query document. A miss
// is (value="", ok=false, err=nil); cache errors are logged by the client and
// never fail a query.
type ResponseCache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Put(ctx context.Context, query, response string) error
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithLogger sets a structured logger for the Client. If l is nil it is
// ignored and the default slog logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache sets a response cache. If rc is nil it is ignored and every
// query goes to the backend.
func WithCache(rc ResponseCache) Option {
	return func(c *Client) {
		if rc != nil {
			c.cache = rc
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. If hc is nil it is
// ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetry sets the retry policy for backend calls. Invalid configs are
// ignored and the default policy is kept.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		if cfg.Validate() == nil {
			c.retryCfg = cfg
		}
	}
}

// Client executes Overpass queries over HTTP. The client-side timeout must
// exceed the server-side [timeout:N] stamped into query headers so that a
// server timeout arrives as a backend error rather than a hung connection.
type Client struct {
	url        string
	httpClient *http.Client
	retryCfg   retry.Config
	cache      ResponseCache // optional; nil disables caching
	logger     *slog.Logger  // optional; nil uses slog.Default()
}

// NewClient returns a Client for the given endpoint. An empty url falls back
// to DefaultURL; a non-positive clientTimeoutSec falls back to 60 seconds.
func NewClient(url string, clientTimeoutSec int, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	if clientTimeoutSec <= 0 {
		clientTimeoutSec = 60
	}
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: time.Duration(clientTimeoutSec) * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the client's logger, falling back to the default slog logger.
func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Execute posts the query document and decodes the JSON response. Transient
// backend failures are retried per the client's retry policy; the cache, when
// configured, is consulted before the network and updated after a successful
// fetch.
func (c *Client) Execute(ctx context.Context, q trails.QueryDocument) (trails.ResultSet, error) {
	raw, cached, err := c.lookup(ctx, q)
	if err != nil {
		c.log().Warn("response cache lookup failed", "error", err)
	}

	if !cached {
		err = retry.Do(ctx, c.retryCfg, func() error {
			var postErr error
			raw, postErr = c.post(ctx, q)
			return postErr
		})
		if err != nil {
			return trails.ResultSet{}, &domain.RemoteExecutionError{Op: "overpass query", Err: err}
		}
		c.store(ctx, q, raw)
	}

	var rs trails.ResultSet
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return trails.ResultSet{}, &domain.RemoteExecutionError{
			Op:  "overpass query",
			Err: fmt.Errorf("malformed response: %w", err),
		}
	}
	return rs, nil
}

// post sends one query to the backend and returns the raw response body.
func (c *Client) post(ctx context.Context, q trails.QueryDocument) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(q.String()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("User-Agent", "TrailExplorer/1.0 (Overpass Client)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(firstLine(body)))
	}
	return string(body), nil
}

func (c *Client) lookup(ctx context.Context, q trails.QueryDocument) (string, bool, error) {
	if c.cache == nil {
		return "", false, nil
	}
	raw, ok, err := c.cache.Get(ctx, q.String())
	if err != nil {
		return "", false, err
	}
	if ok {
		c.log().Debug("overpass response served from cache")
	}
	return raw, ok, nil
}

func (c *Client) store(ctx context.Context, q trails.QueryDocument, raw string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, q.String(), raw); err != nil {
		c.log().Warn("response cache write failed", "error", err)
	}
}

// firstLine truncates an error body to its first line for diagnostics.
func firstLine(body []byte) string {
	s := string(body)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
