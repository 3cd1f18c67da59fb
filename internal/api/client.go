package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tictacgo/internal/logger"
	"tictacgo/internal/metrics"

	"github.com/google/uuid"
)

const (
	HeaderPlayerID  = "X-Player-Id"
	HeaderRequestID = "X-Request-Id"
)

// IdentitySource yields the stored player id, or "" when none is stored.
type IdentitySource interface {
	PlayerID(ctx context.Context) string
}

// Client talks to the game server over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	identity IdentitySource
	log      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithIdentity(src IdentitySource) Option {
	return func(c *Client) { c.identity = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets a per-request timeout; zero keeps the default (none).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.With("component", "api")
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call; endpoint is the route template used as metric label.
type request struct {
	method   string
	path     string
	endpoint string
	query    url.Values
	body     any
	header   http.Header
}

// do sends the request and returns the raw body of a 2xx response.
// Any other status becomes an *APIError after being logged.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.endpoint, err)
		}
		payload = bytes.NewReader(b)
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.endpoint, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if c.identity != nil {
		if id := c.identity.PlayerID(ctx); id != "" {
			req.Header.Set(HeaderPlayerID, id)
		}
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	log := c.log.With("request_id", reqID, "method", r.method, "path", r.path)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(r.endpoint, "error").Inc()
		log.Error("request failed", "error", err)
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(r.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("read response failed", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("read %s response: %w", r.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Body: body}
		log.Error("API error", "status", resp.StatusCode, "body", string(body))
		return nil, apiErr
	}

	log.Debug("request ok", "status", resp.StatusCode, "took", time.Since(start))
	return body, nil
}
