package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"redditstats/pkg/config"
	errs "redditstats/pkg/errors"
	"redditstats/pkg/logger"
	"redditstats/pkg/ratelimit"
)

// Client is a rate-governed client for the Reddit OAuth API. One Client
// serialises its requests: the rate wait, the HTTP transaction and the
// header bookkeeping happen under a single lock.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenSource
	governor   *ratelimit.Governor
	logger     logger.Logger

	mu    sync.Mutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithGovernor replaces the rate governor
func WithGovernor(g *ratelimit.Governor) Option {
	return func(c *Client) { c.governor = g }
}

// WithTokenSource replaces the password-grant authenticator
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient creates a client for the API described by cfg
func NewClient(cfg *config.Config, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	timeout := time.Duration(cfg.Reddit.TimeoutSeconds) * time.Second
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.Reddit.BaseURL, "/"),
		userAgent:  cfg.UserAgent(),
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.governor == nil {
		c.governor = ratelimit.NewGovernor(
			cfg.RateLimit.RequestsPerMinute,
			ratelimit.WithRemainingFloor(cfg.RateLimit.RemainingFloor),
			ratelimit.WithLogger(log),
		)
	}
	if c.tokens == nil {
		c.tokens = NewAuthenticator(cfg, c.httpClient, log)
	}
	return c
}

// Governor returns the rate governor used by the client
func (c *Client) Governor() *ratelimit.Governor {
	return c.governor
}

// Send performs one API request and returns the raw response body.
// raw_json=1 is added to params. A non-2xx status yields an API error
// carrying the endpoint, status and body; nothing is retried.
func (c *Client) Send(ctx context.Context, method, endpoint string, params url.Values, body io.Reader) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	query.Set("raw_json", "1")

	target := c.baseURL + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "bearer "+token)

	if err := c.governor.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method":   method,
		"endpoint": endpoint,
		"params":   query.Encode(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	c.governor.Observe(resp.Header)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewNetworkError(endpoint, err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":    method,
		"endpoint":  endpoint,
		"status":    resp.StatusCode,
		"remaining": resp.Header.Get(ratelimit.HeaderRemaining),
		"duration":  time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.ErrorWithFields("API request failed", map[string]interface{}{
			"endpoint":     endpoint,
			"status":       resp.StatusCode,
			"body_preview": preview(data),
		})
		return nil, errs.NewAPIError(endpoint, resp.StatusCode, string(data))
	}

	return json.RawMessage(data), nil
}

// Get is Send with the GET method and no body
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodGet, endpoint, params, nil)
}

// bearerToken returns the cached token, fetching it on first use. Callers
// hold c.mu.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
