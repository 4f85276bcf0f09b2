package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/nhle/mailfront/internal/model"
)

// Client is a thin HTTP client for the mail REST API. It handles JSON
// marshaling and retries with jittered exponential backoff. Throttled
// responses are retried for every method, honoring Retry-After. Gateway
// errors are retried only for idempotent methods, so a send or create is
// never repeated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	backoff    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how many times a retryable request is repeated and the
// initial backoff between attempts.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		if backoff <= 0 {
			backoff = time.Millisecond
		}
		c.maxRetries = uint64(maxRetries)
		c.backoff = backoff
	}
}

// NewClient creates a new API client. The baseURL should be the root of
// the mail API (e.g., http://localhost:8000/mail).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a Client from the backend section of the
// application config.
func NewClientFromConfig(cfg model.BackendConfig) *Client {
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		}),
		WithRetry(cfg.MaxRetries, time.Second),
	)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do is the core HTTP method that builds the request, retries on
// throttling or gateway errors, and handles JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	result any,
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var b retry.Backoff = retry.NewExponential(c.backoff)
	b = retry.WithJitterPercent(10, b)
	b = retry.WithCappedDuration(maxBackoff, b)
	b = retry.WithMaxRetries(c.maxRetries, b)

	// A Retry-After from the last response replaces the computed delay.
	var retryAfter time.Duration
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := b.Next()
		if stop {
			return 0, true
		}
		if retryAfter > 0 {
			d, retryAfter = retryAfter, 0
		}
		return d, false
	})

	return retry.Do(ctx, next, func(ctx context.Context) error {
		// The body reader is consumed by each attempt.
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// The URL may carry credentials in its query; keep it out of
			// the message.
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				err = urlErr.Err
			}
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(resp.StatusCode, method, path, respBody)
			if retryableStatus(method, resp.StatusCode) {
				retryAfter = retryAfterDuration(resp.Header)
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}

		return nil
	})
}

const maxBackoff = 30 * time.Second

// retryableStatus reports whether a response is worth repeating. A gateway
// error may arrive after the server acted, so POST is not repeated.
func retryableStatus(method string, code int) bool {
	switch code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return idempotent(method)
	}
	return false
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// retryAfterDuration reads a Retry-After header given in seconds, capped
// at maxBackoff. Zero means the header was absent or unusable.
func retryAfterDuration(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxBackoff)
}
