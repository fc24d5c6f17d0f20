package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
)

const (
	// DefaultPath is the params endpoint on every painter
	DefaultPath = "/api"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed reads
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// maxBodySize caps how much of a response is read
	maxBodySize = 1 << 20
)

// Client talks to one painter's params endpoint
type Client struct {
	// Endpoint is the full URL of the params resource (e.g., "http://192.168.1.20:8080/api")
	Endpoint string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed reads
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a client for a painter at ip:port
func NewClient(ip string, port int) *Client {
	return newClient(fmt.Sprintf("http://%s:%d%s", ip, port, DefaultPath))
}

// NewClientWithURL creates a client from a user supplied endpoint.
// See ParseEndpoint for the accepted forms.
func NewClientWithURL(raw string) (*Client, error) {
	endpoint, err := ParseEndpoint(raw)
	if err != nil {
		return nil, err
	}
	return newClient(endpoint), nil
}

func newClient(endpoint string) *Client {
	return &Client{
		Endpoint:              endpoint,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// ParseEndpoint normalises an endpoint. "host:port", "http://host:port"
// and "http://host:port/custom" are accepted; a missing scheme becomes
// http and an empty path becomes /api.
func ParseEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid endpoint %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultPath
	}
	return u.String(), nil
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior for reads
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping performs a simple health check on the device
// Returns nil if the endpoint answers a GET with 200
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
	return nil
}

// GetParams reads the painter params, retrying retryable failures.
func (c *Client) GetParams(ctx context.Context) (painter.Params, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return painter.Params{}, NewNetworkError("read canceled", c.Endpoint, ctx.Err())
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		start := time.Now()
		params, err := c.getParamsAttempt(ctx)
		if err == nil {
			logging.LogParamsRead(c.Endpoint, params.Painter, time.Since(start))
			return params, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return painter.Params{}, err
		}
	}

	return painter.Params{}, lastErr
}

// getParamsAttempt performs a single read
func (c *Client) getParamsAttempt(ctx context.Context) (painter.Params, error) {
	resp, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return painter.Params{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return painter.Params{}, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return painter.Params{}, NewNetworkError("failed to read response body", c.Endpoint, err)
	}

	params, err := painter.Decode(body)
	if err != nil {
		return painter.Params{}, NewParseError("failed to decode params", err)
	}
	return params, nil
}

// PostParams writes the full params object once. Any 2xx status is an
// acknowledgement; the response body is ignored.
func (c *Client) PostParams(ctx context.Context, params painter.Params) error {
	body, err := params.Encode()
	if err != nil {
		return NewParseError("failed to encode params", err)
	}

	resp, err := c.do(ctx, http.MethodPost, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("write failed with status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("failed to create %s request", method), c.Endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("%s request failed", method), c.Endpoint, err)
	}
	return resp, nil
}
