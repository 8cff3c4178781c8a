package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tradequest/rewards-backend/pkg/logging"
	"github.com/tradequest/rewards-backend/pkg/retry"
)

// HTTPRetryConfig holds configuration for HTTP retry operations.
type HTTPRetryConfig struct {
	RetryConfig     *retry.RetryConfig
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	MaxResponseSize int64 // cap on response bytes read into error messages
}

func DefaultHTTPRetryConfig() *HTTPRetryConfig {
	return &HTTPRetryConfig{
		RetryConfig:     retry.DefaultRetryConfig(),
		Timeout:         10 * time.Second,
		IdleConnTimeout: 30 * time.Second,
		MaxResponseSize: 4096,
	}
}

func (c *HTTPRetryConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.IdleConnTimeout <= 0 {
		return fmt.Errorf("idleConnTimeout must be positive")
	}
	if c.MaxResponseSize < 0 {
		return fmt.Errorf("maxResponseSize must be >= 0")
	}
	return nil
}

// HTTPError carries the status code of a failed request so retry predicates
// can distinguish 5xx from 4xx.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPClient wraps http.Client with retry logic. 5xx and 429 responses are
// retried; other statuses are returned to the caller as-is.
type HTTPClient struct {
	client *http.Client
	config *HTTPRetryConfig
	logger logging.Logger
}

func NewHTTPClient(config *HTTPRetryConfig, logger logging.Logger) (*HTTPClient, error) {
	if config == nil {
		config = DefaultHTTPRetryConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP retry config: %w", err)
	}

	if config.RetryConfig.ShouldRetry == nil {
		config.RetryConfig.ShouldRetry = func(err error, _ int) bool {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.StatusCode >= 500 || httpErr.StatusCode == 429
			}
			// network errors are retryable
			return true
		}
	}

	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			IdleConnTimeout: config.IdleConnTimeout,
			DialContext: (&net.Dialer{
				Timeout:   config.Timeout / 2,
				KeepAlive: config.IdleConnTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   config.Timeout / 2,
			ResponseHeaderTimeout: config.Timeout / 2,
		},
	}

	return &HTTPClient{client: client, config: config, logger: logger}, nil
}

// DoWithRetry performs the request, retrying per the configured predicate.
// The caller closes the response body.
func (c *HTTPClient) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.GetBody == nil && req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading request body for retry: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			c.logger.Warnf("Failed to close request body: %v", err)
		}
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	operation := func() (*http.Response, error) {
		attempt := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to get request body: %w", err)
			}
			attempt.Body = body
		}

		resp, err := c.client.Do(attempt)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 || resp.StatusCode == 429 {
			bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
			if err := resp.Body.Close(); err != nil {
				c.logger.Warnf("Failed to close response body: %v", err)
			}
			return nil, &HTTPError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("retryable status, body: %q", truncate(string(bodyBytes), 200)),
			}
		}
		return resp, nil
	}

	return retry.Retry(ctx, operation, c.config.RetryConfig, c.logger)
}

// Get performs a GET request with retry logic.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	return c.DoWithRetry(ctx, req)
}

// Post performs a POST request with retry logic.
func (c *HTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.DoWithRetry(ctx, req)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Close closes idle connections.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
