// internal/transport/client.go
package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Response carries the outcome of one device-facing HTTP call.
// StatusCode <= 0 signals a transport-layer failure, not a protocol error.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Err        error
}

// OK reports whether the call produced a real HTTP status
func (r Response) OK() bool {
	return r.Err == nil && r.StatusCode > 0
}

// Client issues outbound HTTP calls to candidate devices on behalf of the
// discovery and driver layers
type Client interface {
	Get(ctx context.Context, url string) Response
	Post(ctx context.Context, url string, body string) Response
	Delete(ctx context.Context, url string) Response
}

// HTTPClient is the production Client backed by net/http
type HTTPClient struct {
	client      *http.Client
	logger      *zap.Logger
	maxBodySize int64
}

// NewHTTPClient creates a transport client with the given per-request timeout
func NewHTTPClient(timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		logger:      logger.With(zap.String("component", "transport")),
		maxBodySize: 64 * 1024,
	}
}

// Get issues a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) Response {
	return c.do(ctx, http.MethodGet, url, "")
}

// Post issues a POST request with an optional body
func (c *HTTPClient) Post(ctx context.Context, url string, body string) Response {
	return c.do(ctx, http.MethodPost, url, body)
}

// Delete issues a DELETE request
func (c *HTTPClient) Delete(ctx context.Context, url string) Response {
	return c.do(ctx, http.MethodDelete, url, "")
}

func (c *HTTPClient) do(ctx context.Context, method, url, body string) Response {
	start := time.Now()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Response{Err: err, Duration: time.Since(start)}
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Transport call failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return Response{Err: err, Duration: time.Since(start)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return Response{StatusCode: resp.StatusCode, Err: err, Duration: time.Since(start)}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Body:       string(data),
		Duration:   time.Since(start),
	}
}
