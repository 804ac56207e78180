package webclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Fetcher retrieves the raw payload behind a URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// NetHTTPClient is a net/http backed Fetcher.
type NetHTTPClient struct {
	client *http.Client
}

// NewNetHTTPClient wraps httpClient. A nil client gets a default one with the given
// timeout (DefaultTimeout when timeout <= 0).
func NewNetHTTPClient(httpClient *http.Client, timeout time.Duration) *NetHTTPClient {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	slog.Debug("created nethttp webclient", "timeout", httpClient.Timeout.String())

	return &NetHTTPClient{client: httpClient}
}

// Get performs a GET request and returns the full response body.
func (c *NetHTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("http request failed", "url", url, "error", err)
		return nil, fmt.Errorf("http get %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http get %s: %w: %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("failed to read response body", "url", url, "error", err)
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
