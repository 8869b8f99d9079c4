// Package fetch performs the outbound HTTP work: feed and page retrieval with
// a retry policy, and best-effort resolution of aggregator redirect links.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/126 Safari/537.36"
	acceptHeader = "application/rss+xml, application/xml;q=0.9, */*;q=0.8"

	// maxBodyBytes bounds how much of a response we are willing to read.
	maxBodyBytes = 4 << 20
)

// Client fetches remote documents with bounded retries on transient failures.
type Client struct {
	http    *http.Client
	retries int
	backoff time.Duration
}

// NewClient creates a fetch client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		retries: 2,
		backoff: 500 * time.Millisecond,
	}
}

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Get fetches url and returns the response body as text. Transient failures
// (429/502/503/504 and network errors) are retried with linearly increasing
// backoff; other error statuses are returned immediately. On exhausted
// retries the last error is surfaced.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries+1; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, retryable, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) (body string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are treated as transient.
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", transientStatus(resp.StatusCode),
			fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", true, fmt.Errorf("read body: %w", err)
	}
	return string(data), false, nil
}
