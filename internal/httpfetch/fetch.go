// Package httpfetch wraps net/http.Client with the crawl engine's fetch
// policy: configured User-Agent, redirects followed, and a bounded timeout.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout matches the original system's CRAWLER_FETCH_TIMEOUT_SECONDS
// default of 20s.
const defaultTimeout = 20 * time.Second

// maxBodyBytes bounds how much of a page body gets read into memory;
// pages beyond this are truncated rather than rejected.
const maxBodyBytes = 8 << 20 // 8 MiB

// Client issues GET requests against crawl targets.
type Client struct {
	http      *http.Client
	userAgent string
}

// New builds a Client with the given User-Agent and timeout. A zero
// timeout falls back to defaultTimeout.
func New(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Page is the result of a successful GET: the final (post-redirect) URL,
// status code, body, and content-type, left for the caller to validate.
type Page struct {
	URL         string
	StatusCode  int
	Body        []byte
	ContentType string
}

// Get issues a GET request, following redirects (net/http's default
// policy), and reports the response without interpreting its status
// code — callers apply the ">=400 is failure" rule themselves.
func (c *Client) Get(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read body of %s: %w", url, err)
	}

	return Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Close backs the engine's "close the HTTP client" final-phase step:
// net/http.Client needs no explicit close, so this only releases pooled
// keep-alive connections via CloseIdleConnections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
