package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBody caps how much of an upstream response we read (5MB)
const maxBody = 5 * 1024 * 1024

// StatusError carries the status and a body snippet of a non-2xx response.
// Adapters inspect the code to detect rate limiting.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// rateLimited reports whether err is a quota signal from upstream
func rateLimited(err error) bool {
	se, ok := err.(*StatusError)
	return ok && (se.StatusCode == http.StatusForbidden || se.StatusCode == http.StatusTooManyRequests)
}

type client struct {
	http      *http.Client
	userAgent string
}

func (c *client) getJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, header, out)
}

func (c *client) postJSON(ctx context.Context, rawURL string, header http.Header, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, header, out)
}

func (c *client) do(req *http.Request, header http.Header, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       snippet(body, 300),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse json: %w (body: %s)", err, snippet(body, 300))
	}
	return nil
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
