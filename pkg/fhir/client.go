package fhir

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is a thin read-only client for a FHIR server.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// Base returns the server base URL without a trailing slash.
func (c *Client) Base() string {
	return c.base
}

// Get fetches url and returns the response body verbatim. A relative url is
// joined with the client base; the agent is instructed to use absolute URLs,
// so both forms show up in practice. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = c.base + "/" + strings.TrimLeft(url, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid GET url: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read GET response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s returned status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// Verify reports whether the FHIR server is reachable by probing its
// metadata endpoint. Failures are logged, not returned; callers only
// need the predicate.
func (c *Client) Verify(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/metadata", nil)
	if err != nil {
		slog.Warn("FHIR health check failed", "base", c.base, "error", err)
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("FHIR health check failed", "base", c.base, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("FHIR health check returned non-2xx", "base", c.base, "status", resp.StatusCode)
		return false
	}
	return true
}
