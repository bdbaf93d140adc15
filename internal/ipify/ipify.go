// Package ipify looks up the caller's public IP address.
package ipify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/netchat/netchat/internal/models"
)

// DefaultURL is the public lookup endpoint.
const DefaultURL = "https://api.ipify.org?format=json"

// Client performs a single GET against an ipify-compatible endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a lookup client. An empty url uses DefaultURL.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type response struct {
	IP string `json:"ip"`
}

// PublicIP returns the public IP address of the machine making the request.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.NetworkError{Op: "ip lookup", URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &models.NetworkError{Op: "ip lookup", URL: c.url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return "", &models.NetworkError{Op: "ip lookup", URL: c.url, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if net.ParseIP(body.IP) == nil {
		return "", &models.NetworkError{Op: "ip lookup", URL: c.url, Err: fmt.Errorf("invalid ip %q", body.IP)}
	}
	return body.IP, nil
}

// Static is an IP source that always returns the same address. The HTTP API
// uses it with the request's remote address.
type Static string

// PublicIP returns the fixed address.
func (s Static) PublicIP(context.Context) (string, error) {
	return string(s), nil
}
