// Package http provides the timeout-bound client shared by collaborator
// calls (renderer, enhancement service).
package http

import (
	"net/http"
	"time"
)

// Client wraps http.Client with a hard per-request timeout.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
