package hubsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Response is the outcome of a single resource request. The client does
// not interpret resource responses: any status the hub returns, including
// 4xx and 5xx, is handed back here rather than converted to an error.
type Response struct {
	// StatusCode is the HTTP status returned by the hub.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the full response body.
	Body []byte
}

// Get issues a rate-limited, authenticated GET for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a rate-limited, authenticated POST for path with body as
// the JSON payload. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put issues a rate-limited, authenticated PUT for path with body as the
// JSON payload. A nil body sends no payload.
func (c *Client) Put(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete issues a rate-limited, authenticated DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do runs the full request pipeline: charge a rate-limit slot, resolve a
// valid token (which may charge a second slot if the cache is cold), then
// perform the request. Transport failures and rate-limit interruption are
// errors; HTTP-level failures from the hub are not.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	if err := c.takeSlot(ctx); err != nil {
		return nil, err
	}

	token, err := c.GetAuthToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: build %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hubsdk: read %s %s response: %w", method, path, err)
	}

	c.debugf("request complete",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(data),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
