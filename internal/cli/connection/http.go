package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/hashguard/internal/infra/buildinfo"
)

// DefaultTimeout is the per-request timeout used when none is given.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// APIError is an error envelope returned by the server.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// envelope mirrors the server's response envelope.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// HTTPClient talks to the server's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// unixScheme selects the server's Unix socket listener, as in
// unix:///run/hashguard/admin.sock.
const unixScheme = "unix://"

// NewHTTPClient creates a client for server. A bare host:port gets an
// http:// scheme and a unix:// address dials the socket at its path. A
// non-positive timeout selects DefaultTimeout.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	if socket, ok := strings.CutPrefix(server, unixScheme); ok {
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
		return &HTTPClient{baseURL: "http://localhost", client: client}
	}

	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{baseURL: baseURL, client: client}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the envelope data into out.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a request and decodes the envelope data into out, which may be
// nil. Error envelopes are returned as *APIError.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "hashguard-cli/"+buildinfo.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return ParseResponse(resp, out)
}

// ParseResponse closes resp.Body after decoding the envelope data into
// target.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
			apiErr.RequestID = env.RequestID
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}
	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}
