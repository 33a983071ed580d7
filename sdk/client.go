// Package sdk is a thin Go client for the H2O REST API.
// It formats requests, decodes JSON responses into proxy objects (frames,
// models, jobs) and leaves all computation to the server.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultURL is where a locally started H2O listens.
const DefaultURL = "http://localhost:54321"

const (
	// connectTimeout is the maximum time to wait for a connection.
	connectTimeout = 3 * time.Second
	// requestMaxRetryTime is the maximum time to retry a request on network errors.
	requestMaxRetryTime = 10 * time.Second
	// jobMaxWait is the maximum time to wait for a server-side job.
	jobMaxWait = 30 * time.Minute
)

// Client is an HTTP client for the H2O REST API.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	username        string
	password        string
	newRetryBackoff func() backoff.BackOff
	newJobBackoff   func() backoff.BackOff
}

// NewClient creates a client for the server at rawURL. Requests are retried
// with exponential backoff on network errors only.
func NewClient(rawURL string, opts ...ClientOption) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = DefaultURL
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse h2o URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("parse h2o URL: unsupported scheme %q", baseURL.Scheme)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/")

	c := &Client{
		baseURL: baseURL,
		newRetryBackoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(100*time.Millisecond),
				backoff.WithMaxInterval(1*time.Second),
				backoff.WithMaxElapsedTime(requestMaxRetryTime),
			)
		},
		newJobBackoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(100*time.Millisecond),
				backoff.WithMaxInterval(2*time.Second),
				backoff.WithMaxElapsedTime(jobMaxWait),
			)
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	// Build the default HTTP client if WithHTTPClient was not used.
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &retryRoundTripper{
				base: &http.Transport{
					Proxy:               http.ProxyFromEnvironment,
					DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
					TLSHandshakeTimeout: connectTimeout,
					MaxIdleConns:        10,
					IdleConnTimeout:     90 * time.Second,
				},
				newBackoff: c.newRetryBackoff,
			},
		}
	}

	return c, nil
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client, used as-is.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBasicAuth sends HTTP basic credentials with every request.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithJobBackoff sets the polling policy used while waiting for jobs.
func WithJobBackoff(newBackoff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newJobBackoff = newBackoff
	}
}

// WithRetryBackoff sets the policy for retrying requests on network errors.
// Ignored if WithHTTPClient is also set.
func WithRetryBackoff(newBackoff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newRetryBackoff = newBackoff
	}
}

// URL returns the server base URL.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// API sends a request to endpoint, written as "METHOD /path" (for example
// "GET /3/Cloud"), and decodes the JSON response into out when out is not nil.
// Params go in the query string for GET and DELETE and in a form body
// otherwise.
func (c *Client) API(ctx context.Context, endpoint string, params Params, out any) error {
	method, path, ok := strings.Cut(strings.TrimSpace(endpoint), " ")
	path = strings.TrimSpace(path)
	if !ok || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("h2o api: endpoint %q must look like \"METHOD /path\"", endpoint)
	}
	method = strings.ToUpper(method)

	u := c.endpointURL(path)
	var body io.Reader
	contentType := ""
	if values := params.Encode(); len(values) > 0 {
		switch method {
		case http.MethodGet, http.MethodDelete:
			q := u.Query()
			for k, vs := range values {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			u.RawQuery = q.Encode()
		default:
			body = strings.NewReader(values.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("h2o api %s: %w", endpoint, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, endpoint, out)
}

// postFile uploads a local file as multipart form data.
func (c *Client) postFile(ctx context.Context, path string, params Params, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	u := c.endpointURL("/3/PostFile")
	u.RawQuery = params.Encode().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, "POST /3/PostFile", out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	slog.Debug("H2O request.", "method", req.Method, "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("h2o api %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("h2o api %s: read response: %w", endpoint, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("h2o api %s: %w", endpoint, decodeServerError(resp.StatusCode, data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("h2o api %s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) endpointURL(path string) *url.URL {
	u := *c.baseURL
	rawPath, rawQuery, _ := strings.Cut(path, "?")
	u.Path = c.baseURL.Path + rawPath
	u.RawQuery = rawQuery
	return &u
}

// retryRoundTripper retries requests on transient network errors.
type retryRoundTripper struct {
	base       http.RoundTripper
	newBackoff func() backoff.BackOff
}

func (rt *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	first := true
	attempt := func() (*http.Response, error) {
		if !first && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			req.Body = body
		}
		first = false

		resp, err := rt.base.RoundTrip(req)
		if err != nil {
			var opErr *net.OpError
			if errors.As(err, &opErr) {
				slog.Debug("Retrying h2o request due to network error.", "error", err)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}
	boff := backoff.WithContext(rt.newBackoff(), req.Context())
	return backoff.RetryWithData(attempt, boff)
}
