package sdk

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
)

func zeroBackoff(retries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retries)
	}
}

func TestNewClientURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty uses default", raw: "", want: DefaultURL},
		{name: "trailing slash trimmed", raw: "http://h2o.internal:54321/", want: "http://h2o.internal:54321"},
		{name: "path prefix kept", raw: "https://proxy/h2o/", want: "https://proxy/h2o"},
		{name: "unsupported scheme", raw: "ftp://h2o", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewClient(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewClient(%q) error = nil, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient(%q) error = %v", tc.raw, err)
			}
			if got := c.URL(); got != tc.want {
				t.Fatalf("URL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAPIEncodesParams(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if got := r.URL.Query().Get("row_count"); got != "5" {
				t.Errorf("row_count = %q, want %q", got, "5")
			}
		case http.MethodPost:
			if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
				t.Errorf("content type = %q", got)
			}
			if got := r.FormValue("ignored_columns"); got != `["ID","AGE"]` {
				t.Errorf("ignored_columns = %q, want %q", got, `["ID","AGE"]`)
			}
			if got := r.FormValue("balance_classes"); got != "true" {
				t.Errorf("balance_classes = %q, want %q", got, "true")
			}
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "secret" {
			t.Errorf("basic auth = %q %q %v", user, pass, ok)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithBasicAuth("admin", "secret"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.API(context.Background(), "GET /3/Frames/x", Params{"row_count": 5}, &out); err != nil {
		t.Fatalf("API(GET) error = %v", err)
	}
	if !out.OK {
		t.Fatalf("API(GET) did not decode response")
	}
	params := Params{"ignored_columns": []string{"ID", "AGE"}, "balance_classes": true}
	if err := c.API(context.Background(), "POST /3/ModelBuilders/gbm", params, nil); err != nil {
		t.Fatalf("API(POST) error = %v", err)
	}
}

func TestAPIRejectsMalformedEndpoint(t *testing.T) {
	t.Parallel()

	c, err := NewClient("http://localhost:1")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	for _, endpoint := range []string{"/3/Cloud", "GET 3/Cloud", ""} {
		if err := c.API(context.Background(), endpoint, nil, nil); err == nil {
			t.Fatalf("API(%q) error = nil, want error", endpoint)
		}
	}
}

func TestAPIServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		wantNotFound bool
	}{
		{
			name:         "h2o error body",
			status:       http.StatusNotFound,
			body:         `{"http_status":404,"msg":"Object 'x' not found","exception_type":"water.exceptions.H2OKeyNotFoundArgumentException"}`,
			wantMessage:  "Object 'x' not found",
			wantNotFound: true,
		},
		{
			name:        "exception message wins",
			status:      http.StatusInternalServerError,
			body:        `{"msg":"short","exception_msg":"java.lang.NullPointerException"}`,
			wantMessage: "java.lang.NullPointerException",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream down\n",
			wantMessage: "upstream down",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			c, err := NewClient(srv.URL)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			err = c.API(context.Background(), "GET /3/Frames/x", nil, nil)

			var serverErr *ServerError
			if !errors.As(err, &serverErr) {
				t.Fatalf("API() error = %v, want *ServerError", err)
			}
			if serverErr.Status != tc.status {
				t.Fatalf("Status = %d, want %d", serverErr.Status, tc.status)
			}
			if serverErr.Message != tc.wantMessage {
				t.Fatalf("Message = %q, want %q", serverErr.Message, tc.wantMessage)
			}
			if got := errors.Is(err, ErrNotFound); got != tc.wantNotFound {
				t.Fatalf("errors.Is(err, ErrNotFound) = %v, want %v", got, tc.wantNotFound)
			}
		})
	}
}

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	base     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return f.base.RoundTrip(req)
}

func TestRetryRoundTripperRetriesNetworkErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("ast"); got != "(ls)" {
			t.Errorf("body after retry = %q, want %q", got, "(ls)")
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	flaky := &flakyTransport{failures: 2, base: http.DefaultTransport}
	c, err := NewClient(srv.URL, WithHTTPClient(&http.Client{
		Transport: &retryRoundTripper{base: flaky, newBackoff: zeroBackoff(5)},
	}))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := c.API(context.Background(), "POST /99/Rapids", Params{"ast": "(ls)"}, nil); err != nil {
		t.Fatalf("API() error = %v", err)
	}
	if got := flaky.calls.Load(); got != 3 {
		t.Fatalf("round trips = %d, want 3", got)
	}
}

func TestRetryRoundTripperGivesUp(t *testing.T) {
	t.Parallel()

	flaky := &flakyTransport{failures: 100, base: http.DefaultTransport}
	c, err := NewClient("http://h2o.invalid", WithHTTPClient(&http.Client{
		Transport: &retryRoundTripper{base: flaky, newBackoff: zeroBackoff(2)},
	}))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	err = c.API(context.Background(), "GET /3/Cloud", nil, nil)
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("API() error = %v, want *net.OpError", err)
	}
	if got := flaky.calls.Load(); got != 3 {
		t.Fatalf("round trips = %d, want 3", got)
	}
}

func TestPingUnhealthyCloud(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"3.46.0.1","cloud_name":"dev","cloud_size":2,"cloud_healthy":false}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	cloud, err := c.Ping(context.Background())
	if !errors.Is(err, ErrCloudUnhealthy) {
		t.Fatalf("Ping() error = %v, want ErrCloudUnhealthy", err)
	}
	if cloud == nil || cloud.Size != 2 || !strings.HasPrefix(cloud.Version, "3.46") {
		t.Fatalf("Ping() cloud = %+v", cloud)
	}
}
