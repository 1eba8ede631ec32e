package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AbelMSG89/json-synchronized/pkg/httputil"
)

func testClient(server *httptest.Server, headers map[string]string) *Client {
	c := NewClient(headers)
	c.SetHTTPClient(server.Client())
	c.SetRetry(3, time.Millisecond)
	return c
}

func TestNewClient(t *testing.T) {
	client := NewClient(map[string]string{"Authorization": "Bearer token"})

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.attempts != defaultAttempts {
		t.Errorf("attempts = %d, want %d", client.attempts, defaultAttempts)
	}
}

func TestClientPostJSON(t *testing.T) {
	type request struct {
		Text string `json:"text"`
	}
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "jsonsync/") {
			t.Errorf("User-Agent = %q", ua)
		}
		var in request
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(response{Message: "echo " + in.Text})
	}))
	defer server.Close()

	var resp response
	err := testClient(server, nil).PostJSON(context.Background(), server.URL, nil, request{Text: "hi"}, &resp)
	if err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if resp.Message != "echo hi" {
		t.Errorf("message = %q, want %q", resp.Message, "echo hi")
	}
}

func TestClientHeadersOverrideDefaults(t *testing.T) {
	var got, def string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Override")
		def = r.Header.Get("X-Default")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server, map[string]string{"X-Override": "default", "X-Default": "kept"})
	var resp map[string]any
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, struct{}{}, &resp)
	if err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if got != "overridden" {
		t.Errorf("X-Override = %q, want %q", got, "overridden")
	}
	if def != "kept" {
		t.Errorf("X-Default = %q, want %q", def, "kept")
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
		calls  int32
	}{
		{"not found", http.StatusNotFound, ErrNotFound, 1},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, 1},
		{"forbidden", http.StatusForbidden, ErrUnauthorized, 1},
		{"bad request", http.StatusBadRequest, ErrNetwork, 1},
		{"server error retried", http.StatusInternalServerError, ErrNetwork, 3},
		{"rate limited retried", http.StatusTooManyRequests, ErrRateLimited, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := testClient(server, nil).PostJSON(context.Background(), server.URL, nil, struct{}{}, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got := calls.Load(); got != tt.calls {
				t.Errorf("calls = %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestClientRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var resp struct {
		OK bool `json:"ok"`
	}
	if err := testClient(server, nil).PostJSON(context.Background(), server.URL, nil, struct{}{}, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if !resp.OK || calls.Load() != 2 {
		t.Errorf("ok=%v calls=%d, want true and 2", resp.OK, calls.Load())
	}
}

func TestCheckStatusRetryAfter(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "7")

	err := checkStatus(resp, nil)
	var re *httputil.RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("error = %T, want *RetryableError", err)
	}
	if re.After != 7*time.Second {
		t.Errorf("After = %v, want 7s", re.After)
	}
}

func TestCheckStatusDetail(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadRequest}
	err := checkStatus(resp, []byte(`  {"error":"bad language"}  `))
	if err == nil || err.Error() != `network error: status 400: {"error":"bad language"}` {
		t.Errorf("error = %v", err)
	}
}

func TestClientContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(server, nil)
	client.SetRetry(3, time.Hour)
	err := client.PostJSON(ctx, server.URL, nil, struct{}{}, nil)
	if err == nil {
		t.Fatal("PostJSON() should fail with a cancelled context")
	}
}
