package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/integrations"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c := NewClient("secret", "proj")
	c.SetHTTPClient(server.Client())
	c.SetBaseURL(server.URL)
	c.SetRetry(1, time.Millisecond)
	return c
}

func TestTranslate(t *testing.T) {
	var targets []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("key = %q", got)
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.Format != "text" || req.Source != "en" {
			t.Errorf("request = %+v", req)
		}
		if req.Q != "Hello __PLACEHOLDER_0__" {
			t.Errorf("q = %q, want protected text", req.Q)
		}
		targets = append(targets, req.Target)
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"[` + req.Target + `] __PLACEHOLDER_0__"}]}}`))
	})

	got, err := c.Translate(context.Background(), translate.Request{
		Text:    "Hello {name}",
		Source:  "en",
		Targets: []string{"es", "zh", "en"},
	})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	want := translate.Result{"es": "[es] {name}", "zh": "[zh-CN] {name}"}
	if len(got) != len(want) {
		t.Fatalf("Translate() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("result[%q] = %q, want %q", k, got[k], v)
		}
	}
	if len(targets) != 2 {
		t.Errorf("calls = %v, want source skipped", targets)
	}
}

func TestTranslatePartialFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req request
		json.NewDecoder(r.Body).Decode(&req)
		if req.Target == "fr" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"hola"}]}}`))
	})

	got, err := c.Translate(context.Background(), translate.Request{Text: "hi", Source: "en", Targets: []string{"es", "fr"}})
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if got["es"] != "hola" || len(got) != 1 {
		t.Errorf("result = %v, want partial es", got)
	}
}

func TestTranslateUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Translate(context.Background(), translate.Request{Text: "hi", Source: "en", Targets: []string{"de"}})
	if !errors.Is(err, integrations.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestTranslateEmptyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend called for empty text")
	})
	got, err := c.Translate(context.Background(), translate.Request{Text: "  ", Source: "en", Targets: []string{"de"}})
	if err != nil || len(got) != 0 {
		t.Errorf("Translate() = %v, %v", got, err)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"zh":    "zh-CN",
		"zh-TW": "zh-TW",
		"zh_HK": "zh-TW",
		"es-MX": "es",
		"de":    "de",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New(config.Credentials{}); !errors.Is(err, ErrMissingKey) {
		t.Errorf("New() error = %v, want ErrMissingKey", err)
	}
	tr, err := New(config.Credentials{Key: "k", Project: "p"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if tr.Name() != Name {
		t.Errorf("Name() = %q", tr.Name())
	}
}
