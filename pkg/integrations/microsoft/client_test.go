package microsoft

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

	c := NewClient("secret", "westeurope")
	c.SetHTTPClient(server.Client())
	c.SetBaseURL(server.URL)
	c.SetRetry(2, time.Millisecond)
	return c
}

func TestTranslate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "secret" {
			t.Errorf("key header = %q", got)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Region"); got != "westeurope" {
			t.Errorf("region header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("api-version") != "3.0" || q.Get("from") != "en" {
			t.Errorf("query = %v", q)
		}
		var body []item
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) != 1 {
			t.Errorf("body = %v, %v", body, err)
			return
		}
		to := q.Get("to")
		w.Write([]byte(`[{"translations":[{"text":"` + to + `: ` + body[0].Text + `","to":"` + to + `"}]}]`))
	})

	got, err := c.Translate(context.Background(), translate.Request{
		Text:    "{0} items",
		Source:  "en",
		Targets: []string{"pt", "zh-tw"},
	})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got["pt"] != "pt-br: {0} items" {
		t.Errorf("pt = %q", got["pt"])
	}
	if got["zh-tw"] != "zh-Hant: {0} items" {
		t.Errorf("zh-tw = %q", got["zh-tw"])
	}
}

func TestTranslateRetriesServerError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"translations":[{"text":"Hallo","to":"de"}]}]`))
	})

	got, err := c.Translate(context.Background(), translate.Request{Text: "Hello", Source: "en", Targets: []string{"de"}})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got["de"] != "Hallo" || calls != 2 {
		t.Errorf("result = %v after %d calls", got, calls)
	}
}

func TestTranslateEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	got, err := c.Translate(context.Background(), translate.Request{Text: "Hello", Source: "en", Targets: []string{"de"}})
	if err == nil {
		t.Error("Translate() should fail on an empty response")
	}
	if len(got) != 0 {
		t.Errorf("result = %v, want empty", got)
	}
}

func TestTranslateRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Translate(context.Background(), translate.Request{Text: "Hello", Source: "en", Targets: []string{"de"}})
	if !errors.Is(err, integrations.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"zh":    "zh-Hans",
		"zh-CN": "zh-Hans",
		"zh-hk": "zh-Hant",
		"pt":    "pt-br",
		"pt-PT": "pt-br",
		"sr":    "sr-Latn",
		"fr-CA": "fr",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New(config.Credentials{Key: "k"}); !errors.Is(err, ErrMissingRegion) {
		t.Errorf("New() error = %v, want ErrMissingRegion", err)
	}
	if _, err := New(config.Credentials{Region: "r"}); !errors.Is(err, ErrMissingKey) {
		t.Errorf("New() error = %v, want ErrMissingKey", err)
	}
	if _, err := New(config.Credentials{Key: "k", Region: "r"}); err != nil {
		t.Errorf("New() error = %v", err)
	}
}
