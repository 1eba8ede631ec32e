package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopStoreHooks{}
	s.OnLoad(ctx, 3, 1, time.Millisecond)
	s.OnWrite(ctx, "en", 120, time.Millisecond, nil)

	w := NoopWatchHooks{}
	w.OnEvent("/tmp/en.json", "WRITE")
	w.OnRetry("/tmp/en.json", 2, errors.New("unexpected end of JSON input"))
	w.OnGiveUp("/tmp/en.json", 5, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "memory")
	c.OnCacheMiss(ctx, "file")
	c.OnCacheSet(ctx, "redis", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.cognitive.microsofttranslator.com", "/translate")
	h.OnResponse(ctx, "POST", "api.cognitive.microsofttranslator.com", "/translate", 200, time.Second)
	h.OnError(ctx, "POST", "translation.googleapis.com", "/language/translate/v2", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Watch().(NoopWatchHooks); !ok {
		t.Error("Watch() should return NoopWatchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customWatch := &testWatchHooks{}
	SetWatchHooks(customWatch)
	if Watch() != customWatch {
		t.Error("SetWatchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Watch().(NoopWatchHooks); !ok {
		t.Error("Reset() should restore NoopWatchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}
}

type testStoreHooks struct{ NoopStoreHooks }
type testWatchHooks struct{ NoopWatchHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
