package translate

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbelMSG89/json-synchronized/pkg/cache"
	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/errors"
)

// Factory builds a backend from resolved credentials.
type Factory func(creds config.Credentials) (Translator, error)

// Options configures a [Service].
type Options struct {
	// Cache stores translations. Nil disables caching.
	Cache cache.Cache
	// Keyer derives cache keys. Defaults to cache.NewDefaultKeyer().
	Keyer cache.Keyer
	// TTL is the cache entry lifetime. Zero means no expiry.
	TTL time.Duration
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Service is the translation entry point used by the panel host and the
// CLI. The zero value is unconfigured and returns empty results.
type Service struct {
	backend Translator
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	logger  *log.Logger
}

// NewService selects the backend named in cfg. An unconfigured cfg yields
// a Service whose Translate returns empty results. A recognised backend
// without a factory reports UNSUPPORTED on use.
func NewService(cfg config.Translation, factories map[config.Backend]Factory, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	s := &Service{cache: c, keyer: keyer, ttl: opts.TTL, logger: logger}

	if !cfg.Configured() {
		return s, nil
	}
	b := cfg.Backend()
	factory, ok := factories[b]
	if !ok {
		s.backend = unsupported(b)
		return s, nil
	}
	backend, err := factory(cfg.Credentials(b))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTranslation, err, "init %s", b)
	}
	s.backend = backend
	return s, nil
}

// NewServiceWith wraps an explicit backend. Tests and embedders use it.
func NewServiceWith(backend Translator, opts Options) *Service {
	s, _ := NewService(config.Translation{}, nil, opts)
	s.backend = backend
	return s
}

// Available reports whether a backend is configured.
func (s *Service) Available() bool { return s != nil && s.backend != nil }

// Backend returns the backend name, or "" when unconfigured.
func (s *Service) Backend() string {
	if !s.Available() {
		return ""
	}
	return s.backend.Name()
}

// Translate translates req.Text into every target except the source.
// Cached translations are served without calling the backend. The result
// may be partial; failures are reported as TRANSLATION_FAILED (or the
// backend's own coded error) next to whatever succeeded.
func (s *Service) Translate(ctx context.Context, req Request) (Result, error) {
	out := Result{}
	if !s.Available() || strings.TrimSpace(req.Text) == "" {
		return out, nil
	}
	targets := stripSource(req.Source, req.Targets)
	if len(targets) == 0 {
		return out, nil
	}

	name := s.backend.Name()
	var misses []string
	for _, t := range targets {
		key := s.keyer.TranslationKey(name, req.Source, t, req.Text)
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Debug("translation cache read failed", "key", key, "error", err)
		}
		if ok {
			out[t] = string(data)
			continue
		}
		misses = append(misses, t)
	}
	if len(misses) == 0 {
		return out, nil
	}

	start := time.Now()
	got, err := s.backend.Translate(ctx, Request{Text: req.Text, Source: req.Source, Targets: misses})
	s.logger.Debug("translated", "backend", name, "targets", len(misses), "ok", len(got), "duration", time.Since(start))

	for t, v := range got {
		out[t] = v
		key := s.keyer.TranslationKey(name, req.Source, t, req.Text)
		if cerr := s.cache.Set(ctx, key, []byte(v), s.ttl); cerr != nil {
			s.logger.Debug("translation cache write failed", "key", key, "error", cerr)
		}
	}
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeTranslation, err, "translation failed")
		}
		return out, err
	}
	return out, nil
}

// stripSource removes the source language and duplicates from targets.
func stripSource(source string, targets []string) []string {
	seen := map[string]bool{strings.ToLower(source): true}
	var out []string
	for _, t := range targets {
		k := strings.ToLower(strings.TrimSpace(t))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

type unsupported config.Backend

func (u unsupported) Name() string { return string(u) }

func (u unsupported) Translate(context.Context, Request) (Result, error) {
	return Result{}, errors.New(errors.ErrCodeUnsupported, "%s is not supported", string(u))
}
