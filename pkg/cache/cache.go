// Package cache stores translation results so repeated requests for the
// same text do not hit a translator backend twice.
//
// Every backend implements [Cache]. The CLI composes them: a [MemoryCache]
// in front of a [FileCache] by default, or in front of a [RedisCache] when
// a shared Redis address is configured. [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys for translation results.
type Keyer interface {
	TranslationKey(backend, source, target, text string) string
}

// DefaultKeyer produces "tr:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TranslationKey hashes every component so arbitrary text yields a safe key.
func (DefaultKeyer) TranslationKey(backend, source, target, text string) string {
	return hashKey("tr", backend, source, target, text)
}

// ScopedKeyer wraps a Keyer with a prefix, for example to keep the keys
// of several workspaces apart in one shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TranslationKey generates a prefixed translation key.
func (k *ScopedKeyer) TranslationKey(backend, source, target, text string) string {
	return k.prefix + k.inner.TranslationKey(backend, source, target, text)
}
