// Package config resolves jsonsync settings from defaults, a TOML file,
// the process environment and an optional .env file.
//
// Precedence, lowest first:
//
//	defaults → TOML file → process environment → .env file
//
// Environment values always beat stored settings. A [Loader] owns the
// lifecycle: [Loader.Load] resolves once, [Loader.Reload] re-reads the
// files after the user edits them.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
)

// Backend identifies a machine translation service.
type Backend string

const (
	BackendNone      Backend = ""
	BackendMicrosoft Backend = "MicrosoftTranslator"
	BackendGoogle    Backend = "GoogleTranslator"
	BackendAmazon    Backend = "AmazonTranslator"
)

// Backends lists the recognised backends.
var Backends = []Backend{BackendMicrosoft, BackendGoogle, BackendAmazon}

// ParseBackend accepts the full identifiers and the short forms
// "microsoft", "google" and "amazon", case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return BackendNone, nil
	case "microsofttranslator", "microsoft", "azure":
		return BackendMicrosoft, nil
	case "googletranslator", "google":
		return BackendGoogle, nil
	case "amazontranslator", "amazon", "aws":
		return BackendAmazon, nil
	}
	return BackendNone, errors.New(errors.ErrCodeInvalidInput, "unknown translation service %q", s)
}

// Default values.
const (
	DefaultLanguage      = "en"
	DefaultFileName      = ".jsonsync.toml"
	DefaultEnvFile       = ".env"
	DefaultCacheTTL      = 30 * 24 * time.Hour
	DefaultRetryDelay    = 100 * time.Millisecond
	DefaultMaxAttempts   = 5
	DefaultMemoryEntries = 1024
)

// Config is the resolved configuration.
type Config struct {
	Translation     Translation `toml:"translation"`
	DefaultLanguage string      `toml:"default_language"`
	EnvFile         string      `toml:"env_file"`
	Cache           Cache       `toml:"cache"`
	Watch           Watch       `toml:"watch"`

	// File is the TOML file the values were read from, empty when none.
	File string `toml:"-"`
	// LoadedEnv is the .env file that was applied, empty when none.
	LoadedEnv string `toml:"-"`
	// Warnings are non-fatal problems found while loading.
	Warnings []string `toml:"-"`

	customEnv bool
}

// Translation selects a backend and carries per-backend credentials.
// The API* fields are generic fallbacks used by every backend.
type Translation struct {
	Service   string    `toml:"service"`
	APIKey    string    `toml:"api_key"`
	APISecret string    `toml:"api_secret"`
	APIRegion string    `toml:"api_region"`
	Google    Google    `toml:"google"`
	Microsoft Microsoft `toml:"microsoft"`
	Amazon    Amazon    `toml:"amazon"`
}

// Google holds Google Cloud Translation credentials.
type Google struct {
	Key     string `toml:"key"`
	Secret  string `toml:"secret"`
	Project string `toml:"project"`
}

// Microsoft holds Microsoft Translator credentials.
type Microsoft struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
}

// Amazon holds Amazon Translate credentials.
type Amazon struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
}

// Cache configures the translation cache.
type Cache struct {
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	MemoryEntries int           `toml:"memory_entries"`
}

// Watch tunes the file watcher.
type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	RetryDelay  time.Duration `toml:"retry_delay"`
	MaxAttempts int           `toml:"max_attempts"`
}

// Credentials is the resolved credential set for one backend. For Google
// the Region slot is unused and Project carries the project id.
type Credentials struct {
	Key     string
	Secret  string
	Region  string
	Project string
}

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	return &Config{
		DefaultLanguage: DefaultLanguage,
		Cache: Cache{
			TTL:           DefaultCacheTTL,
			MemoryEntries: DefaultMemoryEntries,
		},
		Watch: Watch{
			RetryDelay:  DefaultRetryDelay,
			MaxAttempts: DefaultMaxAttempts,
		},
	}
}

// Backend returns the selected backend, or BackendNone when the service
// is empty or unknown.
func (t Translation) Backend() Backend {
	b, err := ParseBackend(t.Service)
	if err != nil {
		return BackendNone
	}
	return b
}

// Credentials resolves the credentials for b, falling back to the generic
// API key, secret and region.
func (t Translation) Credentials(b Backend) Credentials {
	switch b {
	case BackendMicrosoft:
		return Credentials{
			Key:    firstNonEmpty(t.Microsoft.Key, t.APIKey),
			Secret: firstNonEmpty(t.Microsoft.Secret, t.APISecret),
			Region: firstNonEmpty(t.Microsoft.Region, t.APIRegion),
		}
	case BackendGoogle:
		return Credentials{
			Key:     firstNonEmpty(t.Google.Key, t.APIKey),
			Secret:  firstNonEmpty(t.Google.Secret, t.APISecret),
			Project: firstNonEmpty(t.Google.Project, t.APIRegion),
		}
	case BackendAmazon:
		return Credentials{
			Key:    firstNonEmpty(t.Amazon.Key, t.APIKey),
			Secret: firstNonEmpty(t.Amazon.Secret, t.APISecret),
			Region: firstNonEmpty(t.Amazon.Region, t.APIRegion),
		}
	}
	return Credentials{}
}

// Configured reports whether a backend is selected and has every
// credential it needs.
func (t Translation) Configured() bool {
	b := t.Backend()
	c := t.Credentials(b)
	switch b {
	case BackendMicrosoft:
		return c.Key != "" && c.Region != ""
	case BackendGoogle:
		return c.Key != "" && c.Project != ""
	case BackendAmazon:
		return c.Key != "" && c.Secret != "" && c.Region != ""
	}
	return false
}

// HasTranslationService reports whether translation is usable.
func (c *Config) HasTranslationService() bool {
	return c.Translation.Configured()
}

// Credentials resolves the credentials for backend b.
func (c *Config) Credentials(b Backend) Credentials {
	return c.Translation.Credentials(b)
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	if _, err := ParseBackend(c.Translation.Service); err != nil {
		return err
	}
	if err := errors.ValidateLanguage(c.DefaultLanguage); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "default_language")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Cache.MemoryEntries < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.memory_entries must not be negative")
	}
	if c.Watch.Debounce < 0 || c.Watch.RetryDelay < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "watch delays must not be negative")
	}
	if c.Watch.MaxAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "watch.max_attempts must be at least 1")
	}
	return nil
}

// EnvStatus describes where environment values came from.
func (c *Config) EnvStatus() string {
	switch {
	case c.LoadedEnv == "":
		return "Using system environment variables"
	case c.customEnv:
		return fmt.Sprintf("Custom env loaded: %s", c.LoadedEnv)
	default:
		return fmt.Sprintf("Using default .env file: %s", c.LoadedEnv)
	}
}

// Masked returns a copy with every secret replaced by a short hint, for
// display.
func (c *Config) Masked() *Config {
	m := *c
	t := &m.Translation
	for _, s := range []*string{
		&t.APIKey, &t.APISecret,
		&t.Google.Key, &t.Google.Secret,
		&t.Microsoft.Key, &t.Microsoft.Secret,
		&t.Amazon.Key, &t.Amazon.Secret,
	} {
		*s = mask(*s)
	}
	m.Warnings = append([]string(nil), c.Warnings...)
	return &m
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
