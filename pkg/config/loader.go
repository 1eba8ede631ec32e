package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
)

// Environment variable names. Where a field lists several names the
// first non-empty one wins.
const (
	EnvService         = "JSON_SYNCHRONIZED_TRANSLATION_SERVICE"
	EnvAPIKey          = "JSON_SYNCHRONIZED_API_KEY"
	EnvAPISecret       = "JSON_SYNCHRONIZED_API_SECRET"
	EnvAPIRegion       = "JSON_SYNCHRONIZED_API_REGION"
	EnvDefaultLanguage = "JSON_SYNCHRONIZED_DEFAULT_LANGUAGE"
	EnvRedisAddr       = "JSON_SYNCHRONIZED_REDIS_ADDR"
	EnvEnvFile         = "JSON_SYNCHRONIZED_ENV_FILE"
)

type envBinding struct {
	names []string
	field func(*Config) *string
}

var envBindings = []envBinding{
	{[]string{EnvService}, func(c *Config) *string { return &c.Translation.Service }},
	{[]string{EnvAPIKey}, func(c *Config) *string { return &c.Translation.APIKey }},
	{[]string{EnvAPISecret}, func(c *Config) *string { return &c.Translation.APISecret }},
	{[]string{EnvAPIRegion}, func(c *Config) *string { return &c.Translation.APIRegion }},

	{[]string{"GOOGLE_API_KEY", "JSON_SYNCHRONIZED_GOOGLE_KEY"}, func(c *Config) *string { return &c.Translation.Google.Key }},
	{[]string{"JSON_SYNCHRONIZED_GOOGLE_SECRET"}, func(c *Config) *string { return &c.Translation.Google.Secret }},
	{[]string{"GOOGLE_CLOUD_PROJECT", "JSON_SYNCHRONIZED_GOOGLE_PROJECT"}, func(c *Config) *string { return &c.Translation.Google.Project }},

	{[]string{"AZURE_TRANSLATOR_KEY", "JSON_SYNCHRONIZED_MICROSOFT_KEY"}, func(c *Config) *string { return &c.Translation.Microsoft.Key }},
	{[]string{"JSON_SYNCHRONIZED_MICROSOFT_SECRET"}, func(c *Config) *string { return &c.Translation.Microsoft.Secret }},
	{[]string{"AZURE_TRANSLATOR_REGION", "JSON_SYNCHRONIZED_MICROSOFT_REGION"}, func(c *Config) *string { return &c.Translation.Microsoft.Region }},

	{[]string{"AWS_ACCESS_KEY_ID", "JSON_SYNCHRONIZED_AMAZON_KEY"}, func(c *Config) *string { return &c.Translation.Amazon.Key }},
	{[]string{"AWS_SECRET_ACCESS_KEY", "JSON_SYNCHRONIZED_AMAZON_SECRET"}, func(c *Config) *string { return &c.Translation.Amazon.Secret }},
	{[]string{"AWS_DEFAULT_REGION", "JSON_SYNCHRONIZED_AMAZON_REGION"}, func(c *Config) *string { return &c.Translation.Amazon.Region }},

	{[]string{EnvDefaultLanguage}, func(c *Config) *string { return &c.DefaultLanguage }},
	{[]string{EnvRedisAddr}, func(c *Config) *string { return &c.Cache.RedisAddr }},
}

// Loader resolves a [Config]. The zero value reads the working directory
// and the process environment.
type Loader struct {
	// Path is an explicit config file. When set it must exist.
	Path string

	// Workspace is the directory being edited. Relative .env paths and the
	// per-workspace config file are resolved against it.
	Workspace string

	// Getenv reads the process environment. Defaults to os.Getenv.
	Getenv func(string) string

	// UserConfigDir overrides os.UserConfigDir, for tests.
	UserConfigDir func() (string, error)
}

// Load resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	file, err := l.configFile()
	if err != nil {
		return nil, err
	}
	if file != "" {
		md, err := toml.DecodeFile(file, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", file)
		}
		cfg.File = file
		for _, key := range md.Undecoded() {
			cfg.Warnings = append(cfg.Warnings, "unknown config key: "+key.String())
		}
	}

	getenv := l.getenv()
	if v := getenv(EnvEnvFile); v != "" {
		cfg.EnvFile = v
	}
	dotenv, err := l.readEnvFile(cfg)
	if err != nil {
		return nil, err
	}
	lookup := func(name string) string {
		if v := strings.TrimSpace(dotenv[name]); v != "" {
			return v
		}
		return strings.TrimSpace(getenv(name))
	}

	for _, b := range envBindings {
		for _, name := range b.names {
			if v := lookup(name); v != "" {
				*b.field(cfg) = v
				break
			}
		}
	}
	if v := lookup("JSON_SYNCHRONIZED_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, "ignoring JSON_SYNCHRONIZED_CACHE_TTL: "+err.Error())
		} else {
			cfg.Cache.TTL = d
		}
	}
	if v := lookup("JSON_SYNCHRONIZED_WATCH_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, "ignoring JSON_SYNCHRONIZED_WATCH_ATTEMPTS: "+err.Error())
		} else {
			cfg.Watch.MaxAttempts = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reload re-reads every source. Values from a previous .env file do not
// leak into the result because the process environment is never modified.
func (l *Loader) Reload() (*Config, error) {
	return l.Load()
}

func (l *Loader) getenv() func(string) string {
	if l.Getenv != nil {
		return l.Getenv
	}
	return os.Getenv
}

func (l *Loader) configFile() (string, error) {
	if l.Path != "" {
		if _, err := os.Stat(l.Path); err != nil {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", l.Path)
		}
		return l.Path, nil
	}
	candidates := []string{filepath.Join(l.workspace(), DefaultFileName)}
	userDir := l.UserConfigDir
	if userDir == nil {
		userDir = os.UserConfigDir
	}
	if dir, err := userDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "jsonsync", "config.toml"))
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

func (l *Loader) workspace() string {
	if l.Workspace != "" {
		return l.Workspace
	}
	return "."
}

// readEnvFile reads the configured or default .env file. A missing default
// file is silent; a missing custom file is a warning.
func (l *Loader) readEnvFile(cfg *Config) (map[string]string, error) {
	custom := strings.TrimSpace(cfg.EnvFile) != ""
	p := DefaultEnvFile
	if custom {
		p = strings.TrimSpace(cfg.EnvFile)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.workspace(), p)
	}

	if _, err := os.Stat(p); err != nil {
		if custom {
			cfg.Warnings = append(cfg.Warnings, "Environment file not found: "+p)
		}
		return nil, nil
	}
	values, err := godotenv.Read(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Error loading environment file")
	}
	cfg.LoadedEnv = p
	cfg.customEnv = custom
	return values, nil
}

// EnvFiles lists the .env* files directly inside dir, sorted.
func EnvFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, ".env*"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
			out = append(out, filepath.Base(m))
		}
	}
	sort.Strings(out)
	return out, nil
}
