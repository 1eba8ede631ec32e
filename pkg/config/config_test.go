package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func noUserDir() (string, error) { return "", os.ErrNotExist }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	l := &Loader{Workspace: t.TempDir(), Getenv: envMap(nil), UserConfigDir: noUserDir}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.DefaultLanguage)
	}
	if cfg.Watch.MaxAttempts != 5 || cfg.Watch.RetryDelay != 100*time.Millisecond {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.HasTranslationService() {
		t.Error("HasTranslationService() = true with no settings")
	}
	if cfg.File != "" || cfg.LoadedEnv != "" {
		t.Errorf("File=%q LoadedEnv=%q, want empty", cfg.File, cfg.LoadedEnv)
	}
	if got := cfg.EnvStatus(); got != "Using system environment variables" {
		t.Errorf("EnvStatus() = %q", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `
default_language = "es"

[translation]
service = "microsoft"
api_region = "westeurope"

[translation.microsoft]
key = "file-key"

[cache]
ttl = "1h"
memory_entries = 16

[watch]
retry_delay = "50ms"
max_attempts = 3
`)
	env := map[string]string{"AZURE_TRANSLATOR_KEY": "env-key"}

	l := &Loader{Workspace: dir, Getenv: envMap(env), UserConfigDir: noUserDir}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.File != filepath.Join(dir, DefaultFileName) {
		t.Errorf("File = %q", cfg.File)
	}
	if cfg.DefaultLanguage != "es" {
		t.Errorf("DefaultLanguage = %q, want es", cfg.DefaultLanguage)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.MemoryEntries != 16 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Watch.RetryDelay != 50*time.Millisecond || cfg.Watch.MaxAttempts != 3 {
		t.Errorf("Watch = %+v", cfg.Watch)
	}

	creds := cfg.Credentials(BackendMicrosoft)
	if creds.Key != "env-key" {
		t.Errorf("Key = %q, want env value to win", creds.Key)
	}
	if creds.Region != "westeurope" {
		t.Errorf("Region = %q, want generic fallback", creds.Region)
	}
	if !cfg.HasTranslationService() {
		t.Error("HasTranslationService() = false")
	}
}

func TestDotEnvOverridesProcessEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "GOOGLE_API_KEY=dotenv-key\nGOOGLE_CLOUD_PROJECT=proj\n")
	env := map[string]string{
		EnvService:       "GoogleTranslator",
		"GOOGLE_API_KEY": "process-key",
	}

	l := &Loader{Workspace: dir, Getenv: envMap(env), UserConfigDir: noUserDir}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	creds := cfg.Credentials(BackendGoogle)
	if creds.Key != "dotenv-key" || creds.Project != "proj" {
		t.Errorf("creds = %+v", creds)
	}
	if cfg.LoadedEnv != filepath.Join(dir, ".env") {
		t.Errorf("LoadedEnv = %q", cfg.LoadedEnv)
	}
	if got := cfg.EnvStatus(); got != "Using default .env file: "+filepath.Join(dir, ".env") {
		t.Errorf("EnvStatus() = %q", got)
	}
	if !cfg.HasTranslationService() {
		t.Error("HasTranslationService() = false")
	}
}

func TestCustomEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secrets", "translate.env"), "JSON_SYNCHRONIZED_API_KEY=k\n")

	l := &Loader{
		Workspace:     dir,
		Getenv:        envMap(map[string]string{EnvEnvFile: "secrets/translate.env"}),
		UserConfigDir: noUserDir,
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Translation.APIKey != "k" {
		t.Errorf("APIKey = %q", cfg.Translation.APIKey)
	}
	want := "Custom env loaded: " + filepath.Join(dir, "secrets", "translate.env")
	if got := cfg.EnvStatus(); got != want {
		t.Errorf("EnvStatus() = %q, want %q", got, want)
	}
}

func TestMissingCustomEnvFileWarns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `env_file = "missing.env"`)

	l := &Loader{Workspace: dir, Getenv: envMap(nil), UserConfigDir: noUserDir}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", cfg.Warnings)
	}
}

func TestReloadDropsRemovedEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "JSON_SYNCHRONIZED_API_KEY=first\n")

	l := &Loader{Workspace: dir, Getenv: envMap(nil), UserConfigDir: noUserDir}
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Translation.APIKey != "first" {
		t.Fatalf("APIKey = %q", cfg.Translation.APIKey)
	}

	if err := os.Remove(envPath); err != nil {
		t.Fatal(err)
	}
	cfg, err = l.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Translation.APIKey != "" {
		t.Errorf("APIKey = %q after reload, want empty", cfg.Translation.APIKey)
	}
}

func TestUserConfigDirFallback(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "jsonsync", "config.toml"), `default_language = "fr"`)

	l := &Loader{
		Workspace:     t.TempDir(),
		Getenv:        envMap(nil),
		UserConfigDir: func() (string, error) { return home, nil },
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultLanguage != "fr" {
		t.Errorf("DefaultLanguage = %q, want fr", cfg.DefaultLanguage)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "default_language = ")
	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, `[translation]
service = "babelfish"`)
	attempts := filepath.Join(dir, "attempts.toml")
	writeFile(t, attempts, `[watch]
max_attempts = 0`)

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml"), errors.ErrCodeNotFound},
		{"syntax error", bad, errors.ErrCodeInvalidInput},
		{"unknown service", unknown, errors.ErrCodeInvalidInput},
		{"zero attempts", attempts, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loader{Path: tt.path, Workspace: dir, Getenv: envMap(nil), UserConfigDir: noUserDir}
			_, err := l.Load()
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestUnknownKeysWarn(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.toml")
	writeFile(t, p, "colour = \"blue\"\n")

	cfg, err := (&Loader{Path: p, Workspace: dir, Getenv: envMap(nil), UserConfigDir: noUserDir}).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Warnings) != 1 || cfg.Warnings[0] != "unknown config key: colour" {
		t.Errorf("Warnings = %v", cfg.Warnings)
	}
}

func TestHasTranslationService(t *testing.T) {
	tests := []struct {
		name string
		tr   Translation
		want bool
	}{
		{"none", Translation{}, false},
		{"microsoft needs region", Translation{Service: "MicrosoftTranslator", APIKey: "k"}, false},
		{"microsoft", Translation{Service: "MicrosoftTranslator", Microsoft: Microsoft{Key: "k", Region: "r"}}, true},
		{"google needs project", Translation{Service: "GoogleTranslator", Google: Google{Key: "k"}}, false},
		{"google region fallback", Translation{Service: "google", APIKey: "k", APIRegion: "p"}, true},
		{"amazon needs secret", Translation{Service: "AmazonTranslator", APIKey: "k", APIRegion: "r"}, false},
		{"amazon", Translation{Service: "AmazonTranslator", Amazon: Amazon{Key: "k", Secret: "s", Region: "r"}}, true},
		{"unknown", Translation{Service: "babelfish", APIKey: "k", APIRegion: "r"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
		ok   bool
	}{
		{"", BackendNone, true},
		{"MicrosoftTranslator", BackendMicrosoft, true},
		{"azure", BackendMicrosoft, true},
		{" Google ", BackendGoogle, true},
		{"AWS", BackendAmazon, true},
		{"deepl", BackendNone, false},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMasked(t *testing.T) {
	cfg := Defaults()
	cfg.Translation.APIKey = "abcdefgh"
	cfg.Translation.Google.Secret = "xy"

	m := cfg.Masked()
	if m.Translation.APIKey != "****efgh" {
		t.Errorf("APIKey = %q", m.Translation.APIKey)
	}
	if m.Translation.Google.Secret != "****" {
		t.Errorf("Secret = %q", m.Translation.Google.Secret)
	}
	if cfg.Translation.APIKey != "abcdefgh" {
		t.Error("Masked() modified the original")
	}
}

func TestEnvFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.local"), "")
	writeFile(t, filepath.Join(dir, ".env"), "")
	writeFile(t, filepath.Join(dir, "en.json"), "{}")

	got, err := EnvFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != ".env" || got[1] != ".env.local" {
		t.Errorf("EnvFiles() = %v", got)
	}
}
