// Package cli implements the jsonsync command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/buildinfo"
	"github.com/AbelMSG89/json-synchronized/pkg/cache"
	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/integrations/google"
	"github.com/AbelMSG89/json-synchronized/pkg/integrations/microsoft"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "jsonsync"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut io.Writer

	configPath string
	noCache    bool

	// getenv overrides the process environment, for tests.
	getenv func(string) string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "jsonsync edits a set of JSON localization files as one grid",
		Long:         `jsonsync merges the keys of every JSON document under a directory into one tree, shows which languages are missing a value, and applies edits, renames and translations to all files at once.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default <dir>/.jsonsync.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the translation cache")

	root.AddCommand(c.openCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.keyCommand())
	root.AddCommand(c.translateCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config, Cache and Translation Factories
// =============================================================================

// loadConfig resolves configuration for the workspace dir.
func (c *CLI) loadConfig(dir string) (*config.Config, error) {
	loader := config.Loader{Path: c.configPath, Workspace: dir, Getenv: c.getenv}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		c.Logger.Warn(w)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	c.Logger.Debug(cfg.EnvStatus())
	return cfg, nil
}

// newCache builds the translation cache: an LRU in front of Redis when an
// address is configured, else in front of the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	var backing cache.Cache
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Cache.RedisAddr)
		}
		backing = rc
	} else {
		dir, err := cacheDir(cfg)
		if err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		backing = fc
	}
	if cfg.Cache.MemoryEntries <= 0 {
		return backing, nil
	}
	return cache.NewMemoryCache(cfg.Cache.MemoryEntries, backing)
}

// translatorFactories maps each backend to its client constructor. Amazon
// is recognised but has no client.
var translatorFactories = map[config.Backend]translate.Factory{
	config.BackendGoogle:    google.New,
	config.BackendMicrosoft: microsoft.New,
}

// newTranslator builds the translation service. The returned close func
// releases the cache.
func (c *CLI) newTranslator(ctx context.Context, cfg *config.Config) (*translate.Service, func(), error) {
	noop := func() {}
	if !cfg.HasTranslationService() {
		return translate.NewServiceWith(nil, translate.Options{Logger: c.Logger}), noop, nil
	}
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		c.Logger.Warn("translation cache unavailable", "err", err)
		store = cache.NewNullCache()
	}
	svc, err := translate.NewService(cfg.Translation, translatorFactories, translate.Options{
		Cache:  store,
		TTL:    cfg.Cache.TTL,
		Logger: c.Logger,
	})
	if err != nil {
		store.Close()
		return nil, noop, err
	}
	c.Logger.Debug("translation service", "backend", svc.Backend())
	return svc, func() { store.Close() }, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the user cache
// directory (~/.cache/jsonsync on Linux).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
