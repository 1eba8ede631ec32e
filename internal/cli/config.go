package cli

import (
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var asTOML bool
	cmd := &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the resolved configuration",
		Long: `Print the configuration that applies to a directory, after the config
file, the process environment and the .env file were merged. Secrets are
masked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(dirArg(args))
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(dir)
			if err != nil {
				return err
			}
			masked := cfg.Masked()
			if asTOML {
				return toml.NewEncoder(stdout).Encode(masked)
			}
			printConfig(masked)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML")
	return cmd
}

func printConfig(cfg *config.Config) {
	backend := string(cfg.Translation.Backend())
	if backend == "" {
		backend = "none"
	}
	status := StyleWarning.Render("not configured")
	if cfg.HasTranslationService() {
		status = StyleSuccess.Render("ready")
	}
	creds := cfg.Credentials(cfg.Translation.Backend())

	printKeyValue("Config file", orNone(cfg.File))
	printKeyValue("Environment", cfg.EnvStatus())
	printKeyValue("Default language", cfg.DefaultLanguage)
	printKeyValue("Translation", backend+" ("+status+")")
	if creds.Key != "" {
		printKeyValue("  key", creds.Key)
	}
	if creds.Region != "" {
		printKeyValue("  region", creds.Region)
	}
	if creds.Project != "" {
		printKeyValue("  project", creds.Project)
	}
	if cfg.Cache.RedisAddr != "" {
		printKeyValue("Cache", "redis "+cfg.Cache.RedisAddr)
	} else {
		dir, err := cacheDir(cfg)
		if err != nil {
			dir = "disabled"
		}
		printKeyValue("Cache", dir)
	}
	printKeyValue("Cache TTL", cfg.Cache.TTL.String())
	printKeyValue("Memory entries", strconv.Itoa(cfg.Cache.MemoryEntries))
	printKeyValue("Watch retries", strconv.Itoa(cfg.Watch.MaxAttempts)+" × "+cfg.Watch.RetryDelay.String())
	for _, w := range cfg.Warnings {
		printWarning("%s", w)
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
