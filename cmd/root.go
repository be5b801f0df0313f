package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/config"
	"github.com/abhisek/quizbot/internal/logging"
	"github.com/abhisek/quizbot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizbot",
	Short: "Ruby quiz poll bot for Telegram",
	Long: `quizbot generates an advanced Ruby/Rails multiple-choice question with an LLM
and posts it as a Telegram quiz poll on a fixed schedule.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZBOT_DB env var)")
	rootCmd.PersistentFlags().Bool("no-db", false, "Do not record posts or LLM events")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagBindings maps persistent flags onto config keys.
var flagBindings = map[string]string{
	"db":         "store.path",
	"no-db":      "store.disabled",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// loadConfig resolves configuration and builds the logger. When needTelegram
// is false the bot token and chat ID may be absent.
func loadConfig(cmd *cobra.Command, needTelegram bool) (*config.Config, *logrus.Logger, error) {
	var opts []config.LoaderOption
	if !needTelegram {
		opts = append(opts, config.WithoutTelegram())
	}
	cfg, err := resolveConfig(cmd, opts...)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// resolveConfig loads the configuration with the persistent flags bound
// over it.
func resolveConfig(cmd *cobra.Command, opts ...config.LoaderOption) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	loader, err := config.NewConfigLoader(configFile, opts...)
	if err != nil {
		return nil, err
	}
	for name, key := range flagBindings {
		if err := loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return loader.Load()
}

// openStore opens the configured database, or returns nil when the store
// is disabled.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.Disabled {
		return nil, nil
	}
	path := cfg.Store.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// inspectStore opens the database that run records to. Credentials are
// not required since nothing is generated or posted.
func inspectStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := resolveConfig(cmd, config.WithoutTelegram(), config.WithoutLLM())
	if err != nil {
		return nil, err
	}
	if cfg.Store.Disabled {
		return nil, errors.New("the store is disabled (--no-db or QUIZBOT_NO_DB)")
	}
	return openStore(cfg)
}
