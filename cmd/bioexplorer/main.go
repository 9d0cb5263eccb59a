// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bioexplorer CLI: search, study
// detail, chat, export and the local archive over the NASA bioscience
// retrieval backend, plus the HTTP server for the web frontend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/logging"
	"github.com/pdiddy/bioexplorer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials read from .secrets/ at startup.
	loadedSecrets secrets.Set

	// logger is built from the log settings before any command runs.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "bioexplorer",
	Short: "Explore NASA space-biology studies through a retrieval backend",
	Long: `bioexplorer queries a retrieval-augmented generation backend over NASA
space-biology publications. Free-text questions run a semantic search with a
grounded answer; facet-only filters run a structured document search.

Results can be inspected study by study, exported for reference managers and
spreadsheets, or archived in a local SQLite database for offline search.
With --mock every call is answered from an embedded fixture corpus.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./bioexplorer.yaml or ~/.config/bioexplorer/bioexplorer.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of secret files")
	pf.Bool("mock", false, "answer from the embedded fixture corpus instead of the backend")
	pf.String("base-url", "", "retrieval backend base URL")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")

	bindFlag("mock.enabled", "mock")
	bindFlag("http.base_url", "base-url")
	bindFlag("http.timeout", "timeout")
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bioexplorer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bioexplorer"))
		}
	}

	viper.SetEnvPrefix("BIOEXPLORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
