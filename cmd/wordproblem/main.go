// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wordproblem CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from the log section before any command runs.
var logger = slog.Default()

// rootCmd is the base command for the wordproblem CLI.
var rootCmd = &cobra.Command{
	Use:   "wordproblem",
	Short: "Extract quantities and their context from arithmetic word problems",
	Long: `wordproblem reads word problems annotated with tokens, lemmas, tags and
dependency edges, finds every stated quantity and question target, and
records the type and grammatical context of each one. It also computes
classifier features for candidate change, part-whole and comparison
hypotheses.

Input is CoNLL-U (.conllu) or YAML (.yaml). Results go to stdout, to
per-problem YAML files, or to a SQLite store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logger = newLogger(cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wordproblem.yaml or ~/.config/wordproblem/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store-dir", "", "directory holding wordproblem.db and exports")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wordproblem")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wordproblem"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("WORDPROBLEM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("extraction.debug", d.Extraction.Debug)
	viper.SetDefault("extraction.universal_dependencies", d.Extraction.UniversalDependencies)
	viper.SetDefault("extraction.output_dir", d.Extraction.OutputDir)
	viper.SetDefault("features.lexicon_path", d.Features.LexiconPath)
	viper.SetDefault("features.workers", d.Features.Workers)
	viper.SetDefault("features.extractors", d.Features.Extractors)
	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig reads the merged file, environment and flag settings.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Extraction: types.ExtractionConfig{
			Debug:                 viper.GetBool("extraction.debug"),
			UniversalDependencies: viper.GetBool("extraction.universal_dependencies"),
			OutputDir:             viper.GetString("extraction.output_dir"),
		},
		Features: types.FeatureConfig{
			LexiconPath: viper.GetString("features.lexicon_path"),
			Workers:     viper.GetInt("features.workers"),
			Extractors:  viper.GetStringSlice("features.extractors"),
		},
		Store: types.StoreConfig{
			Dir: viper.GetString("store.dir"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

func newLogger(cfg types.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
