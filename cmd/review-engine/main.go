// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/secrets"
	"github.com/pdiddy/review-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the review-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "review-engine",
	Short: "Pipeline for systematic literature reviews",
	Long: `review-engine manages the paper pipeline of a systematic literature
review: discovery across academic APIs, deduplication, screening,
artifact acquisition, text extraction, and summary synthesis.

Each pipeline stage is a subcommand; the registry tracks every paper's
status so stages can run repeatedly and resume after interruption.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-engine.yaml or ~/.config/review-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-engine"))
		}
	}

	viper.SetDefault("registry.path", "data/review.db")
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "review-engine/0.1")
	viper.SetDefault("search.max_results", 20)
	viper.SetDefault("search.requests_per_second", 1.0)
	viper.SetDefault("search.cache_ttl", 24*time.Hour)
	viper.SetDefault("dedup.title_threshold", 0.90)
	viper.SetDefault("dedup.author_overlap", 0.50)
	viper.SetDefault("acquisition.artifact_dir", "data/artifacts")
	viper.SetDefault("acquisition.manifest_path", "data/TO_ACQUIRE.csv")
	viper.SetDefault("extraction.text_dir", "data/text")
	viper.SetDefault("synthesis.model", "claude-sonnet-4-5")
	viper.SetDefault("synthesis.max_retries", 3)

	viper.SetEnvPrefix("REVIEW_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full stage configuration from viper.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Registry: types.RegistryConfig{Path: viper.GetString("registry.path")},
		Search: types.SearchConfig{
			MaxResults:            viper.GetInt("search.max_results"),
			YearMin:               viper.GetInt("search.year_min"),
			YearMax:               viper.GetInt("search.year_max"),
			RequestsPerSecond:     viper.GetFloat64("search.requests_per_second"),
			CacheTTL:              viper.GetDuration("search.cache_ttl"),
			SemanticScholarAPIKey: secrets.Resolve(loadedSecrets, "semantic-scholar-api-key", "REVIEW_ENGINE_SEMANTIC_SCHOLAR_API_KEY"),
			CrossrefEmail:         secrets.Resolve(loadedSecrets, "crossref-email", "REVIEW_ENGINE_CROSSREF_EMAIL"),
		},
		Dedup: types.DedupConfig{
			TitleThreshold: viper.GetFloat64("dedup.title_threshold"),
			AuthorOverlap:  viper.GetFloat64("dedup.author_overlap"),
		},
		Acquisition: types.AcquisitionConfig{
			ArtifactDir:  viper.GetString("acquisition.artifact_dir"),
			ManifestPath: viper.GetString("acquisition.manifest_path"),
		},
		Extraction: types.ExtractionConfig{
			TextDir: viper.GetString("extraction.text_dir"),
		},
		Synthesis: types.SynthesisConfig{
			Model:      viper.GetString("synthesis.model"),
			APIKey:     secrets.Resolve(loadedSecrets, "anthropic-api-key", "REVIEW_ENGINE_ANTHROPIC_API_KEY"),
			MaxRetries: viper.GetInt("synthesis.max_retries"),
			TextDir:    viper.GetString("extraction.text_dir"),
		},
	}
	cfg.Search.Timeout = viper.GetDuration("search.timeout")
	cfg.Search.UserAgent = viper.GetString("search.user_agent")
	return cfg
}

// openRegistry opens the registry database named in the config,
// creating parent directories on first use.
func openRegistry(cfg types.PipelineConfig) (*registry.Store, error) {
	if dir := filepath.Dir(cfg.Registry.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
	}
	return registry.Open(cfg.Registry.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
