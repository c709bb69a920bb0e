// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/synth"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Generate review summaries for extracted papers",
	Long: `Synthesize sends each EXTRACTED paper's text to the Claude API and
stores the returned summary, advancing the paper to SYNTHESIZED.
Requires an API key in .secrets/anthropic-api-key or the
REVIEW_ENGINE_ANTHROPIC_API_KEY environment variable.`,
	RunE: runSynthesize,
}

func init() {
	synthesizeCmd.Flags().String("model", "", "generation model (default from config)")
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Synthesis.Model = model
	}
	if cfg.Synthesis.APIKey == "" {
		return fmt.Errorf("no API key: create .secrets/anthropic-api-key or set REVIEW_ENGINE_ANTHROPIC_API_KEY")
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	gen := &synth.ClaudeGenerator{
		APIKey: cfg.Synthesis.APIKey,
		Model:  cfg.Synthesis.Model,
		Client: &http.Client{Timeout: 2 * time.Minute},
	}
	result, err := synth.SynthesizeBatch(cmd.Context(), gen, reg, cfg.Synthesis, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed synthesis", result.Failed)
	}
	return nil
}
