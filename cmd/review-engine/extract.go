// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract plain text from acquired PDFs",
	Long: `Extract pulls the text out of every ARTIFACT_ACQUIRED paper's PDF and
writes it to the text directory, advancing the papers to EXTRACTED.
Papers whose text already exists are advanced without re-extraction.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("text-dir", "", "output directory for extracted text (default from config)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if dir, _ := cmd.Flags().GetString("text-dir"); dir != "" {
		cfg.Extraction.TextDir = dir
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	result, err := extract.ExtractBatch(reg, cfg.Extraction, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed extraction", result.Failed)
	}
	return nil
}
