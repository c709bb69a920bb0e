// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/checkpoint"
	"github.com/pdiddy/review-engine/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Match acquired artifact files to waiting papers",
	Long: `Ingest scans the artifact directory and matches each file against
papers in AWAITING_ARTIFACT by filename: file-form DOIs first, then
internal ids. Matched papers advance to ARTIFACT_ACQUIRED; unmatched
and ambiguous files are reported for manual follow-up, never guessed.

Progress is checkpointed per file, so an interrupted run resumes where
it stopped. Pass --restart to rescan from the beginning.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("artifact-dir", "", "directory to scan (default from config)")
	ingestCmd.Flags().Bool("restart", false, "ignore the checkpoint and rescan all files")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if dir, _ := cmd.Flags().GetString("artifact-dir"); dir != "" {
		cfg.Acquisition.ArtifactDir = dir
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	cps := checkpoint.New(reg.DB())
	if restart, _ := cmd.Flags().GetBool("restart"); restart {
		if err := cps.Clear(ingest.Phase); err != nil {
			return err
		}
	}

	runner := &ingest.Runner{
		Registry:    reg,
		Checkpoints: cps,
		Config:      cfg.Acquisition,
	}
	result, err := runner.Run(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed ingestion", result.Failed)
	}
	return nil
}
