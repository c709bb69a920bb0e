// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/manifest"
	"github.com/pdiddy/review-engine/pkg/types"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write the acquisition worklist CSV",
	Long: `Manifest writes one CSV row per paper awaiting an artifact, including
the suggested filename. Save each acquired PDF under its suggested name
in the artifact directory and run 'ingest' to match files back to
papers.`,
	RunE: runManifest,
}

func init() {
	manifestCmd.Flags().String("out", "", "output path (default from config)")
	rootCmd.AddCommand(manifestCmd)
}

func runManifest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	path := cfg.Acquisition.ManifestPath
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		path = out
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	papers, err := reg.GetByStatus(types.StatusAwaitingArtifact)
	if err != nil {
		return err
	}
	if err := manifest.WriteFile(path, papers); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d paper(s) awaiting artifacts)\n", path, len(papers))
	return nil
}
