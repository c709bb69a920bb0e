// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/export"
	"github.com/pdiddy/review-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export papers and summaries to YAML or JSON",
	Long: `Export writes a point-in-time snapshot of the registry (papers,
status history, and synthesis summaries) to a portable file. Use
--status to export a subset, e.g. --status archived for the final
included set.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output path (default data/export.yaml or .json)")
	exportCmd.Flags().String("status", "", "export only papers in this status")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	exportFormat, _ := cmd.Flags().GetString("format")
	exportOut, _ := cmd.Flags().GetString("out")
	exportStatus, _ := cmd.Flags().GetString("status")

	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	corpus, err := export.Build(reg, types.Status(exportStatus))
	if err != nil {
		return err
	}

	out := exportOut
	switch exportFormat {
	case "yaml", "":
		if out == "" {
			out = "data/export.yaml"
		}
		if err := export.WriteYAML(out, corpus); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = "data/export.json"
		}
		if err := export.WriteJSON(out, corpus); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", exportFormat)
	}

	fmt.Printf("Exported %d paper(s) to %s\n", len(corpus.Papers), out)
	return nil
}
