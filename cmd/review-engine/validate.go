// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [paper-ids...]",
	Short: "Mark synthesized summaries as human-validated",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionAll(args, types.StatusValidated, nil)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [paper-ids...]",
	Short: "Exclude papers at full-text review",
	Long: `Reject excludes papers after full-text reading (EXTRACTED -> REJECTED).
An exclusion reason is mandatory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("reason")
		notes, _ := cmd.Flags().GetString("notes")
		if code == "" {
			return fmt.Errorf("--reason is required when rejecting")
		}
		return transitionAll(args, types.StatusRejected, &status.Reason{
			Code:  types.ExclusionReason(code),
			Notes: notes,
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [paper-ids...]",
	Short: "Archive validated papers",
	Long: `Archive moves papers from VALIDATED to ARCHIVED, the terminal success
state. With no arguments every validated paper is archived.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return transitionAll(args, types.StatusArchived, nil)
		}

		cfg := pipelineConfig()
		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Close()

		papers, err := reg.GetByStatus(types.StatusValidated)
		if err != nil {
			return err
		}
		for _, p := range papers {
			if err := applyTransition(reg, p, types.StatusArchived, nil); err != nil {
				return err
			}
		}
		fmt.Printf("%d paper(s) archived\n", len(papers))
		return nil
	},
}

func init() {
	rejectCmd.Flags().String("reason", "", "exclusion reason code (e.g. insufficient_data, poor_methodology)")
	rejectCmd.Flags().String("notes", "", "free-text justification")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(archiveCmd)
}
