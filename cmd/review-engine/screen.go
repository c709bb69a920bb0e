// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Record screening decisions for discovered papers",
	Long: `Screen records title/abstract screening decisions. Included papers move
to SCREENED_IN; excluded papers move to SCREENED_OUT with a mandatory
exclusion reason. Use 'queue' afterwards to stage included papers for
artifact acquisition.`,
}

var screenInCmd = &cobra.Command{
	Use:   "in [paper-ids...]",
	Short: "Mark papers as passing title/abstract screening",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionAll(args, types.StatusScreenedIn, nil)
	},
}

var screenOutCmd = &cobra.Command{
	Use:   "out [paper-ids...]",
	Short: "Exclude papers at title/abstract screening",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("reason")
		notes, _ := cmd.Flags().GetString("notes")
		if code == "" {
			return fmt.Errorf("--reason is required when screening out")
		}
		return transitionAll(args, types.StatusScreenedOut, &status.Reason{
			Code:  types.ExclusionReason(code),
			Notes: notes,
		})
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue [paper-ids...]",
	Short: "Stage screened-in papers for artifact acquisition",
	Long: `Queue moves papers from SCREENED_IN to AWAITING_ARTIFACT. With no
arguments every screened-in paper is queued.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return transitionAll(args, types.StatusAwaitingArtifact, nil)
		}

		cfg := pipelineConfig()
		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Close()

		papers, err := reg.GetByStatus(types.StatusScreenedIn)
		if err != nil {
			return err
		}
		for _, p := range papers {
			if err := applyTransition(reg, p, types.StatusAwaitingArtifact, nil); err != nil {
				return err
			}
		}
		fmt.Printf("%d paper(s) queued for acquisition\n", len(papers))
		return nil
	},
}

func init() {
	screenOutCmd.Flags().String("reason", "", "exclusion reason code (e.g. irrelevant_topic, wrong_population)")
	screenOutCmd.Flags().String("notes", "", "free-text justification")

	screenCmd.AddCommand(screenInCmd)
	screenCmd.AddCommand(screenOutCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(queueCmd)
}

// transitionAll applies one status change to every named paper.
func transitionAll(ids []string, target types.Status, reason *status.Reason) error {
	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	var failed int
	for _, id := range ids {
		p, err := reg.GetByID(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s (%v)\n", id, err)
			failed++
			continue
		}
		if err := applyTransition(reg, p, target, reason); err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s (%v)\n", id, err)
			failed++
			continue
		}
		fmt.Printf("%s -> %s\n", id, target)
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed", failed)
	}
	return nil
}

func applyTransition(reg *registry.Store, p *types.Paper, target types.Status, reason *status.Reason) error {
	updated, err := status.Transition(*p, target, reason, "cli")
	if err != nil {
		return err
	}
	return reg.Save(&updated)
}
