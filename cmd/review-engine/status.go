// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/pkg/types"
)

// statusOrder lists pipeline states in flow order for the report.
var statusOrder = []types.Status{
	types.StatusDiscovered,
	types.StatusScreenedIn,
	types.StatusScreenedOut,
	types.StatusAwaitingArtifact,
	types.StatusArtifactAcquired,
	types.StatusExtracted,
	types.StatusSynthesized,
	types.StatusValidated,
	types.StatusRejected,
	types.StatusArchived,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report how many papers sit in each pipeline state",
	RunE:  runStatus,
}

var showCmd = &cobra.Command{
	Use:   "show [paper-id]",
	Short: "Show one paper's record and status history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	counts, err := reg.CountByStatus()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	total := 0
	fmt.Println("Pipeline status:")
	for _, s := range statusOrder {
		n := counts[s]
		total += n
		label := string(s)
		switch s {
		case types.StatusArchived:
			label = green(label)
		case types.StatusScreenedOut, types.StatusRejected:
			label = red(label)
		}
		fmt.Printf("  %-22s %d\n", label, n)
	}
	fmt.Printf("  %-22s %d\n", "total", total)

	conflicts, err := reg.Conflicts(false)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		fmt.Printf("\n%d unresolved conflict(s) — run 'review-engine conflicts'\n", len(conflicts))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	p, err := reg.GetByID(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", p.Title)
	fmt.Printf("  id:      %s\n", p.ID)
	fmt.Printf("  status:  %s\n", p.Status)
	if p.Year > 0 {
		fmt.Printf("  year:    %d\n", p.Year)
	}
	if p.Venue != "" {
		fmt.Printf("  venue:   %s\n", p.Venue)
	}
	for k, v := range p.ExternalIDs {
		fmt.Printf("  %s: %s\n", k, v)
	}
	if p.Excluded() {
		fmt.Printf("  excluded: %s (%s)\n", p.ExclusionReason, p.ExclusionNotes)
	}
	if p.ArtifactPath != "" {
		fmt.Printf("  artifact: %s\n", p.ArtifactPath)
	}
	for _, d := range p.Discrepancies {
		fmt.Printf("  discrepancy: %s kept=%q dropped=%q (from %s)\n", d.Field, d.Kept, d.Dropped, d.Source)
	}

	fmt.Println("  history:")
	for _, ev := range p.History {
		fmt.Printf("    %s  %s  (%s)\n", ev.OccurredAt.Format("2006-01-02 15:04:05"), ev.Status, ev.Actor)
	}
	return nil
}
