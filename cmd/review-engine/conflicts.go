// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List discovery records queued for manual adjudication",
	RunE:  runConflicts,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [conflict-id]",
	Short: "Mark a queued conflict as adjudicated",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	conflictsCmd.Flags().Bool("all", false, "include resolved conflicts")
	conflictsCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	includeResolved, _ := cmd.Flags().GetBool("all")

	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	conflicts, err := reg.Conflicts(includeResolved)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		fmt.Println("No queued conflicts.")
		return nil
	}

	for _, c := range conflicts {
		state := "unresolved"
		if c.Resolved {
			state = "resolved"
		}
		fmt.Printf("#%d [%s] %q (%s, %d)\n", c.ID, state, c.Record.Title, c.Record.Source, c.Record.Year)
		fmt.Printf("    candidates: %s\n", strings.Join(c.CandidateIDs, ", "))
	}
	fmt.Printf("\n%d conflict(s). Inspect candidates with 'review-engine show <id>',\n", len(conflicts))
	fmt.Println("then mark adjudicated with 'review-engine conflicts resolve <conflict-id>'.")
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conflict id %q", args[0])
	}

	cfg := pipelineConfig()
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := reg.ResolveConflict(id); err != nil {
		return err
	}
	fmt.Printf("Conflict #%d resolved.\n", id)
	return nil
}
