// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest scans the artifact directory, matches each file
// against papers awaiting an artifact, and advances matched papers.
// Runs are checkpointed per filename so an interrupted scan resumes
// where it stopped.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"github.com/pdiddy/review-engine/internal/checkpoint"
	"github.com/pdiddy/review-engine/internal/match"
	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Phase is the checkpoint phase name for artifact ingestion.
const Phase = "ingest"

// Result summarizes one ingestion run.
type Result struct {
	Matched   int
	Unmatched int
	Ambiguous int
	Invalid   int
	Failed    int

	// UnmatchedFiles and AmbiguousFiles carry the filenames needing
	// manual follow-up.
	UnmatchedFiles []string
	AmbiguousFiles []string
}

// Total returns the number of files examined.
func (r Result) Total() int {
	return r.Matched + r.Unmatched + r.Ambiguous + r.Invalid + r.Failed
}

// HasFailures reports whether any file failed outright.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Runner wires the pieces an ingestion run needs.
type Runner struct {
	Registry    *registry.Store
	Checkpoints *checkpoint.Store
	Config      types.AcquisitionConfig
}

// Run ingests every artifact in the configured directory, printing
// per-file status to w. Registry write failures abort the run (the
// store is unusable); everything else is counted and continued past.
// A previous incomplete run resumes after its last checkpointed file.
func (r *Runner) Run(ctx context.Context, w io.Writer) (Result, error) {
	var result Result

	candidates, err := r.Registry.GetByStatus(types.StatusAwaitingArtifact)
	if err != nil {
		return result, err
	}

	files, err := listArtifacts(r.Config.ArtifactDir)
	if err != nil {
		return result, err
	}

	cursor := ""
	if cp, ok, err := r.Checkpoints.Load(Phase); err != nil {
		return result, err
	} else if ok && cp.State != checkpoint.StateCompleted {
		cursor = cp.Cursor
		fmt.Fprintf(w, "resuming after %s\n", cursor)
	}

	for _, name := range files {
		if name <= cursor {
			continue
		}
		if err := ctx.Err(); err != nil {
			// Progress so far is saved; the next run resumes here.
			return result, err
		}

		candidates, err = r.ingestOne(name, candidates, &result, w)
		if err != nil {
			if cerr := r.Checkpoints.Fail(Phase, cursor); cerr != nil {
				return result, errors.Join(err, cerr)
			}
			return result, err
		}

		cursor = name
		if err := r.Checkpoints.Advance(Phase, cursor); err != nil {
			return result, err
		}
	}

	if err := r.Checkpoints.Complete(Phase, cursor); err != nil {
		return result, err
	}
	printSummary(w, result)
	return result, nil
}

// ingestOne handles a single file and returns the remaining candidate
// set. A registry write failure is returned; anything else is recorded
// in result and swallowed.
func (r *Runner) ingestOne(name string, candidates []*types.Paper, result *Result, w io.Writer) ([]*types.Paper, error) {
	path := filepath.Join(r.Config.ArtifactDir, name)
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		result.Failed++
		return candidates, nil
	}

	res := match.Match(match.Artifact{Filename: name, ByteSize: info.Size()}, candidates)
	switch res.Outcome {
	case match.Unmatched:
		fmt.Fprintf(w, "unmatched: %s\n", name)
		result.Unmatched++
		result.UnmatchedFiles = append(result.UnmatchedFiles, name)
		return candidates, nil
	case match.Ambiguous:
		fmt.Fprintf(w, "ambiguous: %s (candidates: %v)\n", name, res.CandidateIDs)
		result.Ambiguous++
		result.AmbiguousFiles = append(result.AmbiguousFiles, name)
		return candidates, nil
	}

	if !res.ArtifactValid {
		// The file names the right paper but carries no payload; leave
		// the paper awaiting so re-acquisition picks it up.
		fmt.Fprintf(w, "invalid:   %s (empty file, re-acquire)\n", name)
		result.Invalid++
		return candidates, nil
	}

	updated, err := status.Transition(*res.Paper, types.StatusArtifactAcquired, nil, "ingest")
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		result.Failed++
		return candidates, nil
	}
	updated.ArtifactPath = path
	if err := r.Registry.Save(&updated); err != nil {
		return candidates, fmt.Errorf("saving %s: %w", updated.ID, err)
	}

	fmt.Fprintf(w, "matched:   %s -> %s\n", name, updated.ID)
	result.Matched++
	return dropCandidate(candidates, updated.ID), nil
}

// listArtifacts returns the regular files in dir in lexical order, the
// same order the checkpoint cursor is compared in.
func listArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading artifact directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func dropCandidate(candidates []*types.Paper, id string) []*types.Paper {
	for i, p := range candidates {
		if p.ID == id {
			return append(candidates[:i], candidates[i+1:]...)
		}
	}
	return candidates
}

func printSummary(w io.Writer, r Result) {
	green := color.New(color.FgGreen).SprintfFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()

	fmt.Fprintf(w, "\nIngest summary: %s, %s, %s, %s, %s (total: %d)\n",
		green("%d matched", r.Matched),
		yellow("%d unmatched", r.Unmatched),
		yellow("%d ambiguous", r.Ambiguous),
		yellow("%d invalid", r.Invalid),
		red("%d failed", r.Failed),
		r.Total(),
	)
	for _, f := range r.UnmatchedFiles {
		fmt.Fprintf(w, "  follow up: %s\n", f)
	}
	for _, f := range r.AmbiguousFiles {
		fmt.Fprintf(w, "  adjudicate: %s\n", f)
	}
}
