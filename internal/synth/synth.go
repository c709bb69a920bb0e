// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth generates structured summaries for extracted papers
// and advances them to the synthesized state.
package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/internal/extract"
	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/retry"
	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

// maxTextBytes caps how much extracted text is sent to the generator.
const maxTextBytes = 120_000

// Generator produces a summary for one paper's extracted text.
type Generator interface {
	Generate(ctx context.Context, p *types.Paper, text string) (string, error)
}

// BatchResult holds the outcome of a batch synthesis run.
type BatchResult struct {
	Synthesized int
	Skipped     int
	Failed      int
}

// Total returns the number of papers processed.
func (r BatchResult) Total() int {
	return r.Synthesized + r.Skipped + r.Failed
}

// HasFailures reports whether any synthesis failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

var now = time.Now

// basePolicy is the retry policy for generation calls. Package-level
// var so tests can shrink the backoff delays.
var basePolicy = retry.DefaultPolicy()

// SynthesizeBatch summarizes every EXTRACTED paper, saving each summary
// and advancing the paper. Generation failures are retried per the
// configured policy, then counted and skipped past; registry write
// failures abort the run.
func SynthesizeBatch(ctx context.Context, gen Generator, reg *registry.Store, cfg types.SynthesisConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult

	papers, err := reg.GetByStatus(types.StatusExtracted)
	if err != nil {
		return result, err
	}

	policy := basePolicy
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}

	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		existing, err := reg.GetSummary(p.ID)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return result, err
		}
		if existing != nil {
			fmt.Fprintf(w, "skipped: %s (summary exists)\n", p.ID)
			if err := advance(reg, p); err != nil {
				return result, err
			}
			result.Skipped++
			continue
		}

		text, err := loadText(cfg, p.ID)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.ID, err)
			result.Failed++
			continue
		}

		var content string
		err = retry.Do(ctx, policy, transient, func() error {
			var gerr error
			content, gerr = gen.Generate(ctx, p, text)
			return gerr
		})
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.ID, err)
			result.Failed++
			continue
		}

		sum := types.Summary{
			PaperID:     p.ID,
			Content:     content,
			Provider:    "claude",
			Model:       cfg.Model,
			GeneratedAt: now().UTC(),
		}
		if err := reg.SaveSummary(sum); err != nil {
			return result, err
		}
		if err := advance(reg, p); err != nil {
			return result, err
		}

		fmt.Fprintf(w, "synthesized: %s (%d chars)\n", p.ID, len(content))
		result.Synthesized++
	}

	fmt.Fprintf(w, "\nSynthesis summary: %d synthesized, %d skipped, %d failed (total: %d)\n",
		result.Synthesized, result.Skipped, result.Failed, result.Total())
	return result, nil
}

func advance(reg *registry.Store, p *types.Paper) error {
	updated, err := status.Transition(*p, types.StatusSynthesized, nil, "synth")
	if err != nil {
		return err
	}
	if err := reg.Save(&updated); err != nil {
		return fmt.Errorf("saving %s: %w", updated.ID, err)
	}
	return nil
}

func loadText(cfg types.SynthesisConfig, paperID string) (string, error) {
	path := extract.TextPath(types.ExtractionConfig{TextDir: cfg.TextDir}, paperID)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading extracted text: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extracted text %s is empty", path)
	}
	if len(text) > maxTextBytes {
		text = text[:maxTextBytes]
	}
	return text, nil
}

// transient treats every generation failure as retryable; the API
// surface does not distinguish quota errors from permanent ones well
// enough to give up early.
func transient(error) bool { return true }
