// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls plain text out of acquired PDF artifacts and
// advances the owning papers. Extracted text is written next to the
// registry so synthesis can run without re-opening PDFs.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of papers processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any extraction failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// TextPath returns where a paper's extracted text lives.
func TextPath(cfg types.ExtractionConfig, paperID string) string {
	return filepath.Join(cfg.TextDir, paperID+".txt")
}

// ExtractPaper extracts text from the paper's artifact and writes it
// to the text directory. An existing text file is reused rather than
// re-extracted.
func ExtractPaper(p *types.Paper, cfg types.ExtractionConfig, w io.Writer) (skipped bool, err error) {
	textPath := TextPath(cfg, p.ID)
	if _, statErr := os.Stat(textPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (text already exists)\n", p.ID)
		return true, nil
	}

	if p.ArtifactPath == "" {
		return false, fmt.Errorf("paper %s has no artifact path", p.ID)
	}

	text, err := Text(p.ArtifactPath)
	if err != nil {
		return false, fmt.Errorf("extracting %s: %w", p.ID, err)
	}
	if strings.TrimSpace(text) == "" {
		return false, fmt.Errorf("no extractable text in %s", p.ArtifactPath)
	}

	if err := os.MkdirAll(cfg.TextDir, 0o755); err != nil {
		return false, fmt.Errorf("creating text directory: %w", err)
	}
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("writing text for %s: %w", p.ID, err)
	}

	fmt.Fprintf(w, "extracted: %s (%d bytes)\n", p.ID, len(text))
	return false, nil
}

// ExtractBatch processes every ARTIFACT_ACQUIRED paper, printing
// per-item status and returning a summary. It continues after
// individual failures; registry write failures abort the run.
func ExtractBatch(reg *registry.Store, cfg types.ExtractionConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult

	papers, err := reg.GetByStatus(types.StatusArtifactAcquired)
	if err != nil {
		return result, err
	}

	for _, p := range papers {
		wasSkipped, err := ExtractPaper(p, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.ID, err)
			result.Failed++
			continue
		}
		updated, err := status.Transition(*p, types.StatusExtracted, nil, "extract")
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.ID, err)
			result.Failed++
			continue
		}
		if err := reg.Save(&updated); err != nil {
			return result, fmt.Errorf("saving %s: %w", updated.ID, err)
		}

		if wasSkipped {
			result.Skipped++
		} else {
			result.Extracted++
		}
	}

	fmt.Fprintf(w, "\nExtract summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// Text extracts the plain text of every page in the PDF at path.
// Pages that cannot be decoded are skipped rather than failing the
// whole document.
func Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
