// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest writes the TO_ACQUIRE.csv worklist: one row per
// paper awaiting an artifact, with the filename the matcher will
// recognize when the file comes back.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/review-engine/internal/identifier"
	"github.com/pdiddy/review-engine/pkg/types"
)

var header = []string{
	"internal_id", "title", "authors", "year", "doi", "doi_url", "suggested_filename",
}

// maxAuthors caps the authors column; long lists add noise, the first
// few are enough to find the paper.
const maxAuthors = 3

// Write emits the manifest rows for papers to w.
func Write(w io.Writer, papers []*types.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing manifest header: %w", err)
	}
	for _, p := range papers {
		if err := cw.Write(row(p)); err != nil {
			return fmt.Errorf("writing manifest row for %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing manifest: %w", err)
	}
	return nil
}

// WriteFile writes the manifest for every AWAITING_ARTIFACT paper to
// path, creating parent directories as needed.
func WriteFile(path string, papers []*types.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := Write(f, papers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func row(p *types.Paper) []string {
	doi := p.ExternalIDs["doi"]
	doiURL := ""
	if doi != "" {
		doiURL = "https://doi.org/" + doi
	}
	return []string{
		p.ID,
		p.Title,
		authorList(p.Authors),
		strconv.Itoa(p.Year),
		doi,
		doiURL,
		SuggestedFilename(p),
	}
}

func authorList(authors []string) string {
	if len(authors) > maxAuthors {
		authors = authors[:maxAuthors]
	}
	return strings.Join(authors, "; ")
}

// SuggestedFilename is the name an acquired artifact should be saved
// under so the matcher recognizes it without guessing: the file-form
// DOI when there is one, otherwise the prefixed internal id.
func SuggestedFilename(p *types.Paper) string {
	if doi, ok := p.ExternalIDs["doi"]; ok && doi != "" {
		return identifier.FileForm(doi) + ".pdf"
	}
	return "paper_" + p.ID + ".pdf"
}
