// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the review corpus to portable files. The export
// is a point-in-time snapshot for sharing or archival; the SQLite
// registry remains the source of truth.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Entry pairs one paper with its synthesis output, when one exists.
type Entry struct {
	Paper   *types.Paper   `json:"paper" yaml:"paper"`
	Summary *types.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Corpus is the top-level export document.
type Corpus struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Papers     []Entry   `json:"papers" yaml:"papers"`
}

// Build assembles the export document. When status is non-empty, only
// papers in that status are included.
func Build(reg *registry.Store, status types.Status) (*Corpus, error) {
	var (
		papers []*types.Paper
		err    error
	)
	if status == "" {
		papers, err = reg.All()
	} else {
		papers, err = reg.GetByStatus(status)
	}
	if err != nil {
		return nil, err
	}

	corpus := &Corpus{ExportedAt: time.Now().UTC()}
	for _, p := range papers {
		entry := Entry{Paper: p}
		sum, err := reg.GetSummary(p.ID)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return nil, err
		}
		entry.Summary = sum
		corpus.Papers = append(corpus.Papers, entry)
	}
	return corpus, nil
}

// WriteYAML writes the corpus to path as YAML.
func WriteYAML(path string, corpus *Corpus) error {
	data, err := yaml.Marshal(corpus)
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return writeFile(path, data)
}

// WriteJSON writes the corpus to path as indented JSON.
func WriteJSON(path string, corpus *Corpus) error {
	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
