// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/pkg/types"
)

func testConfig(t *testing.T) types.ExtractionConfig {
	t.Helper()
	return types.ExtractionConfig{TextDir: t.TempDir()}
}

func acquiredPaper(id, artifactPath string) *types.Paper {
	return &types.Paper{
		ID:           id,
		Title:        "Paper " + id,
		Status:       types.StatusArtifactAcquired,
		ArtifactPath: artifactPath,
		ExternalIDs:  map[string]string{},
		History: []types.StatusEvent{
			{Status: types.StatusArtifactAcquired, OccurredAt: time.Now().UTC(), Actor: "test"},
		},
	}
}

func TestExtractPaperRequiresArtifactPath(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	_, err := ExtractPaper(acquiredPaper("p1", ""), cfg, &out)
	if err == nil || !strings.Contains(err.Error(), "no artifact path") {
		t.Fatalf("err = %v, want missing artifact path error", err)
	}
}

func TestExtractPaperRejectsCorruptPDF(t *testing.T) {
	cfg := testConfig(t)
	artifact := filepath.Join(t.TempDir(), "10.1_ab.pdf")
	if err := os.WriteFile(artifact, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	_, err := ExtractPaper(acquiredPaper("10.1_ab", artifact), cfg, &out)
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
}

func TestExtractPaperReusesExistingText(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(TextPath(cfg, "10.1_ab"), []byte("cached text"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	// Artifact path points nowhere; the existing text short-circuits
	// before any PDF is opened.
	skipped, err := ExtractPaper(acquiredPaper("10.1_ab", "/nonexistent.pdf"), cfg, &out)
	if err != nil {
		t.Fatalf("ExtractPaper: %v", err)
	}
	if !skipped {
		t.Error("expected skip when text already exists")
	}
	if !strings.Contains(out.String(), "skipped") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExtractBatchAdvancesPapers(t *testing.T) {
	reg, err := registry.Open(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()
	cfg := testConfig(t)

	// Two papers with pre-extracted text, one with a corrupt artifact.
	good1 := acquiredPaper("10.1_aa", "/gone.pdf")
	good2 := acquiredPaper("10.1_bb", "/gone.pdf")
	bad := acquiredPaper("10.1_cc", filepath.Join(t.TempDir(), "10.1_cc.pdf"))
	if err := os.WriteFile(bad.ArtifactPath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, p := range []*types.Paper{good1, good2, bad} {
		if err := reg.Insert(p); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"10.1_aa", "10.1_bb"} {
		if err := os.WriteFile(TextPath(cfg, id), []byte("text"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	result, err := ExtractBatch(reg, cfg, &out)
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if result.Skipped != 2 || result.Failed != 1 || result.Extracted != 0 {
		t.Errorf("result = %+v", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}

	got, err := reg.GetByID("10.1_aa")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.StatusExtracted {
		t.Errorf("status = %s, want extracted", got.Status)
	}

	// The failed paper keeps its status for a retry after the artifact
	// is re-acquired.
	gotBad, err := reg.GetByID("10.1_cc")
	if err != nil {
		t.Fatal(err)
	}
	if gotBad.Status != types.StatusArtifactAcquired {
		t.Errorf("failed paper status = %s, want artifact_acquired", gotBad.Status)
	}
}

func TestTextPath(t *testing.T) {
	cfg := types.ExtractionConfig{TextDir: "data/text"}
	if got := TextPath(cfg, "10.1016_j.compag.2023.107890"); got != filepath.Join("data/text", "10.1016_j.compag.2023.107890.txt") {
		t.Errorf("TextPath = %q", got)
	}
}
