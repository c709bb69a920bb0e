// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/pkg/types"
)

func testRegistry(t *testing.T) *registry.Store {
	t.Helper()
	reg, err := registry.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func insertPaper(t *testing.T, reg *registry.Store, id string, status types.Status) {
	t.Helper()
	p := &types.Paper{
		ID:          id,
		Title:       "Paper " + id,
		ExternalIDs: map[string]string{},
		Status:      status,
		History: []types.StatusEvent{
			{Status: status, OccurredAt: time.Now().UTC(), Actor: "test"},
		},
	}
	require.NoError(t, reg.Insert(p))
}

func TestBuildPairsPapersWithSummaries(t *testing.T) {
	reg := testRegistry(t)
	insertPaper(t, reg, "p1", types.StatusSynthesized)
	insertPaper(t, reg, "p2", types.StatusDiscovered)
	require.NoError(t, reg.SaveSummary(types.Summary{
		PaperID:     "p1",
		Content:     "findings",
		Provider:    "claude",
		GeneratedAt: time.Now().UTC(),
	}))

	corpus, err := Build(reg, "")
	require.NoError(t, err)
	require.Len(t, corpus.Papers, 2)

	byID := map[string]Entry{}
	for _, e := range corpus.Papers {
		byID[e.Paper.ID] = e
	}
	require.NotNil(t, byID["p1"].Summary)
	require.Equal(t, "findings", byID["p1"].Summary.Content)
	require.Nil(t, byID["p2"].Summary)
}

func TestBuildFiltersByStatus(t *testing.T) {
	reg := testRegistry(t)
	insertPaper(t, reg, "p1", types.StatusArchived)
	insertPaper(t, reg, "p2", types.StatusDiscovered)

	corpus, err := Build(reg, types.StatusArchived)
	require.NoError(t, err)
	require.Len(t, corpus.Papers, 1)
	require.Equal(t, "p1", corpus.Papers[0].Paper.ID)
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	reg := testRegistry(t)
	insertPaper(t, reg, "p1", types.StatusDiscovered)

	corpus, err := Build(reg, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "export.yaml")
	require.NoError(t, WriteYAML(path, corpus))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Corpus
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Papers, 1)
	require.Equal(t, "p1", decoded.Papers[0].Paper.ID)
	require.Equal(t, "Paper p1", decoded.Papers[0].Paper.Title)
}

func TestWriteJSON(t *testing.T) {
	reg := testRegistry(t)
	insertPaper(t, reg, "p1", types.StatusDiscovered)

	corpus, err := Build(reg, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, WriteJSON(path, corpus))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Corpus
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Papers, 1)
	require.Equal(t, "p1", decoded.Papers[0].Paper.ID)
}
