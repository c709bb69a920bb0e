// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const semanticFixture = `{
  "total": 2, "offset": 0,
  "data": [
    {
      "paperId": "ss-abc123",
      "title": "Deep learning for irrigation scheduling",
      "abstract": "We present...",
      "year": 2023,
      "venue": "Computers and Electronics in Agriculture",
      "authors": [{"authorId": "1", "name": "Jane Smith"}, {"authorId": "2", "name": "Wei Chen"}],
      "externalIds": {"DOI": "10.1016/j.compag.2023.107890"}
    },
    {
      "paperId": "ss-def456",
      "title": "Sensor placement in orchards",
      "year": 2022,
      "authors": [],
      "externalIds": {}
    }
  ]
}`

func TestSemanticScholarParsesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, semanticFixture)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Fetcher: testFetcher(ts.Client())}
	records, err := b.Search(context.Background(), Query{FreeText: "irrigation"}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	r := records[0]
	if r.Title != "Deep learning for irrigation scheduling" {
		t.Errorf("title = %q", r.Title)
	}
	if r.DOI != "10.1016/j.compag.2023.107890" {
		t.Errorf("doi = %q", r.DOI)
	}
	if r.Source != "semanticscholar" || r.NativeID != "ss-abc123" {
		t.Errorf("source/native id = %q/%q", r.Source, r.NativeID)
	}
	if r.Year != 2023 {
		t.Errorf("year = %d", r.Year)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Jane Smith" {
		t.Errorf("authors = %v", r.Authors)
	}
	if r.Venue != "Computers and Electronics in Agriculture" {
		t.Errorf("venue = %q", r.Venue)
	}

	// DOI-less record still carries its native id for tier-2 dedup.
	if records[1].DOI != "" || records[1].NativeID != "ss-def456" {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestSemanticScholarRequestParams(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	cfg := testCfg()
	cfg.MaxResults = 15

	b := &SemanticScholarBackend{Fetcher: testFetcher(ts.Client()), APIKey: "sekrit"}
	if _, err := b.Search(context.Background(), Query{FreeText: "attention", YearMin: 2020, YearMax: 2023}, cfg); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := captured.URL.Query()
	if got := q.Get("query"); got != "attention" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "15" {
		t.Errorf("limit param = %q", got)
	}
	if got := q.Get("year"); got != "2020-2023" {
		t.Errorf("year param = %q", got)
	}
	if got := captured.Header.Get("x-api-key"); got != "sekrit" {
		t.Errorf("x-api-key header = %q", got)
	}
	if got := captured.Header.Get("User-Agent"); got != "review-engine-test" {
		t.Errorf("User-Agent header = %q", got)
	}
}
