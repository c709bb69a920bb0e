// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const crossrefFixture = `{
  "message": {
    "items": [
      {
        "DOI": "10.1016/j.compag.2023.107890",
        "title": ["Deep learning for irrigation scheduling"],
        "container-title": ["Computers and Electronics in Agriculture"],
        "author": [
          {"given": "Jane", "family": "Smith"},
          {"given": "Wei", "family": "Chen"}
        ],
        "issued": {"date-parts": [[2023, 5, 12]]}
      },
      {
        "DOI": "",
        "title": ["No DOI, skipped"]
      }
    ]
  }
}`

func TestCrossrefParsesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, crossrefFixture)
	}))
	defer ts.Close()

	old := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = old }()

	b := &CrossrefBackend{Fetcher: testFetcher(ts.Client())}
	records, err := b.Search(context.Background(), Query{FreeText: "irrigation"}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (DOI-less item skipped)", len(records))
	}

	r := records[0]
	if r.DOI != "10.1016/j.compag.2023.107890" || r.NativeID != r.DOI {
		t.Errorf("doi/native id = %q/%q", r.DOI, r.NativeID)
	}
	if r.Source != "crossref" {
		t.Errorf("source = %q", r.Source)
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
}

func TestCrossrefRequestParams(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"message":{"items":[]}}`)
	}))
	defer ts.Close()

	old := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = old }()

	b := &CrossrefBackend{Fetcher: testFetcher(ts.Client()), Email: "reviews@example.org"}
	if _, err := b.Search(context.Background(), Query{FreeText: "soil", YearMin: 2020}, testCfg()); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := captured.URL.Query()
	if got := q.Get("mailto"); got != "reviews@example.org" {
		t.Errorf("mailto param = %q", got)
	}
	if got := q.Get("filter"); got != "from-pub-date:2020-01-01" {
		t.Errorf("filter param = %q", got)
	}
	if got := q.Get("rows"); got != "20" {
		t.Errorf("rows param = %q", got)
	}
}
