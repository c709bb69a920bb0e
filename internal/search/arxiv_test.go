// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>LoRa networks for soil moisture sensing</title>
    <summary>  We survey...  </summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Ana Costa</name></author>
    <author><name>Chidi Okafor</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1901.00001v1</id>
    <title>Old paper outside year bounds</title>
    <summary>...</summary>
    <published>2019-01-01T00:00:00Z</published>
    <author><name>Someone Else</name></author>
  </entry>
</feed>`

func TestArxivParsesAndFiltersResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, arxivFixture)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	b := &ArxivBackend{Fetcher: testFetcher(ts.Client())}
	records, err := b.Search(context.Background(), Query{FreeText: "lora", YearMin: 2020}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (2019 entry filtered by year bound)", len(records))
	}

	r := records[0]
	if r.NativeID != "2301.07041" {
		t.Errorf("native id = %q, want version suffix stripped", r.NativeID)
	}
	if r.Source != "arxiv" {
		t.Errorf("source = %q", r.Source)
	}
	if r.Title != "LoRa networks for soil moisture sensing" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Abstract != "We survey..." {
		t.Errorf("abstract not trimmed: %q", r.Abstract)
	}
	if r.Year != 2023 {
		t.Errorf("year = %d", r.Year)
	}
	if len(r.Authors) != 2 || r.Authors[1] != "Chidi Okafor" {
		t.Errorf("authors = %v", r.Authors)
	}
}

func TestArxivRejectsEmptyQuery(t *testing.T) {
	b := &ArxivBackend{Fetcher: testFetcher(http.DefaultClient)}
	if _, err := b.Search(context.Background(), Query{}, testCfg()); err == nil {
		t.Fatal("expected error for empty query")
	}
}
