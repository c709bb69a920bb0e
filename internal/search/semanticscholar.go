// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint.
// Declared as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue"

// SemanticScholarBackend queries the Semantic Scholar Graph API.
type SemanticScholarBackend struct {
	Fetcher *httputil.Fetcher
	APIKey  string
}

func (b *SemanticScholarBackend) Name() string { return "semanticscholar" }

func (b *SemanticScholarBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.RawRecord, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"query":  {query.Terms()},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}
	if yr := yearRange(query); yr != "" {
		params.Set("year", yr)
	}

	var header http.Header
	if b.APIKey != "" {
		header = http.Header{"x-api-key": {b.APIKey}}
	}

	var sr semanticResponse
	if err := b.Fetcher.GetJSON(ctx, semanticAPIBase+"?"+params.Encode(), header, cfg.CacheTTL, &sr); err != nil {
		return nil, fmt.Errorf("Semantic Scholar search: %w", err)
	}

	var records []types.RawRecord
	for _, p := range sr.Data {
		if p.Title == "" {
			continue
		}
		rec := types.RawRecord{
			Title:    p.Title,
			Abstract: p.Abstract,
			Year:     p.Year,
			Venue:    p.Venue,
			Source:   b.Name(),
			NativeID: p.PaperID,
			DOI:      p.ExternalIDs.DOI,
		}
		for _, a := range p.Authors {
			rec.Authors = append(rec.Authors, a.Name)
		}
		records = append(records, rec)
	}
	return records, nil
}

// yearRange returns a Semantic Scholar year filter ("2020-2023",
// "2020-", "-2023").
func yearRange(q Query) string {
	switch {
	case q.YearMin > 0 && q.YearMax > 0:
		return fmt.Sprintf("%d-%d", q.YearMin, q.YearMax)
	case q.YearMin > 0:
		return fmt.Sprintf("%d-", q.YearMin)
	case q.YearMax > 0:
		return fmt.Sprintf("-%d", q.YearMax)
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        int                 `json:"year"`
	Venue       string              `json:"venue"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
