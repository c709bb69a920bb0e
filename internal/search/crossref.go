// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Overridden in tests.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefBackend queries the Crossref REST API.
type CrossrefBackend struct {
	Fetcher *httputil.Fetcher

	// Email joins the Crossref polite pool when set.
	Email string
}

func (b *CrossrefBackend) Name() string { return "crossref" }

func (b *CrossrefBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.RawRecord, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"query": {query.Terms()},
		"rows":  {fmt.Sprintf("%d", maxResults)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}
	var filters []string
	if query.YearMin > 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d-01-01", query.YearMin))
	}
	if query.YearMax > 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d-12-31", query.YearMax))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}

	var cr crossrefResponse
	if err := b.Fetcher.GetJSON(ctx, crossrefAPIBase+"?"+params.Encode(), nil, cfg.CacheTTL, &cr); err != nil {
		return nil, fmt.Errorf("Crossref search: %w", err)
	}

	var records []types.RawRecord
	for _, item := range cr.Message.Items {
		if len(item.Title) == 0 || item.DOI == "" {
			continue
		}
		rec := types.RawRecord{
			Title:    item.Title[0],
			Abstract: item.Abstract,
			Source:   b.Name(),
			NativeID: item.DOI,
			DOI:      item.DOI,
		}
		if len(item.ContainerTitle) > 0 {
			rec.Venue = item.ContainerTitle[0]
		}
		for _, a := range item.Author {
			rec.Authors = append(rec.Authors, strings.TrimSpace(a.Given+" "+a.Family))
		}
		if parts := item.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
			rec.Year = parts[0][0]
		}
		records = append(records, rec)
	}
	return records, nil
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Abstract       string           `json:"abstract"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
