// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs and returns raw discovery
// records. Backends run concurrently; their records are returned as-is
// and folded together downstream by the deduplication engine.
package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Backend searches a single academic API.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.RawRecord, error)
}

// Query holds the search parameters.
type Query struct {
	FreeText string
	Author   string
	Keywords []string
	YearMin  int
	YearMax  int
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return q.FreeText == "" && q.Author == "" && len(q.Keywords) == 0
}

// Terms joins all query fields into one free-text search string.
func (q Query) Terms() string {
	parts := make([]string, 0, 2+len(q.Keywords))
	if q.FreeText != "" {
		parts = append(parts, q.FreeText)
	}
	if q.Author != "" {
		parts = append(parts, q.Author)
	}
	parts = append(parts, q.Keywords...)
	return strings.Join(parts, " ")
}

// Output holds the raw records plus any per-backend failures. One
// backend failing does not discard the others' results.
type Output struct {
	Records       []types.RawRecord
	BackendErrors []string
}

// Search fans the query out to all backends concurrently and collects
// their raw records. Backend failures are reported on w and in the
// output; the call only errors when the query itself is unusable.
func Search(ctx context.Context, query Query, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide search terms, keywords, or an author")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured")
	}

	type backendResult struct {
		name    string
		records []types.RawRecord
		err     error
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup
	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			records, err := b.Search(ctx, query, cfg)
			ch <- backendResult{name: b.Name(), records: records, err: err}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var out Output
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			out.BackendErrors = append(out.BackendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		fmt.Fprintf(w, "%s: %d records\n", br.name, len(br.records))
		out.Records = append(out.Records, br.records...)
	}
	return out, nil
}
