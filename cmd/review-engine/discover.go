// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pdiddy/review-engine/internal/cache"
	"github.com/pdiddy/review-engine/internal/dedup"
	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/internal/retry"
	"github.com/pdiddy/review-engine/internal/search"
	"github.com/pdiddy/review-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search academic APIs and register candidate papers",
	Long: `Discover queries academic APIs (Semantic Scholar, Crossref, arXiv) for
papers matching a research question. Records from all backends are folded
through the deduplication engine: new papers enter the registry as
DISCOVERED, repeats merge into existing rows, and ambiguous matches are
queued for manual adjudication.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("query", "", "free-text research question")
	discoverCmd.Flags().String("author", "", "filter by author name")
	discoverCmd.Flags().String("keywords", "", "filter by keywords (comma-separated)")
	discoverCmd.Flags().Int("year-min", 0, "earliest publication year")
	discoverCmd.Flags().Int("year-max", 0, "latest publication year")
	discoverCmd.Flags().Int("max-results", 0, "maximum results per backend")
	discoverCmd.Flags().StringSlice("backends", []string{"semanticscholar", "crossref", "arxiv"}, "backends to query")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.Search.MaxResults = n
	}
	if y, _ := cmd.Flags().GetInt("year-min"); y > 0 {
		cfg.Search.YearMin = y
	}
	if y, _ := cmd.Flags().GetInt("year-max"); y > 0 {
		cfg.Search.YearMax = y
	}

	query := search.Query{
		YearMin: cfg.Search.YearMin,
		YearMax: cfg.Search.YearMax,
	}
	query.FreeText, _ = cmd.Flags().GetString("query")
	query.Author, _ = cmd.Flags().GetString("author")
	if kw, _ := cmd.Flags().GetString("keywords"); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				query.Keywords = append(query.Keywords, k)
			}
		}
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	names, _ := cmd.Flags().GetStringSlice("backends")
	backends, err := buildBackends(names, reg, cfg)
	if err != nil {
		return err
	}

	out, err := search.Search(cmd.Context(), query, backends, cfg.Search, os.Stdout)
	if err != nil {
		return err
	}

	engine := dedup.New(reg, cfg.Dedup, nil)
	var added, merged, conflicts int
	for _, rec := range out.Records {
		res, err := engine.Process(rec)
		if err != nil {
			return err
		}
		switch res.Decision {
		case dedup.DecisionNew:
			added++
		case dedup.DecisionMerged:
			merged++
		case dedup.DecisionConflict:
			conflicts++
		}
	}

	fmt.Printf("\nDiscovery: %d new, %d merged, %d conflicts queued (%d records from %d backends)\n",
		added, merged, conflicts, len(out.Records), len(backends))
	if conflicts > 0 {
		fmt.Println("Run 'review-engine conflicts' to adjudicate queued records.")
	}
	if len(out.BackendErrors) > 0 {
		return fmt.Errorf("%d backend(s) failed", len(out.BackendErrors))
	}
	return nil
}

// buildBackends constructs the requested backends, each with its own
// rate limiter over a shared HTTP client and response cache.
func buildBackends(names []string, reg *registry.Store, cfg types.PipelineConfig) ([]search.Backend, error) {
	client := &http.Client{Timeout: cfg.Search.Timeout}
	store := cache.New(reg.DB())

	newFetcher := func() *httputil.Fetcher {
		return &httputil.Fetcher{
			Client:    client,
			Limiter:   rate.NewLimiter(rate.Limit(cfg.Search.RequestsPerSecond), 1),
			Cache:     store,
			Policy:    retry.DefaultPolicy(),
			UserAgent: cfg.Search.UserAgent,
		}
	}

	var backends []search.Backend
	for _, name := range names {
		switch name {
		case "semanticscholar":
			backends = append(backends, &search.SemanticScholarBackend{
				Fetcher: newFetcher(),
				APIKey:  cfg.Search.SemanticScholarAPIKey,
			})
		case "crossref":
			backends = append(backends, &search.CrossrefBackend{
				Fetcher: newFetcher(),
				Email:   cfg.Search.CrossrefEmail,
			})
		case "arxiv":
			backends = append(backends, &search.ArxivBackend{Fetcher: newFetcher()})
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}
	}
	return backends, nil
}
