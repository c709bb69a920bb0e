// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup folds raw discovery records from multiple search
// backends into single registry entries. Matching runs in tiers:
// normalized DOI, then (source, native id), then fuzzy title within the
// same publication year. The fuzzy tier never crosses DOI evidence: a
// candidate carrying a different DOI is not a match. Records that
// fuzzy-match more than one existing paper are queued for manual
// review, never force-merged.
package dedup

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/review-engine/internal/identifier"
	"github.com/pdiddy/review-engine/internal/registry"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Decision classifies what Process did with a raw record.
type Decision int

const (
	// DecisionNew means a new paper row was created.
	DecisionNew Decision = iota
	// DecisionMerged means the record was folded into an existing paper.
	DecisionMerged
	// DecisionConflict means two distinct papers both matched; the
	// record was queued for manual adjudication.
	DecisionConflict
)

func (d Decision) String() string {
	switch d {
	case DecisionNew:
		return "new"
	case DecisionMerged:
		return "merged"
	case DecisionConflict:
		return "conflict"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Result reports the outcome for one raw record. Paper is nil on
// DecisionConflict.
type Result struct {
	Decision Decision
	Paper    *types.Paper
}

// Fuzzy-tier defaults, used when the config leaves them unset.
const (
	DefaultTitleThreshold = 0.90
	DefaultAuthorOverlap  = 0.50
)

// Similarity scores two normalized titles in [0, 1]. Swappable so the
// fuzzy tier can be tuned without touching the engine.
type Similarity func(a, b string) float64

// Engine deduplicates raw records against the registry.
type Engine struct {
	reg        *registry.Store
	cfg        types.DedupConfig
	similarity Similarity
	actor      string
}

var now = time.Now

// New builds an engine with the default token-set similarity. Pass a
// non-nil sim to override it.
func New(reg *registry.Store, cfg types.DedupConfig, sim Similarity) *Engine {
	if sim == nil {
		sim = TokenSetSimilarity
	}
	if cfg.TitleThreshold == 0 {
		cfg.TitleThreshold = DefaultTitleThreshold
	}
	if cfg.AuthorOverlap == 0 {
		cfg.AuthorOverlap = DefaultAuthorOverlap
	}
	return &Engine{reg: reg, cfg: cfg, similarity: sim, actor: "dedup"}
}

// Process inserts rec as a new paper, merges it into an existing one,
// or queues it as a conflict. The registry is updated before Process
// returns; the decision describes what was persisted.
func (e *Engine) Process(rec types.RawRecord) (Result, error) {
	existing, err := e.findMatch(rec)
	if err != nil {
		var amb *ambiguousMatch
		if errors.As(err, &amb) {
			if qerr := e.reg.QueueConflict(rec, amb.candidateIDs); qerr != nil {
				return Result{}, qerr
			}
			return Result{Decision: DecisionConflict}, nil
		}
		return Result{}, err
	}

	if existing == nil {
		p, err := e.insertNew(rec)
		if err != nil {
			return Result{}, err
		}
		return Result{Decision: DecisionNew, Paper: p}, nil
	}

	merged := mergeRecord(existing, rec)
	if err := e.reg.Save(merged); err != nil {
		return Result{}, err
	}
	return Result{Decision: DecisionMerged, Paper: merged}, nil
}

// ambiguousMatch reports that the fuzzy tier matched more than one
// registry row.
type ambiguousMatch struct {
	candidateIDs []string
}

func (a *ambiguousMatch) Error() string {
	return fmt.Sprintf("record fuzzy-matches %d distinct papers", len(a.candidateIDs))
}

// findMatch runs the tiers in order; the first tier that matches wins
// and later tiers are not consulted.
func (e *Engine) findMatch(rec types.RawRecord) (*types.Paper, error) {
	if doi, err := identifier.Normalize(rec.DOI, identifier.KindDOI); err == nil {
		p, err := e.reg.GetByIdentifier("doi", doi)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, registry.ErrNotFound) {
			return nil, err
		}
	}

	if rec.Source != "" && rec.NativeID != "" {
		p, err := e.reg.GetByIdentifier(rec.Source, rec.NativeID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, registry.ErrNotFound) {
			return nil, err
		}
	}

	return e.fuzzyMatch(rec)
}

func (e *Engine) fuzzyMatch(rec types.RawRecord) (*types.Paper, error) {
	if rec.Year == 0 || rec.Title == "" {
		return nil, nil
	}
	candidates, err := e.reg.GetByYear(rec.Year)
	if err != nil {
		return nil, err
	}

	recDOI, _ := identifier.Normalize(rec.DOI, identifier.KindDOI)

	title := NormalizeTitle(rec.Title)
	surnames := surnameSet(rec.Authors)
	var matched []*types.Paper
	for _, c := range candidates {
		// A differing DOI identifies a distinct publication; title
		// similarity cannot override it.
		if have, ok := c.ExternalIDs["doi"]; ok && recDOI != "" && have != recDOI {
			continue
		}
		if e.similarity(title, NormalizeTitle(c.Title)) < e.cfg.TitleThreshold {
			continue
		}
		if surnameOverlap(surnames, surnameSet(c.Authors)) < e.cfg.AuthorOverlap {
			continue
		}
		matched = append(matched, c)
	}

	switch len(matched) {
	case 0:
		return nil, nil
	case 1:
		return matched[0], nil
	default:
		ids := make([]string, len(matched))
		for i, p := range matched {
			ids[i] = p.ID
		}
		return nil, &ambiguousMatch{candidateIDs: ids}
	}
}

func (e *Engine) insertNew(rec types.RawRecord) (*types.Paper, error) {
	p := &types.Paper{
		Title:       rec.Title,
		Authors:     append([]string(nil), rec.Authors...),
		Year:        rec.Year,
		Venue:       rec.Venue,
		Abstract:    rec.Abstract,
		ExternalIDs: map[string]string{},
		Status:      types.StatusDiscovered,
	}
	if doi, err := identifier.Normalize(rec.DOI, identifier.KindDOI); err == nil {
		p.ExternalIDs["doi"] = doi
		p.ID = identifier.FileForm(doi)
	} else {
		p.ID = uuid.NewString()
	}
	if rec.Source != "" && rec.NativeID != "" {
		p.ExternalIDs[rec.Source] = rec.NativeID
	}
	p.History = []types.StatusEvent{{
		Status:     types.StatusDiscovered,
		OccurredAt: now().UTC(),
		Actor:      e.actor,
	}}
	if err := e.reg.Insert(p); err != nil {
		return nil, err
	}
	return p, nil
}

// mergeRecord folds rec into p. External ids are unioned; on scalar
// disagreement the first-inserted value is kept and the losing value is
// recorded as a discrepancy. Empty fields on p are filled in silently.
func mergeRecord(p *types.Paper, rec types.RawRecord) *types.Paper {
	merged := *p
	merged.ExternalIDs = make(map[string]string, len(p.ExternalIDs)+2)
	for k, v := range p.ExternalIDs {
		merged.ExternalIDs[k] = v
	}
	merged.Discrepancies = append([]types.Discrepancy(nil), p.Discrepancies...)

	if doi, err := identifier.Normalize(rec.DOI, identifier.KindDOI); err == nil {
		if have, ok := merged.ExternalIDs["doi"]; ok && have != doi {
			merged.Discrepancies = append(merged.Discrepancies, types.Discrepancy{
				Field: "doi", Kept: have, Dropped: doi, Source: rec.Source,
			})
		} else {
			merged.ExternalIDs["doi"] = doi
		}
	}
	if rec.Source != "" && rec.NativeID != "" {
		if have, ok := merged.ExternalIDs[rec.Source]; ok && have != rec.NativeID {
			merged.Discrepancies = append(merged.Discrepancies, types.Discrepancy{
				Field: rec.Source, Kept: have, Dropped: rec.NativeID, Source: rec.Source,
			})
		} else {
			merged.ExternalIDs[rec.Source] = rec.NativeID
		}
	}

	mergeScalar(&merged, "title", &merged.Title, rec.Title, rec.Source)
	mergeScalar(&merged, "venue", &merged.Venue, rec.Venue, rec.Source)
	mergeScalar(&merged, "abstract", &merged.Abstract, rec.Abstract, rec.Source)
	if rec.Year != 0 {
		if merged.Year == 0 {
			merged.Year = rec.Year
		} else if merged.Year != rec.Year {
			merged.Discrepancies = append(merged.Discrepancies, types.Discrepancy{
				Field:   "year",
				Kept:    fmt.Sprintf("%d", merged.Year),
				Dropped: fmt.Sprintf("%d", rec.Year),
				Source:  rec.Source,
			})
		}
	}
	if len(merged.Authors) == 0 && len(rec.Authors) > 0 {
		merged.Authors = append([]string(nil), rec.Authors...)
	}
	return &merged
}

func mergeScalar(p *types.Paper, field string, have *string, incoming, source string) {
	if incoming == "" {
		return
	}
	if *have == "" {
		*have = incoming
		return
	}
	if *have != incoming && field != "abstract" {
		// Abstracts vary by source formatting; not worth a record.
		p.Discrepancies = append(p.Discrepancies, types.Discrepancy{
			Field: field, Kept: *have, Dropped: incoming, Source: source,
		})
	}
}
