// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match reconciles externally acquired artifact files against
// papers waiting on an artifact. Matching is identifier-based only:
// a filename either names a paper exactly (by DOI or internal id) or
// the artifact stays unmatched for manual follow-up. There is no fuzzy
// fallback here; a silently wrong PDF is worse than an unmatched one.
package match

import (
	"fmt"

	"github.com/pdiddy/review-engine/internal/identifier"
	"github.com/pdiddy/review-engine/pkg/types"
)

// idPrefix is the filename prefix used for papers without a DOI, e.g.
// "paper_4f8a....pdf". It is stripped before internal-id comparison.
const idPrefix = "paper_"

// Artifact describes one file found in the acquisition directory.
type Artifact struct {
	Filename string
	ByteSize int64
}

// Outcome classifies the matching result.
type Outcome int

const (
	// Matched means exactly one candidate claimed the artifact.
	Matched Outcome = iota
	// Unmatched means no candidate identifier fit the filename.
	Unmatched
	// Ambiguous means more than one candidate fit; the artifact is
	// reported, not assigned.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the decision for one artifact. Paper is set only when
// Outcome is Matched; CandidateIDs lists the contenders when
// Ambiguous. ArtifactValid reports payload plausibility separately
// from matching, so a zero-byte file can still match its paper and be
// flagged for re-acquisition.
type Result struct {
	Outcome       Outcome
	Paper         *types.Paper
	CandidateIDs  []string
	ArtifactValid bool
}

// Match decides which of the candidate papers an artifact belongs to.
// Strategies run in order and the first that finds anything wins:
// filename as DOI, then filename as internal id. Match is a pure
// function; advancing a matched paper's status is the caller's job.
func Match(artifact Artifact, candidates []*types.Paper) Result {
	res := Result{Outcome: Unmatched, ArtifactValid: artifact.ByteSize > 0}

	if hits := byDOI(artifact.Filename, candidates); len(hits) > 0 {
		return res.resolve(hits)
	}
	if hits := byInternalID(artifact.Filename, candidates); len(hits) > 0 {
		return res.resolve(hits)
	}
	return res
}

func (r Result) resolve(hits []*types.Paper) Result {
	if len(hits) == 1 {
		r.Outcome = Matched
		r.Paper = hits[0]
		return r
	}
	r.Outcome = Ambiguous
	for _, p := range hits {
		r.CandidateIDs = append(r.CandidateIDs, p.ID)
	}
	return r
}

// byDOI reads the filename stem as a file-form DOI and collects every
// candidate whose doi external id normalizes to the same key.
func byDOI(filename string, candidates []*types.Paper) []*types.Paper {
	doi, err := identifier.Normalize(identifier.Stem(filename), identifier.KindDOI)
	if err != nil {
		return nil
	}
	var hits []*types.Paper
	for _, p := range candidates {
		have, ok := p.ExternalIDs["doi"]
		if !ok {
			continue
		}
		if norm, err := identifier.Normalize(have, identifier.KindDOI); err == nil && norm == doi {
			hits = append(hits, p)
		}
	}
	return hits
}

// byInternalID reads the filename stem as an opaque id, with and
// without the paper_ prefix, and collects candidates with that id.
func byInternalID(filename string, candidates []*types.Paper) []*types.Paper {
	stem, err := identifier.Normalize(identifier.Stem(filename), identifier.KindOpaque)
	if err != nil {
		return nil
	}
	keys := []string{stem}
	if len(stem) > len(idPrefix) && stem[:len(idPrefix)] == idPrefix {
		keys = append(keys, stem[len(idPrefix):])
	}
	var hits []*types.Paper
	for _, p := range candidates {
		for _, k := range keys {
			if p.ID == k {
				hits = append(hits, p)
				break
			}
		}
	}
	return hits
}
