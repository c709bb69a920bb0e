// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package status

import (
	"errors"
	"testing"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

func init() {
	fixed := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
}

func newPaper(s types.Status) types.Paper {
	return types.Paper{
		ID:     "p1",
		Title:  "Efficient Irrigation Scheduling",
		Status: s,
		History: []types.StatusEvent{
			{Status: s, OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Actor: "test"},
		},
	}
}

var allStatuses = []types.Status{
	types.StatusDiscovered,
	types.StatusScreenedIn,
	types.StatusScreenedOut,
	types.StatusAwaitingArtifact,
	types.StatusArtifactAcquired,
	types.StatusExtracted,
	types.StatusSynthesized,
	types.StatusValidated,
	types.StatusRejected,
	types.StatusArchived,
}

// legalEdges is the expected graph, kept independent of the production
// table so the test fails if either drifts.
var legalEdges = map[types.Status][]types.Status{
	types.StatusDiscovered:       {types.StatusScreenedIn, types.StatusScreenedOut},
	types.StatusScreenedIn:       {types.StatusAwaitingArtifact},
	types.StatusAwaitingArtifact: {types.StatusArtifactAcquired},
	types.StatusArtifactAcquired: {types.StatusExtracted},
	types.StatusExtracted:        {types.StatusSynthesized, types.StatusRejected},
	types.StatusSynthesized:      {types.StatusValidated},
	types.StatusValidated:        {types.StatusArchived},
	types.StatusScreenedOut:      {},
	types.StatusRejected:         {},
	types.StatusArchived:         {},
}

func isLegal(from, to types.Status) bool {
	for _, t := range legalEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TestTransitionGraphFullCoverage tries every (from, to) pair and checks
// the outcome against the expected graph.
func TestTransitionGraphFullCoverage(t *testing.T) {
	reason := &Reason{Code: types.ExclIrrelevantTopic, Notes: "off-topic"}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			p := newPaper(from)
			got, err := Transition(p, to, reason, "test")

			switch {
			case from == to:
				if err != nil {
					t.Errorf("%s -> %s: idempotent no-op returned error %v", from, to, err)
				}
				if len(got.History) != len(p.History) {
					t.Errorf("%s -> %s: no-op grew history", from, to)
				}
			case isLegal(from, to):
				if err != nil {
					t.Errorf("%s -> %s: legal transition failed: %v", from, to, err)
					continue
				}
				if got.Status != to {
					t.Errorf("%s -> %s: status = %s", from, to, got.Status)
				}
				if len(got.History) != len(p.History)+1 {
					t.Errorf("%s -> %s: history length = %d, want %d", from, to, len(got.History), len(p.History)+1)
				}
			default:
				var ite *IllegalTransitionError
				if !errors.As(err, &ite) {
					t.Errorf("%s -> %s: error = %v, want IllegalTransitionError", from, to, err)
				}
			}
		}
	}
}

func TestTransitionReasonRequired(t *testing.T) {
	p := newPaper(types.StatusDiscovered)

	if _, err := Transition(p, types.StatusScreenedOut, nil, "screener"); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("screened_out without reason: error = %v, want ErrReasonRequired", err)
	}
	if _, err := Transition(p, types.StatusScreenedOut, &Reason{}, "screener"); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("screened_out with empty reason code: error = %v, want ErrReasonRequired", err)
	}

	got, err := Transition(p, types.StatusScreenedOut, &Reason{Code: types.ExclIrrelevantTopic, Notes: "off-topic"}, "screener")
	if err != nil {
		t.Fatal(err)
	}
	if got.ExclusionReason != types.ExclIrrelevantTopic || got.ExclusionNotes != "off-topic" {
		t.Errorf("exclusion metadata = (%s, %q)", got.ExclusionReason, got.ExclusionNotes)
	}
	if !got.Terminal() {
		t.Error("screened_out paper should be terminal")
	}

	// Terminal: only the idempotent no-op is accepted from here.
	for _, to := range allStatuses {
		again, err := Transition(got, to, &Reason{Code: types.ExclOther}, "screener")
		if to == types.StatusScreenedOut {
			if err != nil || len(again.History) != len(got.History) {
				t.Errorf("terminal no-op: err=%v historyGrew=%v", err, len(again.History) != len(got.History))
			}
			continue
		}
		if err == nil {
			t.Errorf("terminal paper accepted transition to %s", to)
		}
	}
}

func TestTransitionNoRegression(t *testing.T) {
	p := newPaper(types.StatusArtifactAcquired)
	_, err := Transition(p, types.StatusDiscovered, nil, "test")
	var ite *IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("regression accepted: %v", err)
	}
	if ite.From != types.StatusArtifactAcquired || ite.To != types.StatusDiscovered {
		t.Errorf("error edge = %s -> %s", ite.From, ite.To)
	}
}

// TestHistoryGrowth applies a legal chain with repeated deliveries and
// checks history length equals the number of distinct transitions.
func TestHistoryGrowth(t *testing.T) {
	p := newPaper(types.StatusDiscovered)
	chain := []types.Status{
		types.StatusScreenedIn,
		types.StatusScreenedIn, // duplicate delivery
		types.StatusAwaitingArtifact,
		types.StatusArtifactAcquired,
		types.StatusArtifactAcquired, // duplicate delivery
		types.StatusExtracted,
		types.StatusSynthesized,
		types.StatusValidated,
		types.StatusArchived,
	}
	distinct := 0
	for _, target := range chain {
		prev := p.Status
		next, err := Transition(p, target, nil, "test")
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
		if target != prev {
			distinct++
		}
		p = next
	}
	if len(p.History) != 1+distinct {
		t.Errorf("history length = %d, want %d", len(p.History), 1+distinct)
	}
	if p.History[len(p.History)-1].Status != p.Status {
		t.Error("last history entry does not match current status")
	}
}

// TestHistoryNotAliased checks the input paper's history is untouched by
// a transition on the returned copy.
func TestHistoryNotAliased(t *testing.T) {
	p := newPaper(types.StatusDiscovered)
	next, err := Transition(p, types.StatusScreenedIn, nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.History) != 1 {
		t.Fatalf("input history mutated: %d entries", len(p.History))
	}
	if &p.History[0] == &next.History[0] {
		t.Error("history backing array shared between input and output")
	}
}

// TestExclusionIffReason checks the invariant that exclusion metadata is
// present exactly on exclusion states along a realistic path.
func TestExclusionIffReason(t *testing.T) {
	p := newPaper(types.StatusDiscovered)
	for _, target := range []types.Status{
		types.StatusScreenedIn,
		types.StatusAwaitingArtifact,
		types.StatusArtifactAcquired,
		types.StatusExtracted,
	} {
		var err error
		p, err = Transition(p, target, nil, "test")
		if err != nil {
			t.Fatal(err)
		}
		if p.ExclusionReason != "" {
			t.Errorf("non-exclusion state %s carries exclusion reason", p.Status)
		}
	}

	p, err := Transition(p, types.StatusRejected, &Reason{Code: types.ExclInsufficientData, Notes: "tables missing"}, "reviewer")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Excluded() || p.ExclusionReason == "" {
		t.Errorf("rejected paper: excluded=%v reason=%q", p.Excluded(), p.ExclusionReason)
	}
}
