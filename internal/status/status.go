// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package status enforces the paper lifecycle state machine. The
// transition graph is encoded as an explicit table; Transition is the
// only way a paper's status, exclusion fields, and history change.
package status

import (
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// IllegalTransitionError reports a requested status change that is not
// present in the transition graph. It is never coerced to a "closest
// legal" state.
type IllegalTransitionError struct {
	From types.Status
	To   types.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// ErrReasonRequired reports a transition into an exclusion state that
// was requested without an exclusion reason.
var ErrReasonRequired = errors.New("exclusion reason required")

// Reason carries structured exclusion metadata for transitions into
// screened_out or rejected.
type Reason struct {
	Code  types.ExclusionReason
	Notes string
}

// rule holds the per-edge constraints of the transition table.
type rule struct {
	reasonRequired bool
}

// transitions is the full graph: transitions[from][to] exists iff the
// edge is legal. screened_out and rejected are terminal exclusion
// states; archived is the terminal success state.
var transitions = map[types.Status]map[types.Status]rule{
	types.StatusDiscovered: {
		types.StatusScreenedIn:  {},
		types.StatusScreenedOut: {reasonRequired: true},
	},
	types.StatusScreenedIn: {
		types.StatusAwaitingArtifact: {},
	},
	types.StatusAwaitingArtifact: {
		types.StatusArtifactAcquired: {},
	},
	types.StatusArtifactAcquired: {
		types.StatusExtracted: {},
	},
	types.StatusExtracted: {
		types.StatusSynthesized: {},
		types.StatusRejected:    {reasonRequired: true},
	},
	types.StatusSynthesized: {
		types.StatusValidated: {},
	},
	types.StatusValidated: {
		types.StatusArchived: {},
	},
	types.StatusScreenedOut: {},
	types.StatusRejected:    {},
	types.StatusArchived:    {},
}

// now is stubbed in tests.
var now = time.Now

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to types.Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// Next returns the legal target statuses from the given state.
func Next(from types.Status) []types.Status {
	var out []types.Status
	for to := range transitions[from] {
		out = append(out, to)
	}
	return out
}

// Transition returns a copy of p advanced to target, with exactly one
// entry appended to its history. Requesting the current status is an
// idempotent no-op: the paper comes back unchanged and history does not
// grow, which tolerates at-least-once delivery from upstream callers.
//
// A transition into screened_out or rejected requires a non-nil reason
// with a code; the reason is recorded on the paper. Any edge not in the
// graph fails with *IllegalTransitionError.
func Transition(p types.Paper, target types.Status, reason *Reason, actor string) (types.Paper, error) {
	if target == p.Status {
		return p, nil
	}

	r, ok := transitions[p.Status][target]
	if !ok {
		return p, &IllegalTransitionError{From: p.Status, To: target}
	}
	if r.reasonRequired && (reason == nil || reason.Code == "") {
		return p, fmt.Errorf("transition %s -> %s: %w", p.Status, target, ErrReasonRequired)
	}

	updated := p
	updated.Status = target
	if r.reasonRequired {
		updated.ExclusionReason = reason.Code
		updated.ExclusionNotes = reason.Notes
	}

	// Copy, never share, the history backing array: p stays usable.
	updated.History = make([]types.StatusEvent, len(p.History), len(p.History)+1)
	copy(updated.History, p.History)
	updated.History = append(updated.History, types.StatusEvent{
		Status:     target,
		OccurredAt: now().UTC(),
		Actor:      actor,
	})

	return updated, nil
}
