// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Status is the processing state of a paper in the review pipeline.
// Legal transitions between statuses are enforced by internal/status;
// nothing else may change a paper's status.
type Status string

const (
	// Identification and abstract screening.
	StatusDiscovered  Status = "discovered"
	StatusScreenedIn  Status = "screened_in"
	StatusScreenedOut Status = "screened_out"

	// Full-text acquisition (human-assisted).
	StatusAwaitingArtifact Status = "awaiting_artifact"
	StatusArtifactAcquired Status = "artifact_acquired"

	// Full-text analysis.
	StatusExtracted   Status = "extracted"
	StatusSynthesized Status = "synthesized"

	// Quality control and final storage.
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
	StatusArchived  Status = "archived"
)

// ExclusionReason is a structured, PRISMA-style justification recorded
// when a paper is removed from the pipeline.
type ExclusionReason string

const (
	// Abstract screening exclusions.
	ExclIrrelevantTopic   ExclusionReason = "irrelevant_topic"
	ExclWrongPopulation   ExclusionReason = "wrong_population"
	ExclWrongIntervention ExclusionReason = "wrong_intervention"
	ExclWrongStudyType    ExclusionReason = "wrong_study_type"
	ExclNotPeerReviewed   ExclusionReason = "not_peer_reviewed"
	ExclWrongLanguage     ExclusionReason = "wrong_language"
	ExclDuplicate         ExclusionReason = "duplicate"

	// Full-text exclusions.
	ExclInsufficientData ExclusionReason = "insufficient_data"
	ExclPoorMethodology  ExclusionReason = "poor_methodology"
	ExclCannotAccess     ExclusionReason = "cannot_access_fulltext"
	ExclRetracted        ExclusionReason = "retracted"

	ExclOther ExclusionReason = "other"
)

// StatusEvent is one entry in a paper's append-only status history.
type StatusEvent struct {
	Status     Status    `json:"status" yaml:"status"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
	Actor      string    `json:"actor" yaml:"actor"`
}

// Discrepancy records a scalar field disagreement encountered while
// merging discovery records. The merge keeps the value from the
// earliest insertion; the dropped value is preserved here for audit.
type Discrepancy struct {
	Field   string `json:"field" yaml:"field"`
	Kept    string `json:"kept" yaml:"kept"`
	Dropped string `json:"dropped" yaml:"dropped"`
	Source  string `json:"source" yaml:"source"`
}

// Paper is the central entity of the review pipeline: one row per
// distinct underlying publication.
type Paper struct {
	// ID is the stable internal identifier, assigned once at first
	// registry insertion and never reassigned.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title. Required.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year (0 when unknown).
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Abstract is the paper abstract, when a discovery source provided one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// ExternalIDs maps a source name ("doi", "semantic_scholar",
	// "crossref", "arxiv") to that source's native identifier. A paper
	// discovered from N sources holds N entries.
	ExternalIDs map[string]string `json:"external_ids" yaml:"external_ids"`

	// Status is the current pipeline state. Always equals the status of
	// the last History entry.
	Status Status `json:"status" yaml:"status"`

	// ExclusionReason and ExclusionNotes are set only while Status is an
	// exclusion state (screened_out, rejected).
	ExclusionReason ExclusionReason `json:"exclusion_reason,omitempty" yaml:"exclusion_reason,omitempty"`
	ExclusionNotes  string          `json:"exclusion_notes,omitempty" yaml:"exclusion_notes,omitempty"`

	// ArtifactPath is the local path to the acquired full-text file.
	// Set once when the paper reaches artifact_acquired; immutable after.
	ArtifactPath string `json:"artifact_path,omitempty" yaml:"artifact_path,omitempty"`

	// History is the append-only sequence of status events.
	History []StatusEvent `json:"history" yaml:"history"`

	// Discrepancies holds field disagreements recorded during merges.
	Discrepancies []Discrepancy `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Excluded reports whether the paper sits in an exclusion state.
func (p *Paper) Excluded() bool {
	return p.Status == StatusScreenedOut || p.Status == StatusRejected
}

// Terminal reports whether the paper has left the pipeline for good.
func (p *Paper) Terminal() bool {
	return p.Excluded() || p.Status == StatusArchived
}

// RawRecord is one raw discovery result as returned by a search
// collaborator, before deduplication.
type RawRecord struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue    string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Source names the API the record came from; NativeID is that
	// source's own identifier for it.
	Source   string `json:"source" yaml:"source"`
	NativeID string `json:"native_id" yaml:"native_id"`

	// DOI is the record's DOI when the source supplied one, in whatever
	// form the source used (resolver URL, mixed case). Normalized before
	// comparison.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// Summary is the recorded output of the synthesis collaborator for one
// paper. The pipeline stores it verbatim; it does not judge content.
type Summary struct {
	PaperID     string    `json:"paper_id" yaml:"paper_id"`
	Content     string    `json:"content" yaml:"content"`
	Provider    string    `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model       string    `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
