// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "review-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RegistryConfig holds settings for the paper registry database.
type RegistryConfig struct {
	// Path is the SQLite database file (default "data/review.db").
	Path string `json:"path" yaml:"path"`
}

// SearchConfig holds settings for the discovery stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of records requested per backend
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// YearMin and YearMax bound publication years; zero means unbounded.
	YearMin int `json:"year_min,omitempty" yaml:"year_min,omitempty"`
	YearMax int `json:"year_max,omitempty" yaml:"year_max,omitempty"`

	// RequestsPerSecond caps the call rate per backend (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// CacheTTL is how long raw API responses stay valid in the lookup
	// cache (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CrossrefEmail is sent as the mailto parameter for polite pool access.
	CrossrefEmail string `json:"crossref_email,omitempty" yaml:"crossref_email,omitempty"`
}

// DedupConfig holds tunables for the deduplication engine.
type DedupConfig struct {
	// TitleThreshold is the minimum normalized-title similarity for the
	// fuzzy tier (default 0.90).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold"`

	// AuthorOverlap is the minimum author-surname overlap ratio for the
	// fuzzy tier (default 0.50).
	AuthorOverlap float64 `json:"author_overlap" yaml:"author_overlap"`
}

// AcquisitionConfig holds settings for artifact ingestion.
type AcquisitionConfig struct {
	// ArtifactDir is the directory scanned for externally supplied
	// files (default "data/artifacts").
	ArtifactDir string `json:"artifact_dir" yaml:"artifact_dir"`

	// ManifestPath is where the acquisition manifest CSV is written
	// (default "data/TO_ACQUIRE.csv").
	ManifestPath string `json:"manifest_path" yaml:"manifest_path"`
}

// ExtractionConfig holds settings for the text extraction stage.
type ExtractionConfig struct {
	// TextDir is the directory extracted plain text is written to
	// (default "data/text").
	TextDir string `json:"text_dir" yaml:"text_dir"`
}

// SynthesisConfig holds settings for the synthesis stage.
type SynthesisConfig struct {
	// Model is the generation model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// TextDir is where extracted text is read from.
	TextDir string `json:"text_dir" yaml:"text_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Registry    RegistryConfig    `json:"registry" yaml:"registry"`
	Search      SearchConfig      `json:"search" yaml:"search"`
	Dedup       DedupConfig       `json:"dedup" yaml:"dedup"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Extraction  ExtractionConfig  `json:"extraction" yaml:"extraction"`
	Synthesis   SynthesisConfig   `json:"synthesis" yaml:"synthesis"`
}
