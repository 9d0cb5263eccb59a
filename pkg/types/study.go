// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the explorer core:
// the canonical Study record, the retrieval oracle's wire shapes, search
// filters, and configuration.
package types

import (
	"encoding/json"
	"fmt"
)

// OutcomeType is an enumerated study outcome tag.
type OutcomeType string

const (
	OutcomePositive     OutcomeType = "positive"
	OutcomeNegative     OutcomeType = "negative"
	OutcomeMixed        OutcomeType = "mixed"
	OutcomeInconclusive OutcomeType = "inconclusive"
)

// Valid reports whether o is one of the four known outcome tags.
func (o OutcomeType) Valid() bool {
	switch o {
	case OutcomePositive, OutcomeNegative, OutcomeMixed, OutcomeInconclusive:
		return true
	}
	return false
}

// SpeciesSet holds one or more organism names. On the wire a single
// species may arrive as a bare string; it always leaves as an array.
type SpeciesSet []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (s *SpeciesSet) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = SpeciesSet{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("species must be a string or an array of strings: %w", err)
	}
	*s = many
	return nil
}

// Study is the canonical normalized record every backend shape is mapped to.
type Study struct {
	// ID is the stable identity: the source record's natural key, or a
	// synthesized "study-<timestamp>-<ordinal>" when the source has none.
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	// Authors is never nil once a study has been normalized.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is nil when unknown; nil and zero are different things.
	Year *int `json:"year" yaml:"year"`

	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Summary is at most SummaryMaxRunes runes long.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	Mission  string        `json:"mission,omitempty" yaml:"mission,omitempty"`
	Species  SpeciesSet    `json:"species,omitempty" yaml:"species,omitempty"`
	Outcomes []OutcomeType `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Keywords []string      `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// DOI is an explicit null once a lookup has been attempted and failed.
	DOI *string `json:"doi" yaml:"doi"`

	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// RelevanceScore is in [0,1].
	RelevanceScore float64 `json:"relevanceScore" yaml:"relevance_score"`

	// RelevanceReason is the oracle's explanation of the score, when given.
	RelevanceReason string `json:"relevanceReason,omitempty" yaml:"relevance_reason,omitempty"`

	// Citations is a usage-count metric; this system does not track it.
	Citations int `json:"citations" yaml:"citations"`
}

// SummaryMaxRunes bounds Study.Summary when it is derived from the abstract.
const SummaryMaxRunes = 300

// HasYear reports whether the study carries a publication year.
func (s Study) HasYear() bool { return s.Year != nil }

// DOIValue returns the DOI or "" when absent.
func (s Study) DOIValue() string {
	if s.DOI == nil {
		return ""
	}
	return *s.DOI
}

// DetailSource records how a StudyDetail was obtained.
type DetailSource string

const (
	DetailFromCache         DetailSource = "cache"
	DetailFromReconstructed DetailSource = "reconstructed"
	DetailFromFixture       DetailSource = "fixture"
)

// StudyDetail extends Study with related studies and methods text.
type StudyDetail struct {
	Study `yaml:",inline"`

	Related []Study `json:"related" yaml:"related"`
	Methods string  `json:"methods,omitempty" yaml:"methods,omitempty"`

	// Source distinguishes a real record from fixture placeholder data.
	Source DetailSource `json:"source" yaml:"source"`
}

// SearchMode names the retrieval strategy that produced a SearchResponse.
type SearchMode string

const (
	ModeSemantic   SearchMode = "semantic"
	ModeStructured SearchMode = "structured"
	ModeEmpty      SearchMode = "empty"
)

// SearchResponse is the stable frontend contract for one page of results.
type SearchResponse struct {
	Studies    []Study `json:"studies" yaml:"studies"`
	Total      int     `json:"total" yaml:"total"`
	Page       int     `json:"page" yaml:"page"`
	PageSize   int     `json:"pageSize" yaml:"page_size"`
	TotalPages int     `json:"totalPages" yaml:"total_pages"`
	HasMore    bool    `json:"hasMore" yaml:"has_more"`

	Mode SearchMode `json:"mode" yaml:"mode"`

	// Answer and Metrics are set on the semantic path only.
	Answer    string           `json:"answer,omitempty" yaml:"answer,omitempty"`
	Metrics   *ResponseMetrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	SessionID string           `json:"sessionId,omitempty" yaml:"session_id,omitempty"`
}

// IsEmpty reports whether the response holds no studies.
func (r SearchResponse) IsEmpty() bool { return len(r.Studies) == 0 }

// KpiData is the dashboard KPI contract.
type KpiData struct {
	TotalStudies  int    `json:"totalStudies" yaml:"total_studies"`
	YearsCovered  string `json:"yearsCovered" yaml:"years_covered"`
	TotalMissions int    `json:"totalMissions" yaml:"total_missions"`
	TotalSpecies  int    `json:"totalSpecies" yaml:"total_species"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
