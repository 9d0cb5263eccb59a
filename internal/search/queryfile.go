// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// QueryFile is a saved search: the filters that produced it and the page of
// studies it returned. Exports and the archive read it back without
// querying the backend again.
type QueryFile struct {
	Filters QueryParams   `yaml:"filters"`
	Answer  string        `yaml:"answer,omitempty"`
	Studies []types.Study `yaml:"studies"`
	Summary QuerySummary  `yaml:"summary"`
}

// QueryParams stores search filters in a serializable form.
type QueryParams struct {
	Query    string              `yaml:"query,omitempty"`
	YearFrom *int                `yaml:"year_from,omitempty"`
	YearTo   *int                `yaml:"year_to,omitempty"`
	Mission  string              `yaml:"mission,omitempty"`
	Species  []string            `yaml:"species,omitempty"`
	Outcome  []types.OutcomeType `yaml:"outcome,omitempty"`
	Page     int                 `yaml:"page,omitempty"`
	PageSize int                 `yaml:"page_size,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int              `yaml:"total"`
	Mode      types.SearchMode `yaml:"mode"`
	SessionID string           `yaml:"session_id,omitempty"`
	Timestamp time.Time        `yaml:"timestamp"`
}

// NewQueryFile captures filters and the response they produced.
func NewQueryFile(filters types.SearchFilters, resp *types.SearchResponse) QueryFile {
	qf := QueryFile{
		Filters: QueryParams{
			Query:    filters.TrimmedQuery(),
			YearFrom: filters.YearFrom,
			YearTo:   filters.YearTo,
			Mission:  filters.Mission,
			Species:  filters.Species,
			Outcome:  filters.Outcome,
			Page:     filters.Page,
			PageSize: filters.PageSize,
		},
		Studies: []types.Study{},
		Summary: QuerySummary{Timestamp: time.Now().UTC()},
	}
	if resp != nil {
		qf.Answer = resp.Answer
		qf.Studies = resp.Studies
		qf.Summary.Total = resp.Total
		qf.Summary.Mode = resp.Mode
		qf.Summary.SessionID = resp.SessionID
	}
	return qf
}

// WriteQueryFile saves qf as YAML at path.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToFilters converts stored QueryParams back into search filters.
func (p QueryParams) ToFilters() types.SearchFilters {
	return types.SearchFilters{
		Query:    p.Query,
		YearFrom: p.YearFrom,
		YearTo:   p.YearTo,
		Mission:  p.Mission,
		Species:  p.Species,
		Outcome:  p.Outcome,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}
