// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Default pagination for a fresh filter state.
const (
	DefaultPage = 1
)

// MinQueryRunes is the shortest trimmed query that is ever dispatched,
// whether as a search or as a chat question.
const MinQueryRunes = 3

// ErrQueryTooShort rejects a non-empty query shorter than MinQueryRunes.
var ErrQueryTooShort = errors.New("query too short: type at least 3 characters")

// QueryTooShort reports whether q, once trimmed, has fewer than
// MinQueryRunes runes. An empty query counts as too short.
func QueryTooShort(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) < MinQueryRunes
}

// SearchFilters is the UI's filter state. Query is the single canonical
// free-text field; the legacy "q" name exists only in the wire codecs.
type SearchFilters struct {
	Query    string        `json:"query,omitempty" yaml:"query,omitempty"`
	YearFrom *int          `json:"yearFrom,omitempty" yaml:"year_from,omitempty"`
	YearTo   *int          `json:"yearTo,omitempty" yaml:"year_to,omitempty"`
	Mission  string        `json:"mission,omitempty" yaml:"mission,omitempty"`
	Species  []string      `json:"species,omitempty" yaml:"species,omitempty"`
	Outcome  []OutcomeType `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Page     int           `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize int           `json:"pageSize,omitempty" yaml:"page_size,omitempty"`
}

// DefaultSearchFilters returns page 1 with the default page size.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{Page: DefaultPage, PageSize: DefaultPageSize}
}

// TrimmedQuery returns Query with surrounding whitespace removed.
func (f SearchFilters) TrimmedQuery() string { return strings.TrimSpace(f.Query) }

// Pagination returns the effective page and page size, substituting
// defaults for non-positive values.
func (f SearchFilters) Pagination() (page, pageSize int) {
	page, pageSize = f.Page, f.PageSize
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

type searchFiltersWire struct {
	Query    string        `json:"query,omitempty"`
	Q        string        `json:"q,omitempty"`
	YearFrom *int          `json:"yearFrom,omitempty"`
	YearTo   *int          `json:"yearTo,omitempty"`
	Mission  string        `json:"mission,omitempty"`
	Species  []string      `json:"species,omitempty"`
	Outcome  []OutcomeType `json:"outcome,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"pageSize,omitempty"`
}

// MarshalJSON writes the query under both "query" and "q" so either kind
// of reader finds it.
func (f SearchFilters) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchFiltersWire{
		Query:    f.Query,
		Q:        f.Query,
		YearFrom: f.YearFrom,
		YearTo:   f.YearTo,
		Mission:  f.Mission,
		Species:  f.Species,
		Outcome:  f.Outcome,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

// UnmarshalJSON accepts either "query" or "q"; "query" wins when both are set.
func (f *SearchFilters) UnmarshalJSON(data []byte) error {
	var w searchFiltersWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q := w.Query
	if q == "" {
		q = w.Q
	}
	*f = SearchFilters{
		Query:    q,
		YearFrom: w.YearFrom,
		YearTo:   w.YearTo,
		Mission:  w.Mission,
		Species:  w.Species,
		Outcome:  w.Outcome,
		Page:     w.Page,
		PageSize: w.PageSize,
	}
	return nil
}

// FiltersFromValues decodes a URL query string into SearchFilters. It reads
// q (or query), yearFrom, yearTo, mission, repeated species and outcome,
// page and pageSize. Unparseable numbers are ignored. A missing pageSize
// stays zero so the searcher's configured size applies.
func FiltersFromValues(v url.Values) SearchFilters {
	f := SearchFilters{Page: DefaultPage}
	f.Query = v.Get("q")
	if f.Query == "" {
		f.Query = v.Get("query")
	}
	f.YearFrom = parseIntPtr(v.Get("yearFrom"))
	f.YearTo = parseIntPtr(v.Get("yearTo"))
	f.Mission = v.Get("mission")
	for _, s := range v["species"] {
		if s != "" {
			f.Species = append(f.Species, s)
		}
	}
	for _, o := range v["outcome"] {
		if o != "" {
			f.Outcome = append(f.Outcome, OutcomeType(o))
		}
	}
	if p := parseIntPtr(v.Get("page")); p != nil && *p > 0 {
		f.Page = *p
	}
	if ps := parseIntPtr(v.Get("pageSize")); ps != nil && *ps > 0 {
		f.PageSize = *ps
	}
	return f
}

// Values encodes f as a URL query string. The page is written only when
// it is past the first one, and the page size only when it differs from
// the default.
func (f SearchFilters) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.YearFrom != nil {
		v.Set("yearFrom", strconv.Itoa(*f.YearFrom))
	}
	if f.YearTo != nil {
		v.Set("yearTo", strconv.Itoa(*f.YearTo))
	}
	if f.Mission != "" {
		v.Set("mission", f.Mission)
	}
	for _, s := range f.Species {
		v.Add("species", s)
	}
	for _, o := range f.Outcome {
		v.Add("outcome", string(o))
	}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 && f.PageSize != DefaultPageSize {
		v.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return v
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
