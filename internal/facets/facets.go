// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facets translates the UI filter vocabulary into the retrieval
// oracle's filter vocabulary.
package facets

import (
	"time"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// EarliestYear is the lower bound substituted when only yearTo is given.
const EarliestYear = 1960

// Mapper converts SearchFilters to RAGFilters. Now supplies the current
// year for open-ended ranges; nil means time.Now.
type Mapper struct {
	Now func() time.Time
}

// Map converts filters using the wall clock.
func Map(filters types.SearchFilters) types.RAGFilters {
	return Mapper{}.Map(filters)
}

// Map converts filters. Only set facets appear in the result, so an
// unfiltered state yields an empty RAGFilters.
func (m Mapper) Map(filters types.SearchFilters) types.RAGFilters {
	var out types.RAGFilters

	if len(filters.Species) > 0 {
		out.Organism = append([]string(nil), filters.Species...)
	}
	if filters.Mission != "" {
		out.MissionEnv = []string{filters.Mission}
	}

	from, hasFrom := yearValue(filters.YearFrom)
	to, hasTo := yearValue(filters.YearTo)
	if hasFrom || hasTo {
		if !hasFrom {
			from = EarliestYear
		}
		if !hasTo {
			to = m.now().Year()
		}
		out.YearRange = &[2]int{from, to}
	}

	if len(filters.Outcome) > 0 {
		out.Exposure = UnverifiedOutcomeExposure(filters.Outcome)
	}
	return out
}

// UnverifiedOutcomeExposure places outcome tags in the exposure slot.
// Outcomes describe results and exposures describe conditions, so the
// backend may match nothing; keep this mapping isolated until the
// backend vocabulary confirms it.
func UnverifiedOutcomeExposure(outcomes []types.OutcomeType) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, string(o))
	}
	return out
}

// HasStructured reports whether any facet other than the query is set.
func HasStructured(filters types.SearchFilters) bool {
	_, hasFrom := yearValue(filters.YearFrom)
	_, hasTo := yearValue(filters.YearTo)
	return len(filters.Species) > 0 || filters.Mission != "" ||
		len(filters.Outcome) > 0 || hasFrom || hasTo
}

// yearValue treats nil and non-positive years as unset.
func yearValue(y *int) (int, bool) {
	if y == nil || *y <= 0 {
		return 0, false
	}
	return *y, true
}

func (m Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
