// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

func fixedMapper() Mapper {
	return Mapper{Now: func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }}
}

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		filters types.SearchFilters
		want    types.RAGFilters
	}{
		{
			name:    "no facets yields empty filters",
			filters: types.SearchFilters{Query: "bone"},
			want:    types.RAGFilters{},
		},
		{
			name:    "species become organism verbatim",
			filters: types.SearchFilters{Species: []string{"Mus musculus", "Homo sapiens"}},
			want:    types.RAGFilters{Organism: []string{"Mus musculus", "Homo sapiens"}},
		},
		{
			name:    "mission becomes single-element mission_env",
			filters: types.SearchFilters{Mission: "ISS"},
			want:    types.RAGFilters{MissionEnv: []string{"ISS"}},
		},
		{
			name:    "yearFrom only closes at current year",
			filters: types.SearchFilters{YearFrom: types.IntPtr(1990)},
			want:    types.RAGFilters{YearRange: &[2]int{1990, 2025}},
		},
		{
			name:    "yearTo only opens at 1960",
			filters: types.SearchFilters{YearTo: types.IntPtr(2010)},
			want:    types.RAGFilters{YearRange: &[2]int{1960, 2010}},
		},
		{
			name:    "both years",
			filters: types.SearchFilters{YearFrom: types.IntPtr(2000), YearTo: types.IntPtr(2005)},
			want:    types.RAGFilters{YearRange: &[2]int{2000, 2005}},
		},
		{
			name:    "outcomes land in exposure",
			filters: types.SearchFilters{Outcome: []types.OutcomeType{types.OutcomePositive, types.OutcomeMixed}},
			want:    types.RAGFilters{Exposure: []string{"positive", "mixed"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixedMapper().Map(tt.filters)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapEmptyIsOmittable(t *testing.T) {
	assert.True(t, fixedMapper().Map(types.DefaultSearchFilters()).IsEmpty())
}

func TestMapDoesNotAliasInput(t *testing.T) {
	species := []string{"Mus musculus"}
	got := fixedMapper().Map(types.SearchFilters{Species: species})
	got.Organism[0] = "changed"
	assert.Equal(t, "Mus musculus", species[0])
}

func TestHasStructured(t *testing.T) {
	assert.False(t, HasStructured(types.SearchFilters{Query: "x", Page: 2, PageSize: 12}))
	assert.False(t, HasStructured(types.SearchFilters{YearFrom: types.IntPtr(0)}))
	assert.True(t, HasStructured(types.SearchFilters{Mission: "ISS"}))
	assert.True(t, HasStructured(types.SearchFilters{YearTo: types.IntPtr(2001)}))
	assert.True(t, HasStructured(types.SearchFilters{Outcome: []types.OutcomeType{types.OutcomeNegative}}))
}
