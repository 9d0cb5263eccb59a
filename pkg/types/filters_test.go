// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFiltersJSONAcceptsEitherQueryName(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"query", `{"query":"bone loss"}`, "bone loss"},
		{"q", `{"q":"bone loss"}`, "bone loss"},
		{"query wins over q", `{"query":"a b c","q":"other"}`, "a b c"},
		{"neither", `{"mission":"ISS"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f SearchFilters
			require.NoError(t, json.Unmarshal([]byte(tt.body), &f))
			assert.Equal(t, tt.want, f.Query)
		})
	}
}

func TestSearchFiltersJSONRoundTrip(t *testing.T) {
	in := SearchFilters{
		Query:    "microgravity",
		YearFrom: IntPtr(1990),
		Mission:  "ISS",
		Species:  []string{"Mus musculus"},
		Outcome:  []OutcomeType{OutcomePositive},
		Page:     2,
		PageSize: 12,
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"q":"microgravity"`)
	assert.Contains(t, string(data), `"query":"microgravity"`)

	var out SearchFilters
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	require.NotNil(t, out.YearFrom)
	assert.Equal(t, 1990, *out.YearFrom)
	assert.Nil(t, out.YearTo)
}

func TestFiltersURLValuesRoundTrip(t *testing.T) {
	in := SearchFilters{
		Query:    "radiation",
		YearFrom: IntPtr(1990),
		Species:  []string{"Homo sapiens", "Mus musculus"},
		Outcome:  []OutcomeType{OutcomeMixed, OutcomeNegative},
		Page:     3,
		PageSize: 24,
	}
	v := in.Values()
	assert.Equal(t, "radiation", v.Get("q"))
	assert.Equal(t, []string{"Homo sapiens", "Mus musculus"}, v["species"])
	assert.Equal(t, "24", v.Get("pageSize"))

	out := FiltersFromValues(v)
	assert.Equal(t, in, out)
}

func TestFiltersValuesOmitsFirstPage(t *testing.T) {
	v := DefaultSearchFilters().Values()
	assert.Empty(t, v.Encode())
}

func TestFiltersFromValuesReadsQueryAlias(t *testing.T) {
	f := FiltersFromValues(url.Values{"query": {"plants"}, "page": {"bogus"}})
	assert.Equal(t, "plants", f.Query)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Zero(t, f.PageSize, "unset page size is resolved by the searcher")
	assert.Empty(t, DefaultSearchFilters().Values().Get("pageSize"))
}

func TestPaginationDefaults(t *testing.T) {
	page, size := SearchFilters{}.Pagination()
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, size)

	page, size = SearchFilters{Page: 4, PageSize: 20}.Pagination()
	assert.Equal(t, 4, page)
	assert.Equal(t, 20, size)
}

func TestSpeciesSetUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want SpeciesSet
	}{
		{"single string", `"Arabidopsis thaliana"`, SpeciesSet{"Arabidopsis thaliana"}},
		{"array", `["Homo sapiens","Mus musculus"]`, SpeciesSet{"Homo sapiens", "Mus musculus"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SpeciesSet
			require.NoError(t, json.Unmarshal([]byte(tt.body), &s))
			assert.Equal(t, tt.want, s)
		})
	}

	var s SpeciesSet
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}

func TestStudyDOIMarshalsExplicitNull(t *testing.T) {
	data, err := json.Marshal(Study{ID: "x", Authors: []string{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"doi":null`)
	assert.Contains(t, string(data), `"year":null`)
}

func TestRAGFiltersIsEmpty(t *testing.T) {
	assert.True(t, RAGFilters{}.IsEmpty())
	assert.False(t, RAGFilters{MissionEnv: []string{"ISS"}}.IsEmpty())
	assert.False(t, RAGFilters{YearRange: &[2]int{1990, 2000}}.IsEmpty())

	data, err := json.Marshal(ChatRequest{Query: "q", TopK: 8})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filters")
}

func TestQueryTooShortCountsRunes(t *testing.T) {
	for _, q := range []string{"", "  ", "ab", " ab ", "év"} {
		assert.True(t, QueryTooShort(q), "%q", q)
	}
	for _, q := range []string{"abc", " ISS ", "évé", "骨密度"} {
		assert.False(t, QueryTooShort(q), "%q", q)
	}
}
