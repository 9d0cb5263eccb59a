// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bioexplorer/internal/fixtures"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	study := types.Study{
		ID:             "OSD-001",
		Title:          "Transcriptional Response of Human Cells to Microgravity",
		Authors:        []string{"Smith, J."},
		Year:           types.IntPtr(2019),
		DOI:            types.StringPtr("10.1038/x"),
		Species:        types.SpeciesSet{"Homo sapiens"},
		Outcomes:       []types.OutcomeType{types.OutcomePositive},
		Keywords:       []string{"microgravity"},
		RelevanceScore: 0.95,
	}
	sum, err := s.Save(ctx, "microgravity", []types.Study{study, {Title: "no id"}})
	require.NoError(t, err)
	assert.Equal(t, SaveSummary{Inserted: 1, Skipped: 1}, sum)

	got, err := s.Get(ctx, "OSD-001")
	require.NoError(t, err)
	assert.Equal(t, study, got)

	study.Title = "Retitled"
	study.Year = nil
	study.DOI = nil
	sum, err = s.Save(ctx, "again", []types.Study{study})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)

	got, err = s.Get(ctx, "OSD-001")
	require.NoError(t, err)
	assert.Equal(t, "Retitled", got.Title)
	assert.Nil(t, got.Year)
	assert.Nil(t, got.DOI)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	corpus := fixtures.MustLoad()
	_, err := s.Save(ctx, "", corpus.Studies)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts SearchOptions
		want []string
	}{
		{"full text", SearchOptions{Query: "radiation"}, []string{"OSD-201"}},
		{"species filter", SearchOptions{Species: []string{"Mus musculus"}}, []string{"OSD-123"}},
		{"year range", SearchOptions{YearFrom: 2023}, []string{"OSD-302", "OSD-634"}},
		{"no match", SearchOptions{Query: "zebrafish"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, st := range got {
				ids = append(ids, st.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := s.Search(ctx, SearchOptions{MaxResults: 3})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearch_FTSFollowsUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "", []types.Study{{ID: "a", Title: "hindlimb unloading"}})
	require.NoError(t, err)
	_, err = s.Save(ctx, "", []types.Study{{ID: "a", Title: "cardiac remodeling"}})
	require.NoError(t, err)

	got, err := s.Search(ctx, SearchOptions{Query: "hindlimb"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(ctx, SearchOptions{Query: "cardiac"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestOpen_Reopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "", []types.Study{{ID: "x", Title: "t"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
