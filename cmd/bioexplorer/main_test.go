// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bioexplorer/internal/chat"
	"github.com/pdiddy/bioexplorer/internal/fixtures"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/internal/secrets"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

func filterCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	cmd.Flags().Int("page", types.DefaultPage, "")
	cmd.Flags().Int("page-size", 0, "")
	return cmd
}

func TestFiltersFromFlags(t *testing.T) {
	cmd := filterCmd()
	require.NoError(t, cmd.Flags().Set("year-from", "2015"))
	require.NoError(t, cmd.Flags().Set("species", "Mus musculus"))
	require.NoError(t, cmd.Flags().Set("outcome", "Positive,mixed"))
	require.NoError(t, cmd.Flags().Set("page", "3"))

	f, err := filtersFromFlags(cmd, []string{"bone", "loss"})
	require.NoError(t, err)

	assert.Equal(t, "bone loss", f.Query)
	require.NotNil(t, f.YearFrom)
	assert.Equal(t, 2015, *f.YearFrom)
	assert.Nil(t, f.YearTo, "zero year stays unset")
	assert.Equal(t, []string{"Mus musculus"}, f.Species)
	assert.Equal(t, []types.OutcomeType{types.OutcomePositive, types.OutcomeMixed}, f.Outcome)
	assert.Equal(t, 3, f.Page)
	assert.Zero(t, f.PageSize, "unset page size defers to search.page_size")

	require.NoError(t, cmd.Flags().Set("page-size", "30"))
	f, err = filtersFromFlags(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, f.PageSize)
}

func TestFiltersFromFlags_InvalidOutcome(t *testing.T) {
	cmd := filterCmd()
	require.NoError(t, cmd.Flags().Set("outcome", "great"))

	_, err := filtersFromFlags(cmd, nil)
	assert.ErrorContains(t, err, `"great"`)
}

func TestExplorerConfig(t *testing.T) {
	saved := loadedSecrets
	t.Cleanup(func() { loadedSecrets = saved })
	loadedSecrets = secrets.Set{secrets.ExplorerAPIKey: "from-secrets"}

	v := viper.New()
	setDefaults(v)
	v.Set("mock.enabled", true)
	v.Set("http.timeout", "5s")
	v.Set("search.page_size", 20)

	cfg := explorerConfig(v)
	def := types.DefaultExplorerConfig()

	assert.True(t, cfg.Mock.Enabled)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, def.HTTP.BaseURL, cfg.HTTP.BaseURL)
	assert.Equal(t, def.Chat.TopK, cfg.Chat.TopK)
	assert.Equal(t, def.Archive.Path, cfg.Archive.Path)
	assert.Equal(t, "from-secrets", cfg.HTTP.APIKey)

	v.Set("http.api_key", "configured")
	assert.Equal(t, "configured", explorerConfig(v).HTTP.APIKey)
}

func TestNewBackend_Mock(t *testing.T) {
	cfg := types.DefaultExplorerConfig()
	cfg.Mock.Enabled = true

	b, err := newBackend(cfg)
	require.NoError(t, err)
	assert.IsType(t, &fixtures.Backend{}, b)
}

func TestAskLoop(t *testing.T) {
	backend, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	sess := chat.NewSession(backend)

	in := strings.NewReader("ab\n\ncosmic radiation damage\n/clear\nbone density in microgravity\n/quit\nnever asked\n")
	var out bytes.Buffer
	require.NoError(t, askLoop(context.Background(), sess, in, &out))

	text := out.String()
	assert.Contains(t, text, "Please ask a longer question.")
	assert.Contains(t, text, "History cleared.")
	assert.Contains(t, text, "Sources")
	assert.Equal(t, 1, sess.History.Len(), "only the turn after /clear remains")
}

func TestAskLoop_SourcesRepeatsLastCitations(t *testing.T) {
	backend, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	sess := chat.NewSession(backend)

	in := strings.NewReader("/sources\ncosmic radiation damage\n/sources\n")
	var out bytes.Buffer
	require.NoError(t, askLoop(context.Background(), sess, in, &out))

	text := out.String()
	assert.Contains(t, text, "Nothing asked yet.")
	assert.Equal(t, 2, strings.Count(text, "[1] OSD-201"), "listed with the answer and again on /sources")
	assert.Equal(t, 1, sess.History.Len())
}

func TestAskLoop_EOF(t *testing.T) {
	backend, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	sess := chat.NewSession(backend)

	var out bytes.Buffer
	require.NoError(t, askLoop(context.Background(), sess, strings.NewReader(""), &out))
	assert.Equal(t, 0, sess.History.Len())
}

func exportTestCmd(t *testing.T, from string, rerun bool) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "export"}
	addFilterFlags(cmd)
	cmd.Flags().Int("page", types.DefaultPage, "")
	cmd.Flags().Int("page-size", 0, "")
	cmd.Flags().String("from", "", "")
	cmd.Flags().Bool("rerun", false, "")
	require.NoError(t, cmd.Flags().Set("from", from))
	if rerun {
		require.NoError(t, cmd.Flags().Set("rerun", "true"))
	}
	cmd.SetContext(context.Background())
	return cmd
}

func TestExportStudies_FromQueryFile(t *testing.T) {
	saved := viper.Get("mock.enabled")
	t.Cleanup(func() { viper.Set("mock.enabled", saved) })
	viper.Set("mock.enabled", true)

	path := filepath.Join(t.TempDir(), "mice.yaml")
	qf := search.NewQueryFile(
		types.SearchFilters{Species: []string{"Mus musculus"}},
		&types.SearchResponse{Studies: []types.Study{{ID: "stale", Title: "Saved earlier"}}},
	)
	require.NoError(t, search.WriteQueryFile(path, qf))

	studies, err := exportStudies(exportTestCmd(t, path, false), nil)
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, "stale", studies[0].ID)

	studies, err = exportStudies(exportTestCmd(t, path, true), nil)
	require.NoError(t, err)
	require.NotEmpty(t, studies)
	for _, st := range studies {
		assert.NotEqual(t, "stale", st.ID)
		assert.Contains(t, st.Keywords, "Mus musculus")
	}
}

func TestDiagnostics_MockModeRefused(t *testing.T) {
	saved := viper.Get("mock.enabled")
	t.Cleanup(func() { viper.Set("mock.enabled", saved) })
	viper.Set("mock.enabled", true)

	_, err := diagnostics()
	assert.ErrorIs(t, err, errNoDiagnostics)

	viper.Set("mock.enabled", false)
	d, err := diagnostics()
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestFormatDiagnostics(t *testing.T) {
	var out bytes.Buffer
	formatEmbedding(&types.EmbeddingResponse{
		Embedding: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
		Dimension: 9,
	}, &out)
	assert.Contains(t, out.String(), "Dimension: 9")
	assert.Contains(t, out.String(), "0.8000, ...]")
	assert.NotContains(t, out.String(), "0.9000")

	out.Reset()
	score := 0.81
	formatRetrieval(&types.RetrievalResponse{
		Query:      "radiation",
		Chunks:     []types.Citation{{SourceID: "OSD-4", Section: "Results", Snippet: "DNA repair", FinalScore: &score}},
		TotalFound: 17,
	}, &out)
	assert.Contains(t, out.String(), `1 chunks of 17 found for "radiation"`)
	assert.Contains(t, out.String(), "[1] OSD-4  Results  score 0.81")
	assert.Contains(t, out.String(), "DNA repair")
}
