// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bioexplorer/internal/fixtures"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

func fixtureServer(t *testing.T) (*Server, *metrics.Recorder) {
	t.Helper()
	b, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	rec := metrics.NewRecorder()
	s, err := New(b, types.DefaultExplorerConfig(), WithRecorder(rec))
	require.NoError(t, err)
	return s, rec
}

func do(t *testing.T, s *Server, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearch_Semantic(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/search?q=bone+density+in+microgravity", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.ModeSemantic, resp.Mode)
	assert.Len(t, resp.Studies, 2)
	assert.NotEmpty(t, rec.Header().Get(SessionHeader))
}

func TestSearch_ReportsEvidenceSpread(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/search?q=astronaut+sleep+cycles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply searchReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Len(t, reply.Studies, 5)
	require.NotNil(t, reply.Evidence)
	assert.Equal(t, 4, reply.Evidence.Distinct)
	assert.Equal(t, "Results", reply.Evidence.Dominant)
	assert.InDelta(t, 1.0/3, reply.Evidence.DominantShare, 1e-9)
	assert.True(t, reply.Evidence.Diverse)
}

func TestSearch_EmptyIsNotAnError(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/search", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"studies":[],"total":0,"page":1,"pageSize":12,"totalPages":0,"hasMore":false,"mode":"empty"}`, rec.Body.String())
}

func TestSearch_ConfiguredPageSize(t *testing.T) {
	b, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	cfg := types.DefaultExplorerConfig()
	cfg.Search.PageSize = 5
	s, err := New(b, cfg)
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/search", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.PageSize)

	rec = do(t, s, http.MethodGet, "/api/search?pageSize=7", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.PageSize)
}

func TestSearch_ShortQueryIs400(t *testing.T) {
	s, _ := fixtureServer(t)
	rec := do(t, s, http.MethodGet, "/api/search?q=ab", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type downBackend struct{}

func (downBackend) err(op string) error {
	return &oracle.RetrievalError{Op: op, StatusCode: 503, Status: "503 Service Unavailable", Body: "overloaded"}
}
func (d downBackend) Chat(context.Context, types.ChatRequest) (*types.ChatResponse, error) {
	return nil, d.err("chat")
}
func (d downBackend) SearchDocuments(context.Context, types.DocumentSearchRequest) (*types.DocumentSearchResponse, error) {
	return nil, d.err("documents")
}
func (d downBackend) FilterValues(context.Context) (*types.FilterValues, error) {
	return nil, d.err("filter-values")
}
func (d downBackend) Stats(context.Context) (*types.Stats, error) { return nil, d.err("stats") }
func (d downBackend) Health(context.Context) (*types.HealthResponse, error) {
	return nil, d.err("health")
}

func TestBackendFailureIs502(t *testing.T) {
	cfg := types.DefaultExplorerConfig()
	cfg.Search.FallbackToFixtures = false
	s, err := New(downBackend{}, cfg)
	require.NoError(t, err)

	for _, target := range []string{"/api/search?q=radiation", "/api/kpi", "/api/filter-values", "/healthz"} {
		rec := do(t, s, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusBadGateway, rec.Code, target)
		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 503, body.UpstreamStatus, target)
		assert.Contains(t, body.UpstreamMessage, "overloaded", target)
	}

	rec := do(t, s, http.MethodGet, "/api/studies/X123", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type unreachableBackend struct{ downBackend }

func (unreachableBackend) Stats(context.Context) (*types.Stats, error) {
	return nil, &oracle.RetrievalError{Op: "stats", Err: errors.New("dial tcp 127.0.0.1:8000: connection refused")}
}

func TestUnreachableBackendHasNoUpstreamFields(t *testing.T) {
	s, err := New(unreachableBackend{}, types.DefaultExplorerConfig())
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/kpi", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"retrieval backend unreachable"}`, rec.Body.String())
}

type canceledBackend struct{ downBackend }

func (canceledBackend) Chat(context.Context, types.ChatRequest) (*types.ChatResponse, error) {
	return nil, &oracle.RetrievalError{Op: "chat", Err: context.Canceled}
}

func TestCanceledRetrievalIs499(t *testing.T) {
	s, err := New(canceledBackend{}, types.DefaultExplorerConfig())
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/search?q=radiation", "", nil)
	assert.Equal(t, 499, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/chat", `{"query":"radiation"}`, nil)
	assert.Equal(t, 499, rec.Code)
}

func TestQueryTooShortIs400ForSearchAndChat(t *testing.T) {
	s, _ := fixtureServer(t)

	for _, rec := range []*httptest.ResponseRecorder{
		do(t, s, http.MethodGet, "/api/search?q=ab", "", nil),
		do(t, s, http.MethodPost, "/api/chat", `{"query":"ab"}`, nil),
	} {
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, types.ErrQueryTooShort.Error(), body.Error)
	}
}

func TestDetail_UsesSessionCache(t *testing.T) {
	s, _ := fixtureServer(t)
	h := http.Header{SessionHeader: []string{"client-1"}}

	rec := do(t, s, http.MethodGet, "/api/search?q=radiation", "", h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client-1", rec.Header().Get(SessionHeader))

	rec = do(t, s, http.MethodGet, "/api/studies/OSDR-004", "", h)
	require.Equal(t, http.StatusOK, rec.Code)
	var d types.StudyDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, types.DetailFromCache, d.Source)

	rec = do(t, s, http.MethodGet, "/api/studies/UNKNOWN-1", "", h)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, types.DetailFromFixture, d.Source)
	assert.Equal(t, "Study from UNKNOWN-1", d.Title)
}

func TestDetail_AnonymousGetsRelatedFromSharedCache(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/search?q=bone+density+in+microgravity", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/studies/OSDR-001", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d types.StudyDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, types.DetailFromCache, d.Source)
	require.NotEmpty(t, d.Related)
	assert.Equal(t, "OSDR-005", d.Related[0].ID)
}

func TestChat_HistoryPerSession(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodPost, "/api/chat", `{"query":"immune response in orbit"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := rec.Header().Get(SessionHeader)
	require.NotEmpty(t, id)

	var reply chatReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, 1, reply.Turns)
	assert.Contains(t, reply.AnswerHTML, "<p>")

	h := http.Header{SessionHeader: []string{id}}
	rec = do(t, s, http.MethodPost, "/api/chat", `{"query":"and bone loss?","filters":{"mission":"ISS"}}`, h)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, 2, reply.Turns)

	rec = do(t, s, http.MethodGet, "/api/chat/history", "", h)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []types.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 2)

	rec = do(t, s, http.MethodDelete, "/api/chat/history", "", h)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/chat", `{"query":"hi"}`, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/chat", `not json`, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/export?format=csv&species=Mus+musculus", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "studies.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "OSD-123", records[1][0])

	rec = do(t, s, http.MethodGet, "/api/export?format=bibtex", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKpiAndMetrics(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := do(t, s, http.MethodGet, "/api/kpi", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var k types.KpiData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &k))
	assert.Equal(t, types.KpiData{TotalStudies: 10, YearsCovered: "2018-2023", TotalMissions: 8, TotalSpecies: 4}, k)

	rec = do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bioexplorer_http_requests_total")
}

func TestRun_StopsOnCancel(t *testing.T) {
	b, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	cfg := types.DefaultExplorerConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s, err := New(b, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCORS(t *testing.T) {
	b, err := fixtures.NewBackend(types.MockConfig{}, nil)
	require.NoError(t, err)
	cfg := types.DefaultExplorerConfig()
	cfg.Server.AllowedOrigins = []string{"https://explorer.example.org"}
	s, err := New(b, cfg)
	require.NoError(t, err)

	rec := do(t, s, http.MethodOptions, "/api/search", "", http.Header{
		"Origin":                        {"https://explorer.example.org"},
		"Access-Control-Request-Method": {"GET"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://explorer.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, s, http.MethodGet, "/api/kpi", "", http.Header{"Origin": {"https://other.example.org"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
