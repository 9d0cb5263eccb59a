// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search dispatches explorer queries to the retrieval backend,
// normalizes the results, and serves study details from the cache or by
// reconstruction.
//
// A query picks one of three strategies:
//
//	semantic    free text of at least types.MinQueryRunes runes, via RAG chat
//	structured  no text but some facet set, via document search
//	empty       nothing set, answered locally with an empty page
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/facets"
	"github.com/pdiddy/bioexplorer/internal/fixtures"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/normalize"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/internal/studycache"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

var (
	// ErrSuperseded reports that a newer search started before this one
	// finished. Its result was discarded and not cached.
	ErrSuperseded = errors.New("search superseded by a newer request")

	// ErrStudyNotFound reports that a detail lookup exhausted every
	// strategy and fixture fallback is off.
	ErrStudyNotFound = errors.New("study not found")
)

// Service runs searches and detail lookups against one backend.
type Service struct {
	backend  oracle.Backend
	corpus   *fixtures.Corpus
	cache    *studycache.Cache
	norm     normalize.Normalizer
	mapper   facets.Mapper
	cfg      types.SearchConfig
	recorder *metrics.Recorder
	logger   *zap.Logger

	sessionID string

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	lastBatch []types.Study
}

// Option configures a Service.
type Option func(*Service)

// WithCache shares an existing study cache.
func WithCache(c *studycache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder records search activity.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock fixes the clock used for synthesized ids and open year ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.norm.Now = now
		s.mapper.Now = now
	}
}

// WithCorpus replaces the fixture corpus used for the last-resort detail
// fallback.
func WithCorpus(c *fixtures.Corpus) Option {
	return func(s *Service) { s.corpus = c }
}

// WithSessionID attaches a chat session id to semantic searches.
func WithSessionID(id string) Option {
	return func(s *Service) { s.sessionID = id }
}

// New returns a Service over backend. Zero config values take their
// defaults, except FallbackToFixtures which is honored as given.
func New(backend oracle.Backend, cfg types.SearchConfig, opts ...Option) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = types.DefaultPageSize
	}
	s := &Service{
		backend: backend,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = studycache.New(cfg.CacheCapacity)
	}
	if s.corpus == nil {
		s.corpus = fixtures.MustLoad()
	}
	s.norm.Logger = s.logger
	return s
}

// Cache returns the study cache.
func (s *Service) Cache() *studycache.Cache { return s.cache }

// Mode reports which strategy Search would use for filters.
func Mode(filters types.SearchFilters) types.SearchMode {
	if filters.TrimmedQuery() != "" {
		return types.ModeSemantic
	}
	if facets.HasStructured(filters) {
		return types.ModeStructured
	}
	return types.ModeEmpty
}

// Search runs one search. Backend failures are returned unchanged as
// *oracle.RetrievalError. Starting a search cancels the one before it;
// the older call then returns ErrSuperseded.
func (s *Service) Search(ctx context.Context, filters types.SearchFilters) (*types.SearchResponse, error) {
	mode := Mode(filters)
	if mode == types.ModeSemantic && types.QueryTooShort(filters.Query) {
		s.recorder.Search(mode, metrics.OutcomeTooShort)
		return nil, types.ErrQueryTooShort
	}
	filters.Page, filters.PageSize = s.pagination(filters)

	ctx, token, done := s.begin(ctx)
	defer done()

	var (
		resp *types.SearchResponse
		err  error
	)
	switch mode {
	case types.ModeSemantic:
		resp, err = s.semantic(ctx, filters)
	case types.ModeStructured:
		resp, err = s.structured(ctx, filters)
	default:
		resp, err = s.empty(ctx, filters)
	}

	if err != nil {
		if !s.latest(token) {
			s.recorder.Search(mode, metrics.OutcomeSuperseded)
			return nil, ErrSuperseded
		}
		s.recorder.Search(mode, metrics.OutcomeError)
		return nil, err
	}
	if !s.commit(token, resp.Studies) {
		s.logger.Info("discarding superseded search result", zap.Uint64("token", token), zap.String("mode", string(mode)))
		s.recorder.Search(mode, metrics.OutcomeSuperseded)
		return nil, ErrSuperseded
	}

	outcome := metrics.OutcomeOK
	if resp.IsEmpty() {
		outcome = metrics.OutcomeEmpty
	}
	s.recorder.Search(mode, outcome)
	return resp, nil
}

// pagination resolves the page and page size of filters. An unset page
// size takes the configured one.
func (s *Service) pagination(filters types.SearchFilters) (page, pageSize int) {
	page, pageSize = filters.Pagination()
	if filters.PageSize < 1 {
		pageSize = s.cfg.PageSize
	}
	return page, pageSize
}

func (s *Service) semantic(ctx context.Context, filters types.SearchFilters) (*types.SearchResponse, error) {
	_, pageSize := filters.Pagination()
	req := types.ChatRequest{
		Query:     filters.TrimmedQuery(),
		TopK:      pageSize,
		SessionID: s.sessionID,
	}
	if rf := s.mapper.Map(filters); !rf.IsEmpty() {
		req.Filters = &rf
	}

	start := time.Now()
	raw, err := s.backend.Chat(ctx, req)
	s.recorder.OracleCall("chat", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.recorder.Answer(raw.Metrics)

	out, rep := s.norm.Chat(raw, filters)
	s.recorder.Skipped(types.ModeSemantic, rep.Skipped)
	return &out, nil
}

// structured sends species as tags and the mission as search text. The
// document search has no year or outcome parameters, so filters holding
// only those facets list the unconstrained corpus page.
func (s *Service) structured(ctx context.Context, filters types.SearchFilters) (*types.SearchResponse, error) {
	page, pageSize := filters.Pagination()
	req := types.DocumentSearchRequest{
		Tags:       filters.Species,
		SearchText: filters.Mission,
		Skip:       (page - 1) * pageSize,
		Limit:      pageSize,
	}
	return s.documents(ctx, req)
}

func (s *Service) empty(ctx context.Context, filters types.SearchFilters) (*types.SearchResponse, error) {
	page, pageSize := filters.Pagination()
	if !s.cfg.ListUnfiltered {
		return &types.SearchResponse{
			Studies:  []types.Study{},
			Page:     1,
			PageSize: pageSize,
			Mode:     types.ModeEmpty,
		}, nil
	}
	return s.documents(ctx, types.DocumentSearchRequest{Skip: (page - 1) * pageSize, Limit: pageSize})
}

func (s *Service) documents(ctx context.Context, req types.DocumentSearchRequest) (*types.SearchResponse, error) {
	start := time.Now()
	raw, err := s.backend.SearchDocuments(ctx, req)
	s.recorder.OracleCall("documents", time.Since(start))
	if err != nil {
		return nil, err
	}
	out, rep := s.norm.Documents(raw, req.Skip, req.Limit)
	s.recorder.Skipped(types.ModeStructured, rep.Skipped)
	return &out, nil
}

// begin issues a new fencing token and cancels the previous search.
func (s *Service) begin(parent context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.seq++
	token := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	return ctx, token, cancel
}

func (s *Service) latest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == token
}

// commit caches studies when token is still the latest. The check and the
// write happen under one lock so a stale result can never reach the cache.
func (s *Service) commit(token uint64, studies []types.Study) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return false
	}
	s.cache.PutAll(studies)
	s.lastBatch = append(s.lastBatch[:0:0], studies...)
	return true
}

// FilterValues passes facet discovery through to the backend.
func (s *Service) FilterValues(ctx context.Context) (*types.FilterValues, error) {
	return s.backend.FilterValues(ctx)
}

// Health passes the health check through to the backend.
func (s *Service) Health(ctx context.Context) (*types.HealthResponse, error) {
	return s.backend.Health(ctx)
}

// Kpi maps corpus statistics into the dashboard KPI contract.
func (s *Service) Kpi(ctx context.Context) (*types.KpiData, error) {
	st, err := s.backend.Stats(ctx)
	if err != nil {
		return nil, err
	}
	k := KpiFromStats(*st)
	return &k, nil
}
