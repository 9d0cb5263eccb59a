// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/facets"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Session asks questions on behalf of one user and records the answers.
type Session struct {
	ID string

	chatter  oracle.Chatter
	topK     int
	mapper   facets.Mapper
	recorder *metrics.Recorder
	logger   *zap.Logger

	mu      sync.Mutex
	filters types.SearchFilters

	History History
}

// Option configures a Session.
type Option func(*Session)

// WithTopK overrides the evidence count requested per question.
func WithTopK(k int) Option {
	return func(s *Session) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithSessionID resumes an existing session id instead of minting one.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithClock fixes the clock used for open-ended year ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.mapper.Now = now }
}

// WithRecorder counts chat turns.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession starts a session with a fresh id.
func NewSession(chatter oracle.Chatter, opts ...Option) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		chatter: chatter,
		topK:    types.DefaultChatTopK,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFilters replaces the facets applied to later questions. The query
// field is ignored.
func (s *Session) SetFilters(f types.SearchFilters) {
	f.Query = ""
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

// Filters returns the facets applied to questions.
func (s *Session) Filters() types.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Ask sends question to the oracle and appends the answer to the history.
// A failed call leaves the history unchanged.
func (s *Session) Ask(ctx context.Context, question string) (*types.ChatResponse, error) {
	q := strings.TrimSpace(question)
	if types.QueryTooShort(q) {
		return nil, types.ErrQueryTooShort
	}

	req := types.ChatRequest{Query: q, TopK: s.topK, SessionID: s.ID}
	if rf := s.mapper.Map(s.Filters()); !rf.IsEmpty() {
		req.Filters = &rf
	}

	resp, err := s.chatter.Chat(ctx, req)
	if err != nil {
		s.logger.Warn("chat turn failed", zap.String("session", s.ID), zap.Error(err))
		return nil, err
	}
	s.History.Append(*resp)
	s.recorder.ChatTurn()
	s.recorder.Answer(resp.Metrics)
	return resp, nil
}
