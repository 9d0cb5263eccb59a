// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fixtures

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Backend answers retrieval calls from the embedded corpus after a
// simulated network delay.
type Backend struct {
	Corpus *Corpus

	// MinLatency and MaxLatency bound the simulated delay. Both zero
	// disables it.
	MinLatency time.Duration
	MaxLatency time.Duration

	Logger *zap.Logger
}

// NewBackend returns a Backend over the embedded corpus using the latency
// band from cfg.
func NewBackend(cfg types.MockConfig, logger *zap.Logger) (*Backend, error) {
	c, err := Load()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		Corpus:     c,
		MinLatency: cfg.MinLatency,
		MaxLatency: cfg.MaxLatency,
		Logger:     logger,
	}, nil
}

// Chat returns the keyword-routed canned answer for req.Query.
func (b *Backend) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	b.logger().Debug("fixture chat", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.Corpus.ChatResponse(req.Query), nil
}

// SearchDocuments filters fixture documents by tag and text. A document
// matches the tags when any requested tag appears in any of its tags, and
// matches the text when it appears in its id, title, abstract, or tags.
func (b *Backend) SearchDocuments(ctx context.Context, req types.DocumentSearchRequest) (*types.DocumentSearchResponse, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	var hits []types.Document
	for _, d := range b.Corpus.Documents() {
		if len(req.Tags) > 0 && !tagsMatch(d.Tags, req.Tags) {
			continue
		}
		if req.SearchText != "" && !textMatch(d, req.SearchText) {
			continue
		}
		hits = append(hits, d)
	}

	total := len(hits)
	start := min(max(req.Skip, 0), total)
	end := total
	if req.Limit > 0 {
		end = min(start+req.Limit, total)
	}
	return &types.DocumentSearchResponse{Total: total, Documents: hits[start:end]}, nil
}

// FilterValues returns the fixture facet values.
func (b *Backend) FilterValues(ctx context.Context) (*types.FilterValues, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	fv := b.Corpus.FilterValues
	return &fv, nil
}

// Stats derives corpus statistics from the fixture studies and KPI block.
func (b *Backend) Stats(ctx context.Context) (*types.Stats, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	st := &types.Stats{
		TotalDocuments: len(b.Corpus.Studies),
		TotalChunks:    b.Corpus.FilterValues.TotalChunks,
		MissionCount:   b.Corpus.Kpi.TotalMissions,
		SpeciesCount:   b.Corpus.Kpi.TotalSpecies,
	}
	for _, s := range b.Corpus.Studies {
		if s.Year == nil {
			continue
		}
		if st.YearMin == 0 || *s.Year < st.YearMin {
			st.YearMin = *s.Year
		}
		if *s.Year > st.YearMax {
			st.YearMax = *s.Year
		}
	}
	return st, nil
}

// Health always reports ok.
func (b *Backend) Health(ctx context.Context) (*types.HealthResponse, error) {
	return &types.HealthResponse{Status: "ok", Message: "serving fixtures"}, nil
}

// Detail returns the fixture detail for id.
func (b *Backend) Detail(id string) *types.StudyDetail {
	return b.Corpus.Detail(id)
}

func (b *Backend) wait(ctx context.Context) error {
	d := b.latency()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (b *Backend) latency() time.Duration {
	lo, hi := b.MinLatency, b.MaxLatency
	if hi < lo {
		hi = lo
	}
	if hi == lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func (b *Backend) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func tagsMatch(docTags, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(w)
		for _, t := range docTags {
			if strings.Contains(strings.ToLower(t), w) {
				return true
			}
		}
	}
	return false
}

func textMatch(d types.Document, text string) bool {
	text = strings.ToLower(text)
	fields := []string{d.PK, d.Title}
	if d.ArticleMetadata != nil {
		fields = append(fields, d.ArticleMetadata.Abstract)
	}
	fields = append(fields, d.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), text) {
			return true
		}
	}
	return false
}
