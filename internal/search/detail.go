// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/normalize"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// MaxRelated bounds the related studies attached to a detail.
const MaxRelated = 4

// Detail returns the full record for id. A study seen in an earlier search
// comes straight from the cache without a backend call. Otherwise the
// record is rebuilt from a document lookup and, when that carries no
// abstract, a semantic summary query. When both come up empty the fixture
// placeholder is returned, or ErrStudyNotFound if fixture fallback is off.
func (s *Service) Detail(ctx context.Context, id string) (*types.StudyDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("study id: %w", ErrStudyNotFound)
	}

	if st, ok := s.cache.Get(id); ok {
		s.recorder.CacheLookup(true)
		s.recorder.Detail(types.DetailFromCache)
		return &types.StudyDetail{
			Study:   st,
			Related: s.related(id),
			Source:  types.DetailFromCache,
		}, nil
	}
	s.recorder.CacheLookup(false)

	if st, ok := s.reconstruct(ctx, id); ok {
		s.cache.Put(st)
		s.recorder.Detail(types.DetailFromReconstructed)
		return &types.StudyDetail{
			Study:   st,
			Related: s.related(id),
			Source:  types.DetailFromReconstructed,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.cfg.FallbackToFixtures {
		return nil, fmt.Errorf("study %s: %w", id, ErrStudyNotFound)
	}
	s.logger.Warn("serving fixture placeholder detail", zap.String("id", id))
	s.recorder.Detail(types.DetailFromFixture)
	return s.corpus.Detail(id), nil
}

// reconstruct rebuilds a study from the backend. Step failures are logged
// and the next step is tried.
func (s *Service) reconstruct(ctx context.Context, id string) (types.Study, bool) {
	var (
		st    types.Study
		found bool
	)

	start := time.Now()
	docs, err := s.backend.SearchDocuments(ctx, types.DocumentSearchRequest{SearchText: id, Limit: 1})
	s.recorder.OracleCall("documents", time.Since(start))
	switch {
	case err != nil:
		s.logger.Warn("detail document lookup failed", zap.String("id", id), zap.Error(err))
	case len(docs.Documents) > 0:
		st = normalize.FromDocument(docs.Documents[0], id)
		found = true
	}

	if !found || st.Abstract == "" {
		if c, ok := s.mineAbstract(ctx, id, st.Title); ok {
			if found {
				st.Abstract = c.Snippet
				st.Summary = normalize.Truncate(c.Snippet, types.SummaryMaxRunes)
			} else {
				st = normalize.FromCitation(c, id)
				found = true
			}
		}
	}
	if !found {
		return types.Study{}, false
	}
	st.ID = id
	return st, true
}

// mineAbstract asks the oracle to summarize the paper's abstract and picks
// the citation that best matches it.
func (s *Service) mineAbstract(ctx context.Context, id, title string) (types.Citation, bool) {
	hint := title
	if strings.TrimSpace(hint) == "" {
		hint = id
	}
	req := types.ChatRequest{
		Query:     fmt.Sprintf("Summarize the abstract of the paper titled %q", hint),
		TopK:      types.DefaultChatTopK,
		SessionID: s.sessionID,
	}

	start := time.Now()
	resp, err := s.backend.Chat(ctx, req)
	s.recorder.OracleCall("chat", time.Since(start))
	if err != nil {
		s.logger.Warn("detail abstract lookup failed", zap.String("id", id), zap.Error(err))
		return types.Citation{}, false
	}
	return pickAbstract(resp.Citations, id, title)
}

// pickAbstract prefers a citation of the same record, then one whose title
// matches, then any snippet that calls itself an abstract.
func pickAbstract(citations []types.Citation, id, title string) (types.Citation, bool) {
	var byTitle, bySnippet *types.Citation
	for i := range citations {
		c := &citations[i]
		if strings.TrimSpace(c.Snippet) == "" {
			continue
		}
		if c.SourceID == id || c.OSDRID == id {
			return *c, true
		}
		ct := c.Title
		if art := c.Article(); art != nil && art.Title != "" {
			ct = art.Title
		}
		if byTitle == nil && title != "" && strings.EqualFold(strings.TrimSpace(ct), strings.TrimSpace(title)) {
			byTitle = c
		}
		if bySnippet == nil && strings.Contains(strings.ToLower(c.Snippet), "abstract") {
			bySnippet = c
		}
	}
	switch {
	case byTitle != nil:
		return *byTitle, true
	case bySnippet != nil:
		return *bySnippet, true
	}
	return types.Citation{}, false
}

// related lists other studies from this service's last search, topped up
// with the most recently cached studies when that batch is short.
func (s *Service) related(id string) []types.Study {
	s.mu.Lock()
	out := make([]types.Study, 0, MaxRelated)
	seen := map[string]bool{id: true}
	for _, st := range s.lastBatch {
		if len(out) == MaxRelated {
			break
		}
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	s.mu.Unlock()

	if len(out) < MaxRelated {
		for _, st := range s.cache.Recent(MaxRelated+len(seen), id) {
			if len(out) == MaxRelated {
				break
			}
			if seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			out = append(out, st)
		}
	}
	return out
}

// KpiFromStats maps backend statistics onto the KPI contract. Years are
// rendered as "min-max", or a single year when both ends agree.
func KpiFromStats(st types.Stats) types.KpiData {
	k := types.KpiData{
		TotalStudies:  st.TotalDocuments,
		TotalMissions: st.MissionCount,
		TotalSpecies:  st.SpeciesCount,
	}
	switch {
	case st.YearMin > 0 && st.YearMax > 0 && st.YearMin != st.YearMax:
		k.YearsCovered = fmt.Sprintf("%d-%d", st.YearMin, st.YearMax)
	case st.YearMax > 0:
		k.YearsCovered = fmt.Sprint(st.YearMax)
	case st.YearMin > 0:
		k.YearsCovered = fmt.Sprint(st.YearMin)
	}
	return k
}
