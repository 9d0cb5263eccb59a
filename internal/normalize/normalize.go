// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps the retrieval backend's heterogeneous records
// (semantic citations and structured documents) onto the canonical Study
// shape and wraps them in a paginated SearchResponse.
package normalize

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Score defaults.
const (
	// DefaultCitationScore applies when a citation carries no score.
	DefaultCitationScore = 0.95

	// DocumentScore is the fixed score of structured-search results, which
	// carry no relevance signal.
	DocumentScore = 0.90
)

// Report summarizes what a normalization pass dropped or merged.
type Report struct {
	// Skipped counts malformed records left out of the response.
	Skipped int

	// Collapsed counts records merged into an earlier one sharing its id.
	Collapsed int
}

// Normalizer converts backend responses. The zero value is usable and
// reads the wall clock for synthesized ids.
type Normalizer struct {
	// Now is read once per batch to synthesize ids for records that
	// carry no natural key. Fixing it makes normalization idempotent.
	Now func() time.Time

	Logger *zap.Logger
}

// Chat normalizes a semantic chat response. Studies are sorted by score,
// highest first, with ties in citation order.
func (n Normalizer) Chat(resp *types.ChatResponse, filters types.SearchFilters) (types.SearchResponse, Report) {
	page, pageSize := filters.Pagination()
	out := types.SearchResponse{
		Studies:  []types.Study{},
		Page:     page,
		PageSize: pageSize,
		Mode:     types.ModeSemantic,
	}
	var rep Report
	if resp == nil {
		return out, rep
	}
	out.Answer = resp.Answer
	out.Metrics = resp.Metrics
	out.SessionID = resp.SessionID

	stamp := n.now().UnixMilli()
	studies := make([]types.Study, 0, len(resp.Citations))
	for i, c := range resp.Citations {
		if strings.TrimSpace(c.Snippet) == "" {
			rep.Skipped++
			n.logger().Warn("skipping citation without snippet",
				zap.Int("index", i),
				zap.String("source_id", c.SourceID),
			)
			continue
		}
		studies = append(studies, FromCitation(c, syntheticID(stamp, i)))
	}

	studies, rep.Collapsed = collapse(studies)
	SortByScore(studies)

	out.Studies = studies
	out.Total = len(studies)
	out.TotalPages = totalPages(out.Total, pageSize)
	out.HasMore = false
	return out, rep
}

// Documents normalizes a structured search response fetched with skip and
// limit. Pagination follows the backend's total.
func (n Normalizer) Documents(resp *types.DocumentSearchResponse, skip, limit int) (types.SearchResponse, Report) {
	if limit < 1 {
		limit = types.DefaultPageSize
	}
	skip = max(skip, 0)
	out := types.SearchResponse{
		Studies:  []types.Study{},
		Page:     skip/limit + 1,
		PageSize: limit,
		Mode:     types.ModeStructured,
	}
	var rep Report
	if resp == nil {
		return out, rep
	}

	stamp := n.now().UnixMilli()
	studies := make([]types.Study, 0, len(resp.Documents))
	for i, d := range resp.Documents {
		if strings.TrimSpace(d.PK) == "" && strings.TrimSpace(d.Title) == "" {
			rep.Skipped++
			n.logger().Warn("skipping document without key or title", zap.Int("index", i))
			continue
		}
		studies = append(studies, FromDocument(d, syntheticID(stamp, skip+i)))
	}
	studies, rep.Collapsed = collapse(studies)

	total := max(resp.Total, skip+len(resp.Documents))
	out.Studies = studies
	out.Total = total
	out.TotalPages = totalPages(total, limit)
	out.HasMore = skip+len(resp.Documents) < total
	return out, rep
}

// FromCitation maps one citation to a Study. fallbackID is used only when
// the citation has no source id, OSDR id, or DOI.
func FromCitation(c types.Citation, fallbackID string) types.Study {
	art := c.Article()

	id := firstNonEmpty(c.SourceID, c.OSDRID, c.DOI, fallbackID)

	title := c.Title
	authors := []string{}
	var doi, url string
	var year *int
	if art != nil {
		title = firstNonEmpty(art.Title, c.Title)
		if len(art.Authors) > 0 {
			authors = append(authors, art.Authors...)
		}
		doi = art.DOI
		url = art.URL
		year = art.Year
	}
	if strings.TrimSpace(title) == "" {
		title = "Study from " + id
	}
	doi = firstNonEmpty(c.DOI, doi)
	url = firstNonEmpty(c.URL, url)
	if c.Year != nil && *c.Year > 0 {
		year = c.Year
	}

	s := types.Study{
		ID:              id,
		Title:           title,
		Authors:         authors,
		Abstract:        c.Snippet,
		Summary:         Truncate(c.Snippet, types.SummaryMaxRunes),
		URL:             url,
		Section:         c.Section,
		RelevanceScore:  CitationScore(c),
		RelevanceReason: c.RelevanceReason,
	}
	if year != nil && *year > 0 {
		s.Year = types.IntPtr(*year)
	}
	if doi != "" {
		s.DOI = types.StringPtr(doi)
	}
	if o := strings.TrimSpace(c.Organism); o != "" {
		s.Species = types.SpeciesSet{o}
	}
	return s
}

// FromDocument maps one structured-search document to a Study with the
// fixed DocumentScore.
func FromDocument(d types.Document, fallbackID string) types.Study {
	art := d.ArticleMetadata

	var doi string
	if art != nil {
		doi = art.DOI
	}
	id := firstNonEmpty(d.PK, doi, fallbackID)

	s := types.Study{
		ID:             id,
		Title:          d.Title,
		Authors:        []string{},
		Keywords:       append([]string(nil), d.Tags...),
		RelevanceScore: DocumentScore,
	}
	if art != nil {
		s.Title = firstNonEmpty(art.Title, d.Title)
		if len(art.Authors) > 0 {
			s.Authors = append(s.Authors, art.Authors...)
		}
		if art.Year != nil && *art.Year > 0 {
			s.Year = types.IntPtr(*art.Year)
		}
		s.URL = art.URL
		s.Abstract = art.Abstract
		s.Summary = Truncate(art.Abstract, types.SummaryMaxRunes)
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = "Study from " + id
	}
	if doi != "" {
		s.DOI = types.StringPtr(doi)
	}
	return s
}

// CitationScore picks final_score, then similarity_score, then
// DefaultCitationScore, clamped to [0,1].
func CitationScore(c types.Citation) float64 {
	switch {
	case c.FinalScore != nil && !math.IsNaN(*c.FinalScore):
		return clamp01(*c.FinalScore)
	case c.SimilarityScore != nil && !math.IsNaN(*c.SimilarityScore):
		return clamp01(*c.SimilarityScore)
	default:
		return DefaultCitationScore
	}
}

// SortByScore orders studies by relevance score, highest first, keeping
// the input order among equal scores.
func SortByScore(studies []types.Study) {
	slices.SortStableFunc(studies, func(a, b types.Study) int {
		return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
	})
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// collapse merges studies sharing an id into the first occurrence. Empty
// fields of the survivor are filled from later duplicates and the higher
// score is kept.
func collapse(studies []types.Study) ([]types.Study, int) {
	seen := make(map[string]int, len(studies))
	out := studies[:0]
	collapsed := 0
	for _, s := range studies {
		if at, ok := seen[s.ID]; ok {
			mergeInto(&out[at], s)
			collapsed++
			continue
		}
		seen[s.ID] = len(out)
		out = append(out, s)
	}
	return out, collapsed
}

func mergeInto(dst *types.Study, src types.Study) {
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
		if src.RelevanceReason != "" {
			dst.RelevanceReason = src.RelevanceReason
		}
	}
	if strings.HasPrefix(dst.Title, "Study from ") && !strings.HasPrefix(src.Title, "Study from ") {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Year == nil {
		dst.Year = src.Year
	}
	if dst.DOI == nil {
		dst.DOI = src.DOI
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
		dst.Summary = src.Summary
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Section == "" {
		dst.Section = src.Section
	}
	if dst.Mission == "" {
		dst.Mission = src.Mission
	}
	if len(dst.Species) == 0 {
		dst.Species = src.Species
	}
	if len(dst.Keywords) == 0 {
		dst.Keywords = src.Keywords
	}
}

func syntheticID(stampMillis int64, ordinal int) string {
	return fmt.Sprintf("study-%d-%d", stampMillis, ordinal)
}

func totalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n Normalizer) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}
