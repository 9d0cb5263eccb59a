// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixtures serves an embedded offline corpus through the same
// interfaces as the remote retrieval backend, for demos and tests when no
// backend is reachable.
package fixtures

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

//go:embed fixtures.yaml
var corpusYAML []byte

// StudyURLBase prefixes a study id to form its repository URL.
const StudyURLBase = "https://osdr.nasa.gov/bio/repo/data/studies/"

// relatedLimit caps the related list of a generic fixture detail.
const relatedLimit = 3

type cannedResponse struct {
	Answer      string                 `yaml:"answer"`
	Citations   []int                  `yaml:"citations"`
	UsedFilters *types.RAGFilters      `yaml:"used_filters"`
	Metrics     *types.ResponseMetrics `yaml:"metrics"`
	SessionID   string                 `yaml:"session_id"`
}

type route struct {
	Name     string         `yaml:"name"`
	Keywords []string       `yaml:"keywords"`
	Response cannedResponse `yaml:"response"`
}

type detailEntry struct {
	ID      string   `yaml:"id"`
	Related []string `yaml:"related"`
	Methods string   `yaml:"methods"`
}

// Corpus is the parsed fixture file.
type Corpus struct {
	Citations      []types.Citation   `yaml:"citations"`
	Routes         []route            `yaml:"routes"`
	Default        cannedResponse     `yaml:"default"`
	Studies        []types.Study      `yaml:"studies"`
	Details        []detailEntry      `yaml:"details"`
	GenericMethods string             `yaml:"generic_methods"`
	Kpi            types.KpiData      `yaml:"kpi"`
	FilterValues   types.FilterValues `yaml:"filter_values"`
}

var (
	loadOnce sync.Once
	loaded   *Corpus
	loadErr  error
)

// Load parses the embedded corpus once and returns it.
func Load() (*Corpus, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(corpusYAML)
	})
	return loaded, loadErr
}

// MustLoad is Load for callers that treat a broken embed as a programming
// error.
func MustLoad() *Corpus {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a fixture corpus and checks its citation references.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	check := func(name string, refs []int) error {
		for _, i := range refs {
			if i < 0 || i >= len(c.Citations) {
				return fmt.Errorf("fixture response %q references citation %d of %d", name, i, len(c.Citations))
			}
		}
		return nil
	}
	for _, r := range c.Routes {
		if err := check(r.Name, r.Response.Citations); err != nil {
			return nil, err
		}
	}
	if err := check("default", c.Default.Citations); err != nil {
		return nil, err
	}
	for i := range c.Studies {
		if c.Studies[i].Authors == nil {
			c.Studies[i].Authors = []string{}
		}
		if c.Studies[i].URL == "" {
			c.Studies[i].URL = StudyURLBase + c.Studies[i].ID
		}
	}
	return &c, nil
}

// ChatResponse returns the canned answer for query: the first route with a
// keyword contained in the lower-cased query, else the default answer.
// The returned value shares nothing with the corpus.
func (c *Corpus) ChatResponse(query string) *types.ChatResponse {
	lower := strings.ToLower(query)
	resp := c.Default
	for _, r := range c.Routes {
		if matchesAny(lower, r.Keywords) {
			resp = r.Response
			break
		}
	}
	return c.materialize(resp)
}

func (c *Corpus) materialize(r cannedResponse) *types.ChatResponse {
	out := &types.ChatResponse{
		Answer:    r.Answer,
		Citations: make([]types.Citation, 0, len(r.Citations)),
		SessionID: r.SessionID,
	}
	for _, i := range r.Citations {
		out.Citations = append(out.Citations, c.Citations[i])
	}
	if r.UsedFilters != nil {
		f := *r.UsedFilters
		out.UsedFilters = &f
	}
	if r.Metrics != nil {
		m := *r.Metrics
		if r.Metrics.SectionDistribution != nil {
			m.SectionDistribution = make(map[string]int, len(r.Metrics.SectionDistribution))
			for k, v := range r.Metrics.SectionDistribution {
				m.SectionDistribution[k] = v
			}
		}
		out.Metrics = &m
	}
	return out
}

// Study returns the fixture study with id.
func (c *Corpus) Study(id string) (types.Study, bool) {
	for _, s := range c.Studies {
		if s.ID == id {
			return cloneStudy(s), true
		}
	}
	return types.Study{}, false
}

// Detail returns the fixture detail for id. Ids with a dedicated entry get
// its related list and methods; other known ids get the first few other
// studies and the generic methods text; unknown ids get a placeholder
// titled after the id. Detail never fails.
func (c *Corpus) Detail(id string) *types.StudyDetail {
	for _, d := range c.Details {
		if d.ID != id {
			continue
		}
		s, _ := c.Study(id)
		related := make([]types.Study, 0, len(d.Related))
		for _, rid := range d.Related {
			if r, ok := c.Study(rid); ok {
				related = append(related, r)
			}
		}
		return &types.StudyDetail{Study: s, Related: related, Methods: d.Methods, Source: types.DetailFromFixture}
	}

	s, ok := c.Study(id)
	if !ok {
		s = types.Study{
			ID:      id,
			Title:   "Study from " + id,
			Authors: []string{},
		}
	}
	related := make([]types.Study, 0, relatedLimit)
	for _, other := range c.Studies {
		if len(related) == relatedLimit {
			break
		}
		if other.ID != id {
			related = append(related, cloneStudy(other))
		}
	}
	return &types.StudyDetail{Study: s, Related: related, Methods: c.GenericMethods, Source: types.DetailFromFixture}
}

// Documents renders every fixture study as a structured-search document.
func (c *Corpus) Documents() []types.Document {
	docs := make([]types.Document, 0, len(c.Studies))
	for _, s := range c.Studies {
		docs = append(docs, toDocument(s))
	}
	return docs
}

func toDocument(s types.Study) types.Document {
	tags := make([]string, 0, len(s.Species)+len(s.Keywords)+1)
	tags = append(tags, s.Species...)
	if s.Mission != "" {
		tags = append(tags, s.Mission)
	}
	tags = append(tags, s.Keywords...)

	meta := &types.ArticleMetadata{
		Title:    s.Title,
		Authors:  append([]string(nil), s.Authors...),
		DOI:      s.DOIValue(),
		URL:      s.URL,
		Abstract: s.Abstract,
	}
	if s.Year != nil {
		meta.Year = types.IntPtr(*s.Year)
	}
	return types.Document{
		PK:              s.ID,
		Title:           s.Title,
		Tags:            tags,
		Category:        "spaceflight",
		SourceType:      "publication",
		ArticleMetadata: meta,
	}
}

func cloneStudy(s types.Study) types.Study {
	out := s
	out.Authors = append([]string{}, s.Authors...)
	out.Species = append(types.SpeciesSet(nil), s.Species...)
	out.Outcomes = append([]types.OutcomeType(nil), s.Outcomes...)
	out.Keywords = append([]string(nil), s.Keywords...)
	if s.Year != nil {
		out.Year = types.IntPtr(*s.Year)
	}
	if s.DOI != nil {
		out.DOI = types.StringPtr(*s.DOI)
	}
	return out
}

func matchesAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
