// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics surfaces the retrieval oracle's answer-quality metrics
// and records explorer activity for Prometheus.
package metrics

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// MaxDominantShare is the largest fraction of evidence one section may
// supply for a result to count as diverse.
const MaxDominantShare = 0.8

// SectionCount is one entry of the section distribution.
type SectionCount struct {
	Section string `json:"section" yaml:"section"`
	Count   int    `json:"count" yaml:"count"`
}

// Summary is the oracle-reported metrics of one answer. Values are passed
// through as reported; nothing is recomputed locally.
type Summary struct {
	LatencyMS     float64        `json:"latency_ms" yaml:"latency_ms"`
	RetrievedK    int            `json:"retrieved_k" yaml:"retrieved_k"`
	GroundedRatio float64        `json:"grounded_ratio" yaml:"grounded_ratio"`
	DedupCount    int            `json:"dedup_count" yaml:"dedup_count"`
	Sections      []SectionCount `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Extract copies m into a Summary with sections ordered by count, largest
// first, then by name. It reports false when m is nil.
func Extract(m *types.ResponseMetrics) (Summary, bool) {
	if m == nil {
		return Summary{}, false
	}
	s := Summary{
		LatencyMS:     m.LatencyMS,
		RetrievedK:    m.RetrievedK,
		GroundedRatio: m.GroundedRatio,
		DedupCount:    m.DedupCount,
	}
	for name, n := range m.SectionDistribution {
		s.Sections = append(s.Sections, SectionCount{Section: name, Count: n})
	}
	slices.SortFunc(s.Sections, func(a, b SectionCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Section, b.Section)
	})
	return s, true
}

// GroundedPercent converts the grounded ratio to a whole percentage for
// display.
func (s Summary) GroundedPercent() int {
	return int(math.Round(s.GroundedRatio * 100))
}

// Diversity describes how evidence is spread across document sections.
type Diversity struct {
	Distinct      int     `json:"distinct" yaml:"distinct"`
	Dominant      string  `json:"dominant,omitempty" yaml:"dominant,omitempty"`
	DominantShare float64 `json:"dominant_share" yaml:"dominant_share"`
}

// Diversity computes the section spread. With no section data it reports
// zero distinct sections.
func (s Summary) Diversity() Diversity {
	var d Diversity
	total := 0
	for _, sc := range s.Sections {
		if sc.Count <= 0 {
			continue
		}
		d.Distinct++
		total += sc.Count
	}
	if total == 0 {
		return Diversity{}
	}
	// Sections are sorted, so the first positive entry dominates.
	for _, sc := range s.Sections {
		if sc.Count > 0 {
			d.Dominant = sc.Section
			d.DominantShare = float64(sc.Count) / float64(total)
			break
		}
	}
	return d
}

// Diverse reports whether evidence came from at least two sections with
// no single section supplying more than MaxDominantShare of it.
func (d Diversity) Diverse() bool {
	return d.Distinct >= 2 && d.DominantShare <= MaxDominantShare
}

// String renders the spread for display, for example
// "3 sections, mostly Results (42%)". Spreads that are not diverse are
// marked narrow.
func (d Diversity) String() string {
	if d.Distinct == 0 {
		return "no sections"
	}
	noun := "sections"
	if d.Distinct == 1 {
		noun = "section"
	}
	out := fmt.Sprintf("%d %s, mostly %s (%d%%)", d.Distinct, noun, d.Dominant, int(math.Round(d.DominantShare*100)))
	if !d.Diverse() {
		out += ", narrow"
	}
	return out
}
