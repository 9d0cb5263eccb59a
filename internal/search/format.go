// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// FormatTable writes a human-readable results table to w.
func FormatTable(resp *types.SearchResponse, w io.Writer) {
	if resp == nil || resp.IsEmpty() {
		if resp != nil && resp.Mode == types.ModeEmpty {
			fmt.Fprintln(w, "Enter a query or pick a filter to search.")
			return
		}
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-50s  %-20s  %-4s  %s\n",
		"Rank", "ID", "Title", "Authors", "Year", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	rank := (resp.Page - 1) * resp.PageSize
	if rank < 0 || resp.Mode == types.ModeSemantic {
		rank = 0
	}
	for i, s := range resp.Studies {
		year := ""
		if s.HasYear() {
			year = fmt.Sprint(*s.Year)
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-50s  %-20s  %-4s  %.2f\n",
			rank+i+1, truncate(s.ID, 14), truncate(s.Title, 50), formatAuthors(s.Authors), year, s.RelevanceScore)
	}

	fmt.Fprintf(w, "\n%d results", resp.Total)
	if resp.TotalPages > 1 {
		fmt.Fprintf(w, " (page %d of %d)", resp.Page, resp.TotalPages)
	}
	fmt.Fprintf(w, " [%s]\n", resp.Mode)

	if sum, ok := metrics.Extract(resp.Metrics); ok {
		fmt.Fprintf(w, "Latency %.0f ms, retrieved %d, grounded %d%%, %d duplicates removed\n",
			sum.LatencyMS, sum.RetrievedK, sum.GroundedPercent(), sum.DedupCount)
		if d := sum.Diversity(); d.Distinct > 0 {
			fmt.Fprintf(w, "Evidence from %s\n", d)
		}
	}
}

// FormatDetail writes a study detail to w.
func FormatDetail(d *types.StudyDetail, w io.Writer) {
	fmt.Fprintf(w, "%s\n%s\n", d.Title, strings.Repeat("=", min(utf8.RuneCountInString(d.Title), 80)))
	fmt.Fprintf(w, "ID:      %s\n", d.ID)
	if len(d.Authors) > 0 {
		fmt.Fprintf(w, "Authors: %s\n", strings.Join(d.Authors, ", "))
	}
	if d.HasYear() {
		fmt.Fprintf(w, "Year:    %d\n", *d.Year)
	}
	if doi := d.DOIValue(); doi != "" {
		fmt.Fprintf(w, "DOI:     %s\n", doi)
	}
	if d.URL != "" {
		fmt.Fprintf(w, "URL:     %s\n", d.URL)
	}
	fmt.Fprintf(w, "Source:  %s\n", d.Source)
	if d.Source == types.DetailFromFixture {
		fmt.Fprintln(w, "(placeholder data, not a retrieved record)")
	}
	if d.Abstract != "" {
		fmt.Fprintf(w, "\nAbstract\n%s\n", d.Abstract)
	}
	if d.Methods != "" {
		fmt.Fprintf(w, "\nMethods\n%s\n", d.Methods)
	}
	if len(d.Related) > 0 {
		fmt.Fprintln(w, "\nRelated")
		for _, r := range d.Related {
			fmt.Fprintf(w, "  %-14s  %s\n", truncate(r.ID, 14), truncate(r.Title, 70))
		}
	}
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
