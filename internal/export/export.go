// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes study lists in interchange formats: CSV and XLSX
// for spreadsheets, JSON and YAML for tooling, and CSL-YAML for reference
// managers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSL  Format = "csl"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatCSL, FormatXLSX}

// ParseFormat resolves a case-insensitive format name. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return FormatYAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want one of %v)", s, Formats)
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	if f == FormatCSL {
		return ".csl.yaml"
	}
	return "." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/yaml"
	}
}

// Write encodes studies to w in format f.
func Write(w io.Writer, f Format, studies []types.Study) error {
	if studies == nil {
		studies = []types.Study{}
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, studies)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(studies)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(studies)
	case FormatCSL:
		return WriteCSL(w, studies)
	case FormatXLSX:
		return WriteXLSX(w, studies)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Columns is the header row shared by the CSV and XLSX exports.
var Columns = []string{
	"id", "title", "authors", "year", "doi", "url",
	"mission", "species", "outcomes", "keywords", "relevance_score", "summary",
}

// WriteCSV writes studies as CSV. The header holds the Columns that carry
// a value in at least one study, in Columns order; id, title and
// relevance_score are always present. List fields are joined with "; ".
func WriteCSV(w io.Writer, studies []types.Study) error {
	rows := make([][]string, len(studies))
	for i, s := range studies {
		rows[i] = Row(s)
	}
	keep := presentColumns(rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(pick(Columns, keep)); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(pick(row, keep)); err != nil {
			return fmt.Errorf("writing csv row %s: %w", studies[i].ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func presentColumns(rows [][]string) []int {
	var keep []int
	for c, name := range Columns {
		if name == "id" || name == "title" || name == "relevance_score" {
			keep = append(keep, c)
			continue
		}
		for _, row := range rows {
			if row[c] != "" {
				keep = append(keep, c)
				break
			}
		}
	}
	return keep
}

func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, c := range idx {
		out[i] = row[c]
	}
	return out
}

// Row renders one study in Columns order.
func Row(s types.Study) []string {
	year := ""
	if s.HasYear() {
		year = strconv.Itoa(*s.Year)
	}
	outcomes := make([]string, len(s.Outcomes))
	for i, o := range s.Outcomes {
		outcomes[i] = string(o)
	}
	return []string{
		s.ID,
		s.Title,
		strings.Join(s.Authors, "; "),
		year,
		s.DOIValue(),
		s.URL,
		s.Mission,
		strings.Join(s.Species, "; "),
		strings.Join(outcomes, "; "),
		strings.Join(s.Keywords, "; "),
		strconv.FormatFloat(s.RelevanceScore, 'f', 2, 64),
		s.Summary,
	}
}
