// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id" json:"id"`
	Type     string    `yaml:"type" json:"type"`
	Title    string    `yaml:"title" json:"title"`
	Author   []CSLName `yaml:"author,omitempty" json:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty" json:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty" json:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty" json:"URL,omitempty"`
	Keyword  string    `yaml:"keyword,omitempty" json:"keyword,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty" json:"family,omitempty"`
	Given   string `yaml:"given,omitempty" json:"given,omitempty"`
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts" json:"date-parts"`
}

// WriteCSL writes studies as a CSL-YAML list to w.
func WriteCSL(w io.Writer, studies []types.Study) error {
	items := make([]CSLItem, len(studies))
	for i, s := range studies {
		items[i] = ToCSLItem(s)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a study to a CSL article entry. Only the year is
// known, so issued carries a single date part.
func ToCSLItem(s types.Study) CSLItem {
	item := CSLItem{
		ID:       s.ID,
		Type:     "article-journal",
		Title:    s.Title,
		Abstract: s.Abstract,
		DOI:      s.DOIValue(),
		URL:      s.URL,
		Keyword:  strings.Join(s.Keywords, ", "),
	}
	for _, a := range s.Authors {
		if n := parseAuthorName(a); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}
	if s.HasYear() {
		item.Issued = &CSLDate{DateParts: [][]int{{*s.Year}}}
	}
	if item.DOI == "" && strings.HasPrefix(s.ID, "10.") {
		item.DOI = s.ID
	}
	return item
}

// parseAuthorName splits a name into CSL family and given parts. A comma
// means "Family, Given"; otherwise the last space separates given names
// from the family name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		family, given = strings.TrimSpace(family), strings.TrimSpace(given)
		if given == "" {
			return CSLName{Literal: family}
		}
		return CSLName{Family: family, Given: given}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
