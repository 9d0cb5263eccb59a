// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

func sampleStudies() []types.Study {
	return []types.Study{
		{
			ID:             "OSD-001",
			Title:          "Transcriptional Response of Human Cells to Microgravity",
			Authors:        []string{"Smith, J.", "Johnson, M."},
			Year:           types.IntPtr(2019),
			DOI:            types.StringPtr("10.1038/s41598-019-42345-1"),
			URL:            "https://osdr.nasa.gov/bio/repo/data/studies/OSD-001",
			Mission:        "ISS Expedition 45",
			Species:        types.SpeciesSet{"Homo sapiens"},
			Outcomes:       []types.OutcomeType{types.OutcomePositive, types.OutcomeMixed},
			Keywords:       []string{"microgravity", "gene expression"},
			RelevanceScore: 0.95,
			Summary:        "Gene expression, under \"stress\".",
		},
		{
			ID:             "10.1000/xyz",
			Title:          "Untitled",
			Authors:        []string{},
			RelevanceScore: 0.9,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"csv", FormatCSV, false},
		{" JSON ", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"csl", FormatCSL, false},
		{"xlsx", FormatXLSX, false},
		{"bibtex", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, ".csl.yaml", FormatCSL.Extension())
	assert.Equal(t, ".csv", FormatCSV.Extension())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleStudies()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])

	first := records[1]
	assert.Equal(t, "OSD-001", first[0])
	assert.Equal(t, "Smith, J.; Johnson, M.", first[2])
	assert.Equal(t, "2019", first[3])
	assert.Equal(t, "positive; mixed", first[8])
	assert.Equal(t, "0.95", first[10])
	assert.Equal(t, `Gene expression, under "stress".`, first[11])

	assert.Equal(t, "", records[2][3], "unknown year stays blank")
	assert.Equal(t, "", records[2][4])
}

func TestWriteCSV_OnlyPresentColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []types.Study{
		{ID: "a", Title: "A", Year: types.IntPtr(2020), RelevanceScore: 0.5},
		{ID: "b", Title: "B, with comma"},
	}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "year", "relevance_score"}, records[0])
	assert.Equal(t, []string{"b", "B, with comma", "", "0.00"}, records[2])
}

func TestWriteJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleStudies()))
	var got []types.Study
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Nil(t, got[1].Year)
	assert.Nil(t, got[1].DOI)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, sampleStudies()))
	assert.Contains(t, buf.String(), "id: OSD-001")
}

func TestWriteCSL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSL, sampleStudies()))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "article-journal", items[0].Type)
	assert.Equal(t, "10.1038/s41598-019-42345-1", items[0].DOI)
	require.Len(t, items[0].Author, 2)
	assert.Equal(t, CSLName{Family: "Smith", Given: "J."}, items[0].Author[0])
	require.NotNil(t, items[0].Issued)
	assert.Equal(t, [][]int{{2019}}, items[0].Issued.DateParts)

	assert.Equal(t, "10.1000/xyz", items[1].DOI, "DOI-shaped id is used as DOI")
	assert.Nil(t, items[1].Issued)
	assert.True(t, strings.Contains(buf.String(), "date-parts"))
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Smith, J.", CSLName{Family: "Smith", Given: "J."}},
		{"Jane Q. Public", CSLName{Given: "Jane Q.", Family: "Public"}},
		{"NASA", CSLName{Literal: "NASA"}},
		{"Consortium,", CSLName{Literal: "Consortium"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAuthorName(tt.in), tt.in)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleStudies()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "OSD-001", rows[1][0])
	assert.Equal(t, "2019", rows[1][3])
}
