// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// SearchOptions holds parameters for archive queries.
type SearchOptions struct {
	// Query is an FTS5 match expression over title, abstract and keywords.
	Query string

	// Mission filters by exact mission name.
	Mission string

	// Species filters by organism; every listed species must be present.
	Species []string

	// YearFrom and YearTo bound the publication year, inclusive. Zero is
	// unbounded.
	YearFrom int
	YearTo   int

	// MaxResults limits the result count. Zero uses DefaultMaxResults.
	MaxResults int
}

// Search queries the archive. Full-text queries are ranked by FTS5
// relevance; filter-only queries are ordered by year, newest first, then
// id. An empty SearchOptions lists the archive.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]types.Study, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = strings.TrimSpace(opts.Query) != ""
	)
	if useFTS {
		qb.WriteString(`SELECT ` + prefixed("s.") + `, studies_fts.rank AS rank
			FROM studies_fts
			JOIN studies s ON s.rowid = studies_fts.rowid
			WHERE studies_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + prefixed("s.") + `, NULL AS rank FROM studies s WHERE 1=1`)
	}

	if opts.Mission != "" {
		qb.WriteString(` AND s.mission = ?`)
		args = append(args, opts.Mission)
	}
	for _, sp := range opts.Species {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(s.species) WHERE value = ?)`)
		args = append(args, sp)
	}
	if opts.YearFrom > 0 {
		qb.WriteString(` AND s.year >= ?`)
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo > 0 {
		qb.WriteString(` AND s.year <= ?`)
		args = append(args, opts.YearTo)
	}

	if useFTS {
		qb.WriteString(` ORDER BY studies_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY s.year IS NULL, s.year DESC, s.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, qb.String(), args...); err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}

	out := make([]types.Study, 0, len(rows))
	for _, r := range rows {
		st, err := r.study()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func prefixed(p string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = p + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
