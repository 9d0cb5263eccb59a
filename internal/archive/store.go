// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists exported studies in a local SQLite database
// with an FTS5 index over titles, abstracts and keywords, so saved results
// can be searched offline.
//
// FTS5 needs go-sqlite3 built with the sqlite_fts5 tag.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// DefaultMaxResults caps Search when no limit is given.
const DefaultMaxResults = 20

// ErrNotFound reports a study id absent from the archive.
var ErrNotFound = errors.New("study not in archive")

// Store is an open archive database.
type Store struct {
	db         *sqlx.DB
	maxResults int
}

// Open opens or creates the archive at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	s := &Store{db: db, maxResults: DefaultMaxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS studies (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT NOT NULL DEFAULT '[]',
			year INTEGER,
			doi TEXT,
			url TEXT NOT NULL DEFAULT '',
			mission TEXT NOT NULL DEFAULT '',
			species TEXT NOT NULL DEFAULT '[]',
			outcomes TEXT NOT NULL DEFAULT '[]',
			keywords TEXT NOT NULL DEFAULT '[]',
			abstract TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			relevance_score REAL NOT NULL DEFAULT 0,
			query TEXT NOT NULL DEFAULT '',
			saved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_studies_mission ON studies(mission)`,
		`CREATE INDEX IF NOT EXISTS idx_studies_year ON studies(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.Get(&ftsExists,
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='studies_fts'`,
	); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE studies_fts USING fts5(title, abstract, keywords, content=studies, content_rowid=rowid)`,
		`CREATE TRIGGER studies_ai AFTER INSERT ON studies BEGIN
			INSERT INTO studies_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
		`CREATE TRIGGER studies_ad AFTER DELETE ON studies BEGIN
			INSERT INTO studies_fts(studies_fts, rowid, title, abstract, keywords) VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
		END`,
		`CREATE TRIGGER studies_au AFTER UPDATE ON studies BEGIN
			INSERT INTO studies_fts(studies_fts, rowid, title, abstract, keywords) VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
			INSERT INTO studies_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// SaveSummary counts the outcome of one Save.
type SaveSummary struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Total returns the number of studies processed.
func (s SaveSummary) Total() int { return s.Inserted + s.Updated + s.Skipped }

// row is the database shape of a study.
type row struct {
	ID             string          `db:"id"`
	Title          string          `db:"title"`
	Authors        string          `db:"authors"`
	Year           sql.NullInt64   `db:"year"`
	DOI            sql.NullString  `db:"doi"`
	URL            string          `db:"url"`
	Mission        string          `db:"mission"`
	Species        string          `db:"species"`
	Outcomes       string          `db:"outcomes"`
	Keywords       string          `db:"keywords"`
	Abstract       string          `db:"abstract"`
	Summary        string          `db:"summary"`
	RelevanceScore float64         `db:"relevance_score"`
	Query          string          `db:"query"`
	SavedAt        string          `db:"saved_at"`
	Rank           sql.NullFloat64 `db:"rank"`
}

// Save upserts studies in one transaction, tagging each with the query
// that found it. Studies without an id are skipped.
func (s *Store) Save(ctx context.Context, query string, studies []types.Study) (SaveSummary, error) {
	var summary SaveSummary

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	savedAt := time.Now().UTC().Format(time.RFC3339)
	for _, st := range studies {
		if strings.TrimSpace(st.ID) == "" {
			summary.Skipped++
			continue
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT count(*) FROM studies WHERE id = ?`, st.ID); err != nil {
			return summary, fmt.Errorf("checking study %s: %w", st.ID, err)
		}

		r := toRow(st, query, savedAt)
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO studies (id, title, authors, year, doi, url, mission, species, outcomes,
				keywords, abstract, summary, relevance_score, query, saved_at)
			 VALUES (:id, :title, :authors, :year, :doi, :url, :mission, :species, :outcomes,
				:keywords, :abstract, :summary, :relevance_score, :query, :saved_at)
			 ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, authors=excluded.authors, year=excluded.year, doi=excluded.doi,
				url=excluded.url, mission=excluded.mission, species=excluded.species,
				outcomes=excluded.outcomes, keywords=excluded.keywords, abstract=excluded.abstract,
				summary=excluded.summary, relevance_score=excluded.relevance_score,
				query=excluded.query, saved_at=excluded.saved_at`,
			r)
		if err != nil {
			return summary, fmt.Errorf("saving study %s: %w", st.ID, err)
		}
		if exists > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing archive: %w", err)
	}
	return summary, nil
}

// Get returns the archived study with id.
func (s *Store) Get(ctx context.Context, id string) (types.Study, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT `+columns+`, NULL AS rank FROM studies WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Study{}, fmt.Errorf("study %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Study{}, fmt.Errorf("reading study %s: %w", id, err)
	}
	return r.study()
}

// Count returns the number of archived studies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM studies`); err != nil {
		return 0, fmt.Errorf("counting studies: %w", err)
	}
	return n, nil
}

const columns = `id, title, authors, year, doi, url, mission, species, outcomes,
	keywords, abstract, summary, relevance_score, query, saved_at`

func toRow(st types.Study, query, savedAt string) row {
	r := row{
		ID:             st.ID,
		Title:          st.Title,
		Authors:        mustJSON(st.Authors),
		URL:            st.URL,
		Mission:        st.Mission,
		Species:        mustJSON(st.Species),
		Outcomes:       mustJSON(st.Outcomes),
		Keywords:       mustJSON(st.Keywords),
		Abstract:       st.Abstract,
		Summary:        st.Summary,
		RelevanceScore: st.RelevanceScore,
		Query:          query,
		SavedAt:        savedAt,
	}
	if st.Year != nil {
		r.Year = sql.NullInt64{Int64: int64(*st.Year), Valid: true}
	}
	if st.DOI != nil {
		r.DOI = sql.NullString{String: *st.DOI, Valid: true}
	}
	return r
}

func (r row) study() (types.Study, error) {
	st := types.Study{
		ID:             r.ID,
		Title:          r.Title,
		Authors:        []string{},
		URL:            r.URL,
		Mission:        r.Mission,
		Abstract:       r.Abstract,
		Summary:        r.Summary,
		RelevanceScore: r.RelevanceScore,
	}
	if r.Year.Valid {
		st.Year = types.IntPtr(int(r.Year.Int64))
	}
	if r.DOI.Valid {
		st.DOI = types.StringPtr(r.DOI.String)
	}
	var species []string
	for _, f := range []struct {
		raw string
		dst any
	}{
		{r.Authors, &st.Authors},
		{r.Species, &species},
		{r.Outcomes, &st.Outcomes},
		{r.Keywords, &st.Keywords},
	} {
		if f.raw == "" || f.raw == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return types.Study{}, fmt.Errorf("decoding study %s: %w", r.ID, err)
		}
	}
	if st.Authors == nil {
		st.Authors = []string{}
	}
	if len(species) > 0 {
		st.Species = types.SpeciesSet(species)
	}
	return st, nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return "[]"
	}
	return string(data)
}
