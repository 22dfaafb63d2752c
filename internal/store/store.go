// Package store keeps the SQLite index the catalogue is queried from.
package store

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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/handsomefox/website-catalogue/internal/catalogue"

	_ "modernc.org/sqlite"
)

type Store struct {
	sqldb *sql.DB
	db    *bun.DB
}

type coverRow struct {
	bun.BaseModel `bun:"table:covers,alias:c"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Src         string `bun:"src,notnull"`
	Placeholder string `bun:"placeholder,notnull"`
	Width       int    `bun:"width,notnull"`
	Height      int    `bun:"height,notnull"`
}

type entryRow struct {
	bun.BaseModel `bun:"table:catalogue,alias:a"`

	ID           int64            `bun:"id,pk,autoincrement"`
	Type         string           `bun:"type,notnull"`
	Slug         string           `bun:"slug,notnull"`
	Title        string           `bun:"title,notnull"`
	Author       string           `bun:"author,notnull"`
	CoverID      sql.Null[int64]  `bun:"cover_id,nullzero"`
	Cover        *coverRow        `bun:"rel:belongs-to,join:cover_id=id"`
	Rating       string           `bun:"rating,notnull"`
	FinishedDate sql.Null[string] `bun:"finished_date,nullzero"`
	Platform     sql.Null[string] `bun:"platform,nullzero"`
	SourceID     sql.Null[string] `bun:"source_id,nullzero"`
	Comment      sql.Null[string] `bun:"comment,nullzero"`
	Metadata     sql.Null[string] `bun:"metadata,nullzero"`
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("DB_PATH is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := sqldb.PingContext(ctx); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("ping db: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	if err := initSchema(ctx, sqldb); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("init schema: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	return &Store{sqldb: sqldb, db: bdb}, nil
}

func (s *Store) Close() error { return s.sqldb.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.sqldb.PingContext(ctx) }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS covers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	src TEXT NOT NULL,
	placeholder TEXT NOT NULL,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS catalogue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	slug TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	cover_id INTEGER REFERENCES covers(id),
	rating TEXT NOT NULL,
	finished_date TEXT,
	platform TEXT,
	source_id TEXT,
	comment TEXT,
	metadata TEXT,
	UNIQUE(type, slug)
);
CREATE INDEX IF NOT EXISTS idx_catalogue_type ON catalogue(type);
CREATE INDEX IF NOT EXISTS idx_catalogue_rating ON catalogue(rating);
CREATE INDEX IF NOT EXISTS idx_catalogue_finished_date ON catalogue(finished_date);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceAll swaps the indexed dataset for entries, keeping their order as
// the final tiebreak of every sort.
func (s *Store) ReplaceAll(ctx context.Context, entries []catalogue.Entry) error {
	rows := make([]entryRow, 0, len(entries))
	for i := range entries {
		row, err := toRow(&entries[i])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*entryRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear catalogue: %w", err)
		}
		if _, err := tx.NewDelete().Model((*coverRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear covers: %w", err)
		}

		for i := range rows {
			c := entries[i].Cover
			if c.Src == "" {
				continue
			}
			cover := &coverRow{Src: c.Src, Placeholder: c.Placeholder, Width: c.Width, Height: c.Height}
			_, err := tx.NewInsert().
				Model(cover).
				Column("src", "placeholder", "width", "height").
				Returning("id").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("insert cover for %s: %w", entries[i].ID(), err)
			}
			rows[i].CoverID = sql.Null[int64]{V: cover.ID, Valid: true}
		}

		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().
			Model(&rows).
			Column(
				"type",
				"slug",
				"title",
				"author",
				"cover_id",
				"rating",
				"finished_date",
				"platform",
				"source_id",
				"comment",
				"metadata",
			).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
		return nil
	})
}

// List implements catalogue.Source. Filtering and ordering happen in SQL.
func (s *Store) List(ctx context.Context, f catalogue.Filter) ([]catalogue.Entry, error) {
	var rows []entryRow
	q := s.db.NewSelect().Model(&rows).Relation("Cover")

	if f.Scope != "" {
		q = q.Where("a.type = ?", string(f.Scope))
	}
	if f.Type != "" {
		q = q.Where("a.type = ?", f.Type)
	}
	if f.Rating != "" {
		q = q.Where("a.rating = ?", f.Rating)
	}
	if !f.Before.IsZero() {
		q = q.Where("a.finished_date < ?", f.Before.Format(catalogue.DateLayout))
	}
	if !f.After.IsZero() {
		q = q.Where("a.finished_date > ?", f.After.Format(catalogue.DateLayout))
	}

	switch f.Sort {
	case catalogue.SortAlphabetical:
		q = q.OrderExpr("a.title COLLATE NOCASE ASC, a.finished_date DESC")
	case catalogue.SortRating:
		q = q.OrderExpr(ratingOrder + " ASC, a.finished_date DESC")
	default:
		q = q.OrderExpr("a.finished_date DESC")
	}
	q = q.OrderExpr("a.id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}

	out := make([]catalogue.Entry, 0, len(rows))
	for i := range rows {
		e, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ratingOrder ranks ratings best first and unknown values last.
var ratingOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE a.rating")
	for _, r := range catalogue.Ratings {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", r, r.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", catalogue.Rating("").Rank())
	return b.String()
}()

func toRow(e *catalogue.Entry) (entryRow, error) {
	row := entryRow{
		Type:     string(e.Type),
		Slug:     e.Slug,
		Title:    e.Title,
		Author:   e.Author(),
		Rating:   string(e.Rating),
		Platform: nullString(e.Platform),
		SourceID: nullString(e.SourceID),
		Comment:  nullString(e.Comment),
	}
	if e.Dated() {
		row.FinishedDate = nullString(e.FinishedDate.Format(catalogue.DateLayout))
	}
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return entryRow{}, fmt.Errorf("encode metadata for %s: %w", e.ID(), err)
		}
		row.Metadata = nullString(string(raw))
	}
	return row, nil
}

func fromRow(row *entryRow) (catalogue.Entry, error) {
	e := catalogue.Entry{
		Type:     catalogue.Type(row.Type),
		Slug:     row.Slug,
		Title:    row.Title,
		Rating:   catalogue.Rating(row.Rating),
		Platform: row.Platform.V,
		SourceID: row.SourceID.V,
		Comment:  row.Comment.V,
	}
	if row.FinishedDate.Valid {
		d, err := time.Parse(catalogue.DateLayout, row.FinishedDate.V)
		if err != nil {
			return catalogue.Entry{}, fmt.Errorf("entry %d: finished_date: %w", row.ID, err)
		}
		e.FinishedDate = d
	}
	if row.Cover != nil && row.CoverID.Valid {
		e.Cover = catalogue.Cover{
			Src:         row.Cover.Src,
			Placeholder: row.Cover.Placeholder,
			Width:       row.Cover.Width,
			Height:      row.Cover.Height,
		}
	}
	if row.Metadata.Valid {
		md, err := catalogue.DecodeMetadata(e.Type, []byte(row.Metadata.V))
		if err != nil {
			return catalogue.Entry{}, fmt.Errorf("entry %d: %w", row.ID, err)
		}
		e.Metadata = md
	}
	return e, nil
}

func nullString(val string) sql.Null[string] {
	if strings.TrimSpace(val) == "" {
		return sql.Null[string]{}
	}
	return sql.Null[string]{Valid: true, V: val}
}
