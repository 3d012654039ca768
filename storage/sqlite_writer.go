package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tradenet/models"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS link_runs (
		run_id      TEXT    PRIMARY KEY,
		has_product INTEGER NOT NULL,
		has_year    INTEGER NOT NULL,
		created_at  TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bilateral_links (
		run_id TEXT    NOT NULL REFERENCES link_runs(run_id),
		year   INTEGER,
		i      TEXT    NOT NULL,
		j      TEXT    NOT NULL,
		k      TEXT,
		v      REAL    NOT NULL,
		q      REAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bilateral_links_run ON bilateral_links(run_id)`,
}

// SQLiteWriter stores link tables in a local SQLite file, one run per writer.
type SQLiteWriter struct {
	db     *sql.DB
	runID  string
	layout *models.LinkTable
}

// NewSQLiteWriter opens (or creates) the database at path and migrates it.
func NewSQLiteWriter(path, runID string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return &SQLiteWriter{db: db, runID: runID}, nil
}

// RunID identifies the rows written by this writer.
func (s *SQLiteWriter) RunID() string {
	return s.runID
}

// Write inserts the table's rows in one transaction.
func (s *SQLiteWriter) Write(table *models.LinkTable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if s.layout == nil {
		if _, err := tx.Exec(`INSERT INTO link_runs (run_id, has_product, has_year) VALUES (?, ?, ?)`,
			s.runID, table.HasProduct, table.HasYear); err != nil {
			return fmt.Errorf("sqlite: register run: %w", err)
		}
	} else if s.layout.HasProduct != table.HasProduct || s.layout.HasYear != table.HasYear {
		return fmt.Errorf("sqlite: table layout %v does not match run layout %v", table.Columns(), s.layout.Columns())
	}

	stmt, err := tx.Prepare(`INSERT INTO bilateral_links (run_id, year, i, j, k, v, q) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range table.Links {
		year, k, q := nullableColumns(table, l)
		if _, err := stmt.Exec(s.runID, year, l.Source, l.Target, k, l.Value, q); err != nil {
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	s.layout = &models.LinkTable{HasProduct: table.HasProduct, HasYear: table.HasYear}
	return nil
}

// FetchRun reads back every row of a run in insertion order.
func (s *SQLiteWriter) FetchRun(runID string) (*models.LinkTable, error) {
	table := &models.LinkTable{}
	err := s.db.QueryRow(`SELECT has_product, has_year FROM link_runs WHERE run_id = ?`, runID).
		Scan(&table.HasProduct, &table.HasYear)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: %w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch run %s: %w", runID, err)
	}

	rows, err := s.db.Query(`
		SELECT year, i, j, k, v, q
		FROM bilateral_links
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch links: %w", err)
	}
	defer rows.Close()

	links, err := scanLinks(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	table.Links = links
	return table, nil
}

func (s *SQLiteWriter) Close() error {
	return s.db.Close()
}

// nullableColumns returns the columns that are NULL when the layout omits them.
func nullableColumns(t *models.LinkTable, l models.Link) (year sql.NullInt64, k sql.NullString, q sql.NullFloat64) {
	if t.HasYear {
		year = sql.NullInt64{Int64: int64(l.Year), Valid: true}
	}
	if t.HasProduct {
		k = sql.NullString{String: l.Product, Valid: true}
		q = sql.NullFloat64{Float64: l.Quantity, Valid: true}
	}
	return year, k, q
}

func scanLinks(rows *sql.Rows) ([]models.Link, error) {
	var links []models.Link
	for rows.Next() {
		var (
			l    models.Link
			year sql.NullInt64
			k    sql.NullString
			q    sql.NullFloat64
		)
		if err := rows.Scan(&year, &l.Source, &l.Target, &k, &l.Value, &q); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		l.Year = int(year.Int64)
		l.Product = k.String
		l.Quantity = q.Float64
		links = append(links, l)
	}
	return links, rows.Err()
}
