package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"tradenet/models"
	"tradenet/utils"
)

const postgresColumns = 7

// PostgresWriter persists link tables to PostgreSQL, tagged with a run id.
type PostgresWriter struct {
	db     *sql.DB
	runID  string
	layout *models.LinkTable
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. The first ping is retried.
func NewPostgresWriter(dsn, runID string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ping := func() error { return pingError(db.Ping()) }
	if err := retry.Do("postgres ping", ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

// pingError marks failures that waiting will not fix, bad credentials or a
// missing database, as permanent so the ping stops retrying.
func pingError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "28", "3D":
			return utils.Permanent(err)
		}
	}
	return err
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS link_runs (
			run_id      UUID        PRIMARY KEY,
			has_product BOOLEAN     NOT NULL,
			has_year    BOOLEAN     NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS bilateral_links (
			id     BIGSERIAL        PRIMARY KEY,
			run_id UUID             NOT NULL REFERENCES link_runs(run_id) ON DELETE CASCADE,
			year   INTEGER,
			i      VARCHAR(8)       NOT NULL,
			j      VARCHAR(8)       NOT NULL,
			k      CHAR(6),
			v      DOUBLE PRECISION NOT NULL,
			q      DOUBLE PRECISION
		);

		CREATE INDEX IF NOT EXISTS idx_bilateral_links_run  ON bilateral_links(run_id);
		CREATE INDEX IF NOT EXISTS idx_bilateral_links_pair ON bilateral_links(i, j);
	`)
	return err
}

// RunID identifies the rows written by this writer.
func (pw *PostgresWriter) RunID() string {
	return pw.runID
}

// Write batch-inserts the table's rows in one transaction.
func (pw *PostgresWriter) Write(table *models.LinkTable) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if pw.layout == nil {
		if _, err := tx.Exec(`INSERT INTO link_runs (run_id, has_product, has_year) VALUES ($1, $2, $3)`,
			pw.runID, table.HasProduct, table.HasYear); err != nil {
			return fmt.Errorf("postgres: register run: %w", err)
		}
	} else if pw.layout.HasProduct != table.HasProduct || pw.layout.HasYear != table.HasYear {
		return fmt.Errorf("postgres: table layout %v does not match run layout %v", table.Columns(), pw.layout.Columns())
	}

	const batchSize = 500
	for i := 0; i < len(table.Links); i += batchSize {
		end := i + batchSize
		if end > len(table.Links) {
			end = len(table.Links)
		}
		query, args := buildInsert(pw.runID, table, table.Links[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	pw.layout = &models.LinkTable{HasProduct: table.HasProduct, HasYear: table.HasYear}
	return nil
}

func buildInsert(runID string, table *models.LinkTable, batch []models.Link) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*postgresColumns)

	for idx, l := range batch {
		base := idx * postgresColumns
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		year, k, q := nullableColumns(table, l)
		valueArgs = append(valueArgs, runID, year, l.Source, l.Target, k, l.Value, q)
	}

	query := fmt.Sprintf(`
		INSERT INTO bilateral_links (run_id, year, i, j, k, v, q)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// FetchRun retrieves every row of a run in insertion order.
func (pw *PostgresWriter) FetchRun(runID string) (*models.LinkTable, error) {
	table := &models.LinkTable{}
	err := pw.db.QueryRow(`SELECT has_product, has_year FROM link_runs WHERE run_id = $1`, runID).
		Scan(&table.HasProduct, &table.HasYear)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("postgres: %w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run %s: %w", runID, err)
	}

	rows, err := pw.db.Query(`
		SELECT year, i, j, k, v, q
		FROM bilateral_links
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch links: %w", err)
	}
	defer rows.Close()

	links, err := scanLinks(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	table.Links = links
	return table, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
