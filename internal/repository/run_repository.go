package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/remark-server/internal/repository/models"
)

var ErrNotFound = errors.New("run not found")

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Schema creates the tables RunRepository reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	subject      TEXT NOT NULL,
	lesson       TEXT NOT NULL,
	fallback     TEXT NOT NULL,
	source       TEXT NOT NULL,
	raw_text     TEXT NOT NULL,
	unclassified INTEGER NOT NULL DEFAULT 0,
	leftover     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_rows (
	run_id    TEXT NOT NULL,
	row_index INTEGER NOT NULL,
	score     TEXT NOT NULL,
	band      TEXT NOT NULL,
	remark    TEXT NOT NULL,
	fallback  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, row_index),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores a run and all of its rows in one transaction.
func (s *RunRepository) SaveRun(ctx context.Context, run models.Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveRun: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertRun = `
		INSERT INTO runs (id, subject, lesson, fallback, source, raw_text, unclassified, leftover, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err = tx.ExecContext(ctx, insertRun,
		run.ID, run.Subject, run.Lesson, run.Fallback, run.Source, run.RawText,
		run.Unclassified, run.Leftover, run.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rows (run_id, row_index, score, band, remark, fallback)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare run_rows insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Rows {
		if _, err = stmt.ExecContext(ctx, run.ID, r.Index, r.Score, r.Band, r.Remark, r.Fallback); err != nil {
			return fmt.Errorf("insert run row %d: %w", r.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveRun: %w", err)
	}
	return nil
}

// GetRun loads a run with its rows in roster order.
func (s *RunRepository) GetRun(ctx context.Context, id string) (models.Run, error) {
	const query = `
		SELECT id, subject, lesson, fallback, source, raw_text, unclassified, leftover, created_at
		FROM runs
		WHERE id = ?
	`

	var run models.Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Subject, &run.Lesson, &run.Fallback, &run.Source, &run.RawText,
		&run.Unclassified, &run.Leftover, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Run{}, ErrNotFound
		}
		return models.Run{}, fmt.Errorf("query GetRun: %w", err)
	}
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Run{}, fmt.Errorf("parse created_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT row_index, score, band, remark, fallback
		FROM run_rows
		WHERE run_id = ?
		ORDER BY row_index
	`, id)
	if err != nil {
		return models.Run{}, fmt.Errorf("query GetRun rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.RunRow
		if err := rows.Scan(&r.Index, &r.Score, &r.Band, &r.Remark, &r.Fallback); err != nil {
			return models.Run{}, fmt.Errorf("scan GetRun row: %w", err)
		}
		run.Rows = append(run.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return models.Run{}, fmt.Errorf("iterate GetRun rows: %w", err)
	}

	return run, nil
}

// GetBandCounts aggregates a run's rows per band in SQL.
func (s *RunRepository) GetBandCounts(ctx context.Context, id string) ([]models.BandCount, error) {
	const query = `
		SELECT band, COUNT(*) AS row_count, COALESCE(SUM(fallback), 0) AS fallbacks
		FROM run_rows
		WHERE run_id = ?
		GROUP BY band
		ORDER BY band
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query GetBandCounts: %w", err)
	}
	defer rows.Close()

	var results []models.BandCount
	for rows.Next() {
		var bc models.BandCount
		if err := rows.Scan(&bc.Band, &bc.Rows, &bc.Fallbacks); err != nil {
			return nil, fmt.Errorf("scan GetBandCounts row: %w", err)
		}
		results = append(results, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetBandCounts: %w", err)
	}
	return results, nil
}

// ListRuns returns the most recent runs first.
func (s *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	const query = `
		SELECT
			r.id, r.subject, r.lesson, r.source, r.created_at,
			COUNT(rr.row_index) AS row_count,
			COALESCE(SUM(rr.fallback), 0) AS fallbacks
		FROM runs AS r
		LEFT JOIN run_rows AS rr ON rr.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListRuns: %w", err)
	}
	defer rows.Close()

	var results []models.RunSummary
	for rows.Next() {
		var rs models.RunSummary
		var createdAt string
		if err := rows.Scan(&rs.ID, &rs.Subject, &rs.Lesson, &rs.Source, &createdAt, &rs.Rows, &rs.Fallbacks); err != nil {
			return nil, fmt.Errorf("scan ListRuns row: %w", err)
		}
		if rs.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		results = append(results, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRuns: %w", err)
	}
	return results, nil
}
