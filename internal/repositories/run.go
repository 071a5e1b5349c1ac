package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
)

const runColumns = `id, username, state, template, report_path, game_count, skipped_count, cache_hits, created_at`

// RunRepository persists [models.Run] summaries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run, generating an ID and timestamp when they are unset
func (r *RunRepository) Create(run *models.Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if run.Username == "" {
		return fmt.Errorf("%w: run username is required", shared.ErrMissingArgument)
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Username,
		run.State,
		run.Template,
		run.ReportPath,
		run.GameCount,
		run.SkippedCount,
		run.CacheHits,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "run", id)
	}
	return run, nil
}

// Latest retrieves the most recent run for username, or for any user when username is empty
func (r *RunRepository) Latest(username string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT 1`

	run, err := scanRun(r.db.QueryRow(query, args...))
	if err != nil {
		return nil, notFound(err, "run for user", username)
	}
	return run, nil
}

// List retrieves runs newest first, optionally filtered by username. A non-positive limit returns every run.
func (r *RunRepository) List(username string, limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}

	if username != "" {
		query += " WHERE username = ?"
		args = append(args, username)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Delete removes a run and, through the foreign key, its rows
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run %s", shared.ErrNotFound, id)
	}

	return nil
}

func scanRun(s scanner) (*models.Run, error) {
	var run models.Run
	err := s.Scan(
		&run.ID,
		&run.Username,
		&run.State,
		&run.Template,
		&run.ReportPath,
		&run.GameCount,
		&run.SkippedCount,
		&run.CacheHits,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
