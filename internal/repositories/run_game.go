package repositories

import (
	"database/sql"
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
)

// GameRepository persists the extracted rows of a run.
type GameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository with the given database connection
func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

// CreateBatch inserts details for runID in one transaction, keeping their order as position
func (r *GameRepository) CreateBatch(runID string, details []models.GameDetails) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_games (
			id, run_id, position, game_id, name, url, thumbnail, min_players, max_players,
			ideal_players, playing_time, weight, min_age, year_published
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range details {
		_, err := stmt.Exec(
			shared.GenerateID(),
			runID,
			i,
			d.ID,
			d.Name,
			d.URL,
			d.Thumbnail,
			d.MinPlayers,
			d.MaxPlayers,
			d.IdealPlayers,
			d.PlayingTime,
			d.Weight,
			d.MinAge,
			d.YearPublished,
		)
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit games: %w", err)
	}

	return nil
}

// ListByRun retrieves the rows of a run in their recorded order
func (r *GameRepository) ListByRun(runID string) ([]models.GameDetails, error) {
	query := `
		SELECT game_id, name, url, thumbnail, min_players, max_players,
			ideal_players, playing_time, weight, min_age, year_published
		FROM run_games
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var details []models.GameDetails
	for rows.Next() {
		var d models.GameDetails
		err := rows.Scan(
			&d.ID, &d.Name, &d.URL, &d.Thumbnail, &d.MinPlayers, &d.MaxPlayers,
			&d.IdealPlayers, &d.PlayingTime, &d.Weight, &d.MinAge, &d.YearPublished,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return details, nil
}
