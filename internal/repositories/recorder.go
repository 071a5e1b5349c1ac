package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/models"
)

// RunRecorder implements tasks.Recorder using [RunRepository] and [GameRepository].
type RunRecorder struct {
	runs  *RunRepository
	games *GameRepository
}

// NewRunRecorder creates a RunRecorder backed by db
func NewRunRecorder(db *sql.DB) *RunRecorder {
	return &RunRecorder{runs: NewRunRepository(db), games: NewGameRepository(db)}
}

// RecordRun stores the run summary followed by its rows.
// If the rows cannot be stored the summary is removed again so history never shows a run without games.
func (a *RunRecorder) RecordRun(ctx context.Context, run *models.Run, details []models.GameDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := a.games.CreateBatch(run.ID, details); err != nil {
		if delErr := a.runs.Delete(run.ID); delErr != nil {
			return fmt.Errorf("failed to record games: %w (cleanup: %v)", err, delErr)
		}
		return fmt.Errorf("failed to record games: %w", err)
	}

	return nil
}
