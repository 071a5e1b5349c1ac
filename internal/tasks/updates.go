package tasks

import (
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCollection Phase = iota
	SaveCollection
	ParseCollection
	FetchGames
	RenderReport
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case SaveCollection:
		return "save_collection"
	case ParseCollection:
		return "parse_collection"
	case FetchGames:
		return "fetch_games"
	case RenderReport:
		return "render_report"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

func fetchCollectionUpdate(username, state string, offline bool) ProgressUpdate {
	msg := fmt.Sprintf("Fetching %s collection for %s...", state, username)
	if offline {
		msg = fmt.Sprintf("Reading cached %s collection for %s...", state, username)
	}
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func saveCollectionUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCollection,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving collection to %s...", path),
		Data:    path,
	}
}

func parseCollectionUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseCollection,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d games", count),
		Data:    count,
	}
}

func gameUpdate(step, total int, game models.Game, cached bool) ProgressUpdate {
	source := "Fetching"
	if cached {
		source = "Reading cached"
	}
	return ProgressUpdate{
		Phase:   FetchGames,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %s (%s)...", source, game.Name, game.ID),
		Data:    game,
	}
}

func skippedGameUpdate(step, total int, skip SkippedGame) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGames,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Skipped %s (%s): %v", skip.Game.Name, skip.Game.ID, skip.Err),
		Data:    skip,
	}
}

func renderReportUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderReport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rendering %d games to %s...", count, path),
		Data:    path,
	}
}

func recordRunUpdate(run *models.Run) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recording run %s...", run.ID),
		Data:    run,
	}
}
