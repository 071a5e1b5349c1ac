package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/repositories"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/JuezFenix/bgg-profiler/internal/tasks"
	"github.com/JuezFenix/bgg-profiler/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal UI over the games of the latest recorded run.
//
// With --refresh a profile run is performed first and its progress shown in the TUI.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, closeDB, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer closeDB()

	var loader ui.Loader
	if cmd.Bool("refresh") {
		loader = r.profileLoader(config, repositories.NewRunRecorder(db))
	} else {
		loader = historyLoader(db, config.User.Username)
	}

	model := ui.NewModel(ctx, loader, r.opener)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// historyLoader loads the rows of the latest run recorded for username.
func historyLoader(db *sql.DB, username string) ui.Loader {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (ui.Snapshot, error) {
		run, details, err := loadRunGames(db, "", username)
		if err != nil {
			return ui.Snapshot{}, fmt.Errorf("no recorded run for %s (run 'bggp profile' first): %w", username, err)
		}
		return ui.Snapshot{
			Title:   fmt.Sprintf("%s's board games (%s)", run.Username, run.State),
			Details: details,
		}, nil
	}
}

// profileLoader runs a full profile and browses its result.
func (r *Runner) profileLoader(config *shared.Config, recorder tasks.Recorder) ui.Loader {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (ui.Snapshot, error) {
		engine := tasks.NewProfileEngine(r.loadCatalog(config), recorder, r.logger)
		result, err := engine.Run(ctx, tasks.ProfileOptsFromConfig(config), progress)
		if err != nil {
			return ui.Snapshot{}, err
		}
		return ui.Snapshot{
			Title:   fmt.Sprintf("%s's board games (%s)", result.Run.Username, result.Run.State),
			Details: result.Details,
		}, nil
	}
}

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the latest run's games in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Run a profile first instead of reading the latest recorded run",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI is running",
				Value: "./tmp/bggp-tui.log",
			},
		},
		Action: r.Browse,
	}
}
