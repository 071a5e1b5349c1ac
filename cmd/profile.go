package main

import (
	"context"
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/repositories"
	"github.com/JuezFenix/bgg-profiler/internal/services"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/JuezFenix/bgg-profiler/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Profile fetches the collection and every game, then renders the report.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	return r.profile(ctx, cmd, false)
}

// Render rebuilds the report from the collection file and game cache without touching the network.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	return r.profile(ctx, cmd, true)
}

func (r *Runner) profile(ctx context.Context, cmd *cli.Command, offline bool) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := applyOverrides(cmd, config); err != nil {
		return err
	}

	opts := tasks.ProfileOptsFromConfig(config)
	opts.Offline = offline

	var catalog services.Catalog
	if !offline {
		catalog = r.loadCatalog(config)
	}

	var recorder tasks.Recorder
	if config.Database.Record && !cmd.Bool("no-record") {
		db, closeDB, err := r.openDB(config)
		if err != nil {
			r.logger.Warn("run history disabled", "error", err)
		} else {
			defer closeDB()
			recorder = repositories.NewRunRecorder(db)
		}
	}

	engine := tasks.NewProfileEngine(catalog, recorder, r.logger)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("profile failed: %w", err)
	}

	r.writeSummary(result)

	if cmd.Bool("open") {
		if err := r.opener(result.ReportPath); err != nil {
			r.logger.Warn("failed to open report", "path", result.ReportPath, "error", err)
		}
	}
	return nil
}

// applyOverrides copies command-line overrides onto config and re-validates it.
func applyOverrides(cmd *cli.Command, config *shared.Config) error {
	if v := cmd.String("username"); v != "" {
		config.User.Username = v
	}
	if v := cmd.String("state"); v != "" {
		config.Settings.State = v
	}
	if v := cmd.String("template"); v != "" {
		config.Settings.Templates = v
	}
	if v := cmd.String("format"); v != "" {
		config.Settings.Format = v
	}
	if v := cmd.String("output-dir"); v != "" {
		config.Settings.OutputDir = v
	}
	return config.Validate()
}

// printProgress writes one line per progress update until progress is closed.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progress {
		if update.Phase == tasks.FetchGames && update.Total > 0 {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			continue
		}
		r.writePlain("%s\n", update.Message)
	}
}

func (r *Runner) writeSummary(result *tasks.ProfileResult) {
	r.writePlainln("")
	r.writePlainHeader("Profile Summary")
	r.writePlain("Games:      %d\n", len(result.Details))
	r.writePlain("Cache hits: %d\n", result.CacheHits)
	r.writePlain("Fetched:    %d\n", result.Fetched)
	r.writePlain("Skipped:    %d\n", len(result.Skipped))
	for _, s := range result.Skipped {
		r.writePlain("  ✗ %s (%s): %v\n", s.Game.Name, s.Game.ID, s.Err)
	}
	r.writePlain("Report:     %s\n", result.ReportPath)
	if result.Run != nil {
		r.writePlain("Run:        %s\n", result.Run.ID)
	}
}

func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "BoardGameGeek username (overrides user.username)",
		},
		&cli.StringFlag{
			Name:  "state",
			Usage: "Collection state: own or wishlist (overrides settings.state)",
		},
		&cli.StringFlag{
			Name:    "template",
			Aliases: []string{"t"},
			Usage:   "Template set name (overrides settings.templates)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: html, csv or markdown (overrides settings.format)",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for the collection file, game cache and report",
		},
		&cli.BoolFlag{
			Name:  "no-record",
			Usage: "Do not record this run in the history database",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the report in the system browser when done",
		},
	}
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Fetch a collection and every game, then render the report",
		Flags:  profileFlags(),
		Action: r.Profile,
	}
}

func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "render",
		Usage:  "Re-render the report from files already on disk (no network)",
		Flags:  profileFlags(),
		Action: r.Render,
	}
}
