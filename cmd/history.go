package main

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/repositories"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyDB opens the run history database and resolves the user filter.
//
// --username wins over user.username; --all clears the filter.
func (r *Runner) historyDB(cmd *cli.Command) (*sql.DB, func(), string, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		r.logger.Debug("history using default configuration", "error", err)
		config = shared.DefaultConfig()
	}

	db, closeDB, err := r.openDB(config)
	if err != nil {
		return nil, nil, "", err
	}

	username := cmd.String("username")
	if username == "" {
		username = config.User.Username
	}
	if cmd.Bool("all") {
		username = ""
	}
	return db, closeDB, username, nil
}

// HistoryRuns lists recorded runs, newest first.
func (r *Runner) HistoryRuns(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, username, err := r.historyDB(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := repositories.NewRunRepository(db).List(username, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No recorded runs\n")
		return nil
	}

	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tUSER\tSTATE\tGAMES\tSKIPPED\tCACHED\tREPORT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.Username, run.State,
			run.GameCount, run.SkippedCount, run.CacheHits, run.ReportPath)
	}
	return w.Flush()
}

// HistoryGames lists the rows recorded for a run, the latest one when no ID is given.
func (r *Runner) HistoryGames(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, username, err := r.historyDB(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	run, details, err := loadRunGames(db, cmd.StringArg("id"), username)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Run   *models.Run          `json:"run"`
			Games []models.GameDetails `json:"games"`
		}{run, details}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s's board games (%s), run %s", run.Username, run.State, run.ID))
	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPLAYERS\tIDEAL\tTIME\tWEIGHT\tAGE\tYEAR")
	for _, d := range details {
		fmt.Fprintf(w, "%s\t%s\t%s–%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, d.MinPlayers, d.MaxPlayers, d.IdealPlayers, d.PlayingTime, d.Weight, d.MinAge, d.YearPublished)
	}
	return w.Flush()
}

// loadRunGames returns run id (or the latest run for username) with its recorded rows.
func loadRunGames(db *sql.DB, id, username string) (*models.Run, []models.GameDetails, error) {
	runs := repositories.NewRunRepository(db)

	var run *models.Run
	var err error
	if id != "" {
		run, err = runs.Get(id)
	} else {
		run, err = runs.Latest(username)
	}
	if err != nil {
		return nil, nil, err
	}

	details, err := repositories.NewGameRepository(db).ListByRun(run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list games for run %s: %w", run.ID, err)
	}
	return run, details, nil
}

func historyFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Only runs for this user (defaults to user.username)",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Include runs for every user",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON",
		},
	}, extra...)
}

// historyCommand queries the run history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded profile runs",
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List recorded runs, newest first",
				Flags: historyFlags(&cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of runs to show (0 for all)",
					Value: 20,
				}),
				Action: r.HistoryRuns,
			},
			{
				Name:  "games",
				Usage: "List the games recorded for a run (defaults to the latest)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  historyFlags(),
				Action: r.HistoryGames,
			},
		},
	}
}
