package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/JuezFenix/bgg-profiler/internal/repositories"
	"github.com/JuezFenix/bgg-profiler/internal/server"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/urfave/cli/v3"
)

// newRouter wires the report files and, when history is non-nil, the run history API.
func (r *Runner) newRouter(config *shared.Config, history *repositoriesPair) *server.BasicRouter {
	layout := shared.NewLayout(config)

	router := server.NewBasicRouter()
	router.Use(server.RecoverMiddleware(r.logger), server.LoggingMiddleware(r.logger))

	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	}))
	router.Handler(server.NewReportHandler(layout.Dir, filepath.Base(layout.ReportFile(config.Settings.Format))))
	if history != nil {
		router.Handler(server.NewHistoryHandler(history.runs, history.games))
	}
	return router
}

type repositoriesPair struct {
	runs  *repositories.RunRepository
	games *repositories.GameRepository
}

// Serve serves the output directory over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if v := cmd.String("host"); v != "" {
		config.Server.Host = v
	}
	if v := cmd.Int("port"); v != 0 {
		config.Server.Port = int(v)
	}

	var history *repositoriesPair
	if db, closeDB, err := r.openDB(config); err != nil {
		r.logger.Warn("run history API disabled", "error", err)
	} else {
		defer closeDB()
		history = &repositoriesPair{
			runs:  repositories.NewRunRepository(db),
			games: repositories.NewGameRepository(db),
		}
	}

	router := r.newRouter(config, history)
	addr := config.Server.Addr()
	url := "http://" + net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port)) + "/"

	ready := func() {
		r.writePlain("Serving %s on %s (Ctrl-C to stop)\n", shared.NewLayout(config).Dir, url)
		if cmd.Bool("open") {
			if err := r.opener(url); err != nil {
				r.logger.Warn("failed to open browser", "url", url, "error", err)
			}
		}
	}

	if err := server.Serve(ctx, addr, router, r.logger, ready); err != nil {
		return fmt.Errorf("failed to serve reports: %w", err)
	}
	return nil
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generated report and run history over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the served report in the system browser",
			},
		},
		Action: r.Serve,
	}
}
