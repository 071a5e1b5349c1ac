// package tasks implements the collection profiling pipeline.
//
// The core abstraction is ProfileEngine, which fetches a collection, resolves every game through the on-disk cache or the API,
// and renders the report. Progress updates are emitted via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JuezFenix/bgg-profiler/internal/bggxml"
	"github.com/JuezFenix/bgg-profiler/internal/cache"
	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/report"
	"github.com/JuezFenix/bgg-profiler/internal/services"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Recorder persists a finished run with its extracted rows.
//
// Implemented by repositories.RunRecorder.
type Recorder interface {
	RecordRun(ctx context.Context, run *models.Run, details []models.GameDetails) error
}

// ProfileOpts selects what a run fetches and where it writes.
type ProfileOpts struct {
	Layout          shared.Layout // on-disk paths derived from output dir, username and state
	TemplatesDir    string
	Template        string
	Format          string        // html (default), csv or markdown
	RequestInterval time.Duration // minimum spacing between network game fetches
	Offline         bool          // only use files already on disk
}

// ProfileOptsFromConfig builds [ProfileOpts] from the loaded configuration.
func ProfileOptsFromConfig(c *shared.Config) ProfileOpts {
	return ProfileOpts{
		Layout:          shared.NewLayout(c),
		TemplatesDir:    c.Settings.TemplatesDir,
		Template:        c.Settings.Templates,
		Format:          c.Settings.Format,
		RequestInterval: c.API.RequestInterval,
	}
}

// SkippedGame is a game left out of the report and why.
type SkippedGame struct {
	Game models.Game
	Err  error
}

// ProfileResult contains all data from a profile run.
type ProfileResult struct {
	Run        *models.Run          // Summary of the run (recorded when a Recorder is configured)
	Collection *models.Collection   // Parsed collection in document order
	Details    []models.GameDetails // Extracted rows in collection order
	Skipped    []SkippedGame        // Games that could not be fetched or extracted
	CacheHits  int                  // Games read from the per-game cache
	Fetched    int                  // Games downloaded during this run
	ReportPath string               // Written report
}

// ProfileEngine drives a profile run from collection fetch to rendered report.
type ProfileEngine struct {
	catalog  services.Catalog
	recorder Recorder
	logger   *log.Logger
}

// NewProfileEngine creates a ProfileEngine. The recorder may be nil; the catalog may be nil for offline runs.
func NewProfileEngine(catalog services.Catalog, recorder Recorder, logger *log.Logger) *ProfileEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &ProfileEngine{catalog: catalog, recorder: recorder, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ProfileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a full profile: collection, per-game details, report and optional recording.
//
// Steps run strictly in sequence. Per-game failures are collected in [ProfileResult.Skipped]
// and never abort the run; collection and report failures do.
func (e *ProfileEngine) Run(ctx context.Context, opts ProfileOpts, progress chan<- ProgressUpdate) (*ProfileResult, error) {
	if !opts.Offline && e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	l := opts.Layout
	logger := shared.WithLogger(e.logger, "username", l.Username, "state", l.State)

	e.sendProgress(progress, fetchCollectionUpdate(l.Username, l.State, opts.Offline))
	data, err := e.collection(ctx, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Offline {
		e.sendProgress(progress, saveCollectionUpdate(l.CollectionFile()))
		if err := cache.SaveCollection(l.CollectionFile(), data); err != nil {
			return nil, err
		}
		logger.Info("collection saved", "path", l.CollectionFile())
	}

	collection, err := bggxml.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collection: %w", err)
	}
	e.sendProgress(progress, parseCollectionUpdate(collection.Len()))
	logger.Info("collection parsed", "games", collection.Len())

	result := &ProfileResult{Collection: collection}
	if err := e.resolveGames(ctx, opts, collection, result, progress, logger); err != nil {
		return result, err
	}

	result.ReportPath = l.ReportFile(opts.Format)
	e.sendProgress(progress, renderReportUpdate(result.ReportPath, len(result.Details)))

	set := report.LoadTemplateSet(opts.TemplatesDir, opts.Template, logger)
	r := report.Report{Username: l.Username, State: l.State, Games: result.Details}
	if err := report.Write(result.ReportPath, opts.Format, set, r); err != nil {
		return result, err
	}
	logger.Info("report written", "path", result.ReportPath, "games", len(result.Details), "skipped", len(result.Skipped))

	result.Run = &models.Run{
		ID:           shared.GenerateID(),
		Username:     l.Username,
		State:        l.State,
		Template:     opts.Template,
		ReportPath:   result.ReportPath,
		GameCount:    len(result.Details),
		SkippedCount: len(result.Skipped),
		CacheHits:    result.CacheHits,
		CreatedAt:    time.Now().UTC(),
	}

	if e.recorder != nil {
		e.sendProgress(progress, recordRunUpdate(result.Run))
		if err := e.recorder.RecordRun(ctx, result.Run, result.Details); err != nil {
			logger.Warn("failed to record run", "run", result.Run.ID, "error", err)
		}
	}

	return result, nil
}

// collection returns the raw collection document, from the API or, offline, from disk.
func (e *ProfileEngine) collection(ctx context.Context, opts ProfileOpts) ([]byte, error) {
	l := opts.Layout
	if opts.Offline {
		data, err := cache.LoadCollection(l.CollectionFile())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNotFound, err)
		}
		return data, nil
	}
	return e.catalog.FetchCollection(ctx, l.Username, l.State)
}

// resolveGames fills result with the details of every game, in collection order.
func (e *ProfileEngine) resolveGames(
	ctx context.Context,
	opts ProfileOpts,
	collection *models.Collection,
	result *ProfileResult,
	progress chan<- ProgressUpdate,
	logger *log.Logger,
) error {
	games := cache.NewGameCache(opts.Layout.GamesDir())
	if err := games.Ensure(); err != nil {
		return err
	}

	limit := rate.Inf
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	all := collection.Games()
	total := len(all)
	result.Details = make([]models.GameDetails, 0, total)

	skip := func(step int, g models.Game, err error) {
		s := SkippedGame{Game: g, Err: err}
		result.Skipped = append(result.Skipped, s)
		logger.Warn("skipping game", "id", g.ID, "name", g.Name, "error", err)
		e.sendProgress(progress, skippedGameUpdate(step, total, s))
	}

	for i, g := range all {
		step := i + 1
		cached := games.Has(g.ID)
		e.sendProgress(progress, gameUpdate(step, total, g, cached))

		var doc []byte
		var err error
		switch {
		case cached:
			doc, err = games.Load(g.ID)
			if err != nil {
				skip(step, g, err)
				continue
			}
			result.CacheHits++
			logger.Debug("cache hit", "id", g.ID)
		case opts.Offline:
			skip(step, g, fmt.Errorf("%w: not cached", shared.ErrGameUnavailable))
			continue
		default:
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			logger.Info("fetching game", "id", g.ID, "name", g.Name, "step", step, "total", total)
			doc, err = e.catalog.FetchGame(ctx, g.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				skip(step, g, err)
				continue
			}
			if err := games.Save(g.ID, doc); err != nil {
				return err
			}
			result.Fetched++
		}

		details, err := bggxml.ExtractDetails(doc, g)
		if err != nil {
			skip(step, g, err)
			continue
		}
		result.Details = append(result.Details, details)
	}

	return nil
}
