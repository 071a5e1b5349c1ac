package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/JuezFenix/bgg-profiler/internal/cache"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/urfave/cli/v3"
)

type cacheListing struct {
	Collection string   `json:"collection"`
	HasList    bool     `json:"has_collection"`
	GamesDir   string   `json:"games_dir"`
	GameIDs    []string `json:"game_ids"`
}

// CacheList shows the collection file and cached game documents for the configured user and state.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	layout := shared.NewLayout(config)
	ids, err := cache.NewGameCache(layout.GamesDir()).IDs()
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	_, statErr := os.Stat(layout.CollectionFile())
	listing := cacheListing{
		Collection: layout.CollectionFile(),
		HasList:    statErr == nil,
		GamesDir:   layout.GamesDir(),
		GameIDs:    ids,
	}

	if cmd.Bool("json") {
		return r.writeJSON(listing, true)
	}

	r.writePlainHeader(fmt.Sprintf("Cache for %s (%s)", layout.Username, layout.State))
	if listing.HasList {
		r.writePlain("Collection: %s\n", listing.Collection)
	} else {
		r.writePlain("Collection: (none)\n")
	}
	r.writePlain("Games:      %d in %s\n", len(ids), listing.GamesDir)
	for _, id := range ids {
		r.writePlain("  %s\n", id)
	}
	return nil
}

// CacheClear removes cached game documents, and with --collection the collection file too.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	layout := shared.NewLayout(config)
	removed, err := cache.NewGameCache(layout.GamesDir()).Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	r.logger.Info("cache cleared", "dir", layout.GamesDir(), "removed", removed)
	r.writePlain("✓ Removed %d cached games\n", removed)

	if cmd.Bool("collection") {
		if err := os.Remove(layout.CollectionFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove collection file: %w", err)
		}
		r.writePlain("✓ Removed %s\n", layout.CollectionFile())
	}
	return nil
}

// cacheCommand manages the on-disk collection file and per-game cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the on-disk game cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached games for the configured user and state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "clear",
				Usage: "Delete cached game documents",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "collection",
						Usage: "Also delete the collection file",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
