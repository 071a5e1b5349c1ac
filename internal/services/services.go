// package services defines interface Catalog for retrieving raw documents from the BoardGameGeek XML API
package services

import (
	"context"
)

// Catalog retrieves raw XML documents describing a user's collection and individual games.
//
// Implementations own their retry policy: callers see either a usable document or an error.
type Catalog interface {
	// FetchCollection returns the brief collection document for username filtered by state ("own" or "wishlist").
	// Expansions are excluded.
	FetchCollection(ctx context.Context, username, state string) ([]byte, error)

	// FetchGame returns the "thing" document, with statistics, for a single game.
	// Failures wrap [shared.ErrGameUnavailable] so callers can skip the game.
	FetchGame(ctx context.Context, id string) ([]byte, error)

	// Name returns the name of the catalog (e.g., "BoardGameGeek")
	Name() string
}
