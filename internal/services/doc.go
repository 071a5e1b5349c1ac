// Package services defines the [Catalog] interface for board game data sources and implements it for the BoardGameGeek XML API v2.
//
// # BoardGameGeek Implementation
//
// [BGGService] issues plain GET requests against two endpoints:
//   - collection?username=&own=&wishlist=&excludesubtype=boardgameexpansion&brief=1
//   - thing?id=&stats=1
//
// BGG builds collection exports asynchronously. A 202 response means the export is queued,
// so the collection request is repeated every CollectionRetryDelay until a 200 arrives.
// The thing endpoint throttles with 429, which is retried every GameRetryDelay.
// Neither loop has an upper bound; both stop when the context is cancelled.
//
// When a token is configured, requests go through an [oauth2.Transport] backed by a static token source,
// which sets the bearer Authorization header BGG expects from registered applications.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : collection request failed or returned an unexpected status (fatal)
//   - [shared.ErrGameUnavailable] : a single game could not be retrieved (recoverable)
package services
