// Package repositories implements SQLite persistence for profile run history.
//
// Every `profile` run can be recorded so that later commands (history, browse) work without the network
// or the per-game cache.
//
// Key Implementations:
//   - [RunRepository] : Run summaries (username, state, template, counts) ordered newest first
//   - [GameRepository] : Extracted rows of each run, kept in collection order
//   - [RunRecorder] : Adapter used by the profile pipeline to store a run and its rows together
//
// The schema is created by the embedded migrations in the shared package; rows reference their run
// with ON DELETE CASCADE.
package repositories
