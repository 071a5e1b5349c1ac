// Package tasks runs the collection profiling pipeline with real-time progress reporting.
//
// # Pipeline
//
// [ProfileEngine.Run] performs, strictly in sequence:
//
//  1. Fetch the collection document ([services.Catalog.FetchCollection]), or read it from disk when offline
//  2. Save it to <state>_<username>_games_list.xml
//  3. Parse the (id, name) pairs in document order
//  4. For every game: reuse <state>_<username>_games/<id>.xml when present, otherwise fetch and cache it,
//     then extract the display fields
//  5. Render the report with the selected template set
//  6. Hand the run to the optional [Recorder]
//
// Network game fetches are spaced with a [rate.Limiter]. A failed or unparseable game is recorded in
// [ProfileResult.Skipped] and the run continues; a collection or report failure aborts it.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run Recording
//
// The optional [Recorder] interface persists each finished run (repositories.RunRecorder).
// Recording errors are logged and ignored so that history never costs a report.
package tasks
