// Package server provides HTTP routing, middleware, and handlers for previewing generated reports.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers so that the first one added runs outermost.
// [LoggingMiddleware] records one structured log line per request and [RecoverMiddleware] converts panics into 500s.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
//   - [ReportHandler] : serves the output directory; "/" redirects to <username>_games_list.html
//   - [HistoryHandler] : read-only JSON view of the run history database
//
// # Lifecycle
//
// [Serve] runs the server until its context is cancelled (Ctrl-C in the serve command) and then shuts down gracefully.
package server
