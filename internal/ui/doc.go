// Package ui implements an interactive terminal browser for profiled games using bubbletea's Elm architecture.
//
// The TUI moves through three views:
//  1. [LoadingView] : Runs the [Loader] (history lookup or a full profile run) and shows its progress updates
//  2. [GameListView] : Filterable list of games sorted by name
//  3. [DetailView] : Every extracted field of the selected game
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the loader, so a profile run started from the TUI never blocks rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
