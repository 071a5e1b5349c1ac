package ui

import (
	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/tasks"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgGamesLoaded
	MsgBrowserOpened
)

// Snapshot is the set of games shown by the browser.
type Snapshot struct {
	Title   string
	Details []models.GameDetails
}

type gamesLoaded struct {
	snapshot Snapshot
	err      error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// gamesLoadedMsg is the constructor for [MsgGamesLoaded]
func gamesLoadedMsg(snapshot Snapshot, err error) Msg {
	return Msg{kind: MsgGamesLoaded, data: gamesLoaded{snapshot: snapshot, err: err}}
}

type browserOpened struct {
	url string
	err error
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: browserOpened{url: url, err: err}}
}
