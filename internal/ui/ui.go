package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	GameListView
	DetailView
)

// Loader produces the games to browse, optionally reporting progress (e.g. while running a profile).
type Loader func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (Snapshot, error)

// Opener opens a URL in the user's browser.
type Opener func(url string) error

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	loader   Loader
	opener   Opener
	width    int
	height   int
	games    list.Model
	selected *models.GameDetails
	title    string
	progress tasks.ProgressUpdate
	updates  chan tasks.ProgressUpdate
	done     chan gamesLoaded
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, loader Loader, opener Opener) *Model {
	return &Model{
		ctx:    ctx,
		view:   LoadingView,
		loader: loader,
		opener: opener,
		games:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the loader.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.games.SetSize(max(msg.Width-4, 0), max(msg.Height-6, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case GameListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == GameListView {
		var cmd tea.Cmd
		m.games, cmd = m.games.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgGamesLoaded:
		loaded := msg.data.(gamesLoaded)
		m.updates, m.done = nil, nil
		if loaded.err != nil {
			m.err = loaded.err
			return m, nil
		}
		m.title = loaded.snapshot.Title
		m.games.Title = loaded.snapshot.Title
		cmd := m.games.SetItems(gameItems(loaded.snapshot.Details))
		m.view = GameListView
		return m, cmd

	case MsgBrowserOpened:
		opened := msg.data.(browserOpened)
		if opened.err != nil {
			m.status = styles.warn.Render(fmt.Sprintf("could not open %s: %v", opened.url, opened.err))
		} else {
			m.status = styles.ok.Render("opened " + opened.url)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case GameListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// keys belong to the filter input while the user is typing
	if m.games.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if g, ok := m.current(); ok {
				m.selected = &g
				m.status = ""
				m.view = DetailView
			}
			return m, nil
		case key.Matches(msg, m.keys.open):
			if g, ok := m.current(); ok {
				return m, m.openBrowser(g.URL)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.games, cmd = m.games.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = GameListView
		m.selected = nil
		m.status = ""
	case key.Matches(msg, m.keys.open):
		return m, m.openBrowser(m.selected.URL)
	}
	return m, nil
}

func (m *Model) current() (models.GameDetails, bool) {
	item, ok := m.games.SelectedItem().(gameItem)
	if !ok {
		return models.GameDetails{}, false
	}
	return item.game, true
}

func (m *Model) load() tea.Cmd {
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan gamesLoaded, 1)

	updates, done := m.updates, m.done
	go func() {
		snapshot, err := m.loader(m.ctx, updates)
		done <- gamesLoaded{snapshot: snapshot, err: err}
		close(updates)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		update, ok := <-updates
		if !ok {
			loaded := <-done
			return gamesLoadedMsg(loaded.snapshot, loaded.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) openBrowser(url string) tea.Cmd {
	opener := m.opener
	return func() tea.Msg {
		if opener == nil {
			return browserOpenedMsg(url, fmt.Errorf("no browser configured"))
		}
		return browserOpenedMsg(url, opener(url))
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading games")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchCollection:
		phase = "Fetching collection..."
	case tasks.FetchGames:
		phase = fmt.Sprintf("Fetching games (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.RenderReport:
		phase = "Rendering report..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.open, m.keys.quit})
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n%s", m.games.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.games.View(), helpView)
}

func (m *Model) renderDetail() string {
	g := m.selected
	if g == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(g.Name))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"BGG", g.URL},
		{"Thumbnail", g.Thumbnail},
		{"Players", g.MinPlayers + "–" + g.MaxPlayers},
		{"Ideal players", g.IdealPlayers},
		{"Playing time", g.PlayingTime},
		{"Weight", g.Weight},
		{"Minimum age", g.MinAge},
		{"Published", g.YearPublished},
	} {
		b.WriteString(styles.label.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.open, m.keys.quit}))
	return b.String()
}
