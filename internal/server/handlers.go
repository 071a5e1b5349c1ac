package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
)

// servable lists the extensions [ReportHandler] will serve. Everything else in the output directory
// (configuration with the API token, the history database, logs) answers 404, as do directory listings.
var servable = map[string]bool{
	".html": true, ".htm": true, ".css": true, ".js": true,
	".csv": true, ".md": true, ".xml": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true, ".ico": true,
}

// ReportHandler serves report files from the output directory and redirects the root to the generated report.
type ReportHandler struct {
	report string
	files  http.Handler
}

// NewReportHandler serves files under dir; "/" redirects to reportName.
func NewReportHandler(dir, reportName string) *ReportHandler {
	return &ReportHandler{
		report: reportName,
		files:  http.FileServer(http.Dir(dir)),
	}
}

func (h *ReportHandler) Routes() []string {
	return []string{"/"}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		http.Redirect(w, r, "/"+h.report, http.StatusFound)
		return
	}
	if !servable[strings.ToLower(path.Ext(r.URL.Path))] {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

// RunStore is the read side of the run history used by [HistoryHandler].
type RunStore interface {
	List(username string, limit int) ([]*models.Run, error)
	Get(id string) (*models.Run, error)
}

// GameStore returns the recorded rows of a run.
type GameStore interface {
	ListByRun(runID string) ([]models.GameDetails, error)
}

// HistoryHandler exposes recorded runs as JSON:
//
//	GET /api/runs?username=&limit=   runs, newest first
//	GET /api/runs/{id}               one run with its games
type HistoryHandler struct {
	runs  RunStore
	games GameStore
}

// NewHistoryHandler creates a HistoryHandler over the given stores.
func NewHistoryHandler(runs RunStore, games GameStore) *HistoryHandler {
	return &HistoryHandler{runs: runs, games: games}
}

func (h *HistoryHandler) Routes() []string {
	return []string{"/api/runs", "/api/runs/"}
}

type runJSON struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	State        string `json:"state"`
	Template     string `json:"template"`
	ReportPath   string `json:"report_path"`
	GameCount    int    `json:"game_count"`
	SkippedCount int    `json:"skipped_count"`
	CacheHits    int    `json:"cache_hits"`
	CreatedAt    string `json:"created_at"`
}

type gameJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	Thumbnail     string `json:"thumbnail"`
	MinPlayers    string `json:"min_players"`
	MaxPlayers    string `json:"max_players"`
	IdealPlayers  string `json:"ideal_players"`
	PlayingTime   string `json:"playing_time"`
	Weight        string `json:"weight"`
	MinAge        string `json:"min_age"`
	YearPublished string `json:"year_published"`
}

type runDetailJSON struct {
	Run   runJSON    `json:"run"`
	Games []gameJSON `json:"games"`
}

func toRunJSON(r *models.Run) runJSON {
	return runJSON{
		ID:           r.ID,
		Username:     r.Username,
		State:        r.State,
		Template:     r.Template,
		ReportPath:   r.ReportPath,
		GameCount:    r.GameCount,
		SkippedCount: r.SkippedCount,
		CacheHits:    r.CacheHits,
		CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toGameJSON(d models.GameDetails) gameJSON {
	return gameJSON(d)
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs"), "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.detail(w, path.Base(id))
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.runs.List(r.URL.Query().Get("username"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run))
	}
	writeJSON(w, out)
}

func (h *HistoryHandler) detail(w http.ResponseWriter, id string) {
	run, err := h.runs.Get(id)
	if errors.Is(err, shared.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	details, err := h.games.ListByRun(run.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := runDetailJSON{Run: toRunJSON(run), Games: make([]gameJSON, 0, len(details))}
	for _, d := range details {
		out.Games = append(out.Games, toGameJSON(d))
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
