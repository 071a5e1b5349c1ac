package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	tu "github.com/JuezFenix/bgg-profiler/internal/testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Handle filters methods", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		tt := []struct {
			method string
			want   int
		}{
			{http.MethodGet, http.StatusOK},
			{http.MethodHead, http.StatusOK},
			{http.MethodPost, http.StatusMethodNotAllowed},
		}

		for _, tc := range tt {
			t.Run(tc.method, func(t *testing.T) {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(tc.method, "/ping", nil))
				if rec.Code != tc.want {
					t.Errorf("expected status %d, got %d", tc.want, rec.Code)
				}
			})
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("Patterns", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewReportHandler(t.TempDir(), "x.html"))
		router.Handler(NewHistoryHandler(&fakeRuns{}, &fakeGames{}))

		if got := strings.Join(router.Patterns(), " "); got != "/ /api/runs /api/runs/" {
			t.Errorf("Patterns() = %s", got)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("LoggingMiddleware", func(t *testing.T) {
		var logs strings.Builder
		handler := LoggingMiddleware(shared.NewLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("short and stout"))
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/kettle", nil))

		out := logs.String()
		for _, want := range []string{"method=GET", "path=/kettle", "status=418", "bytes=15"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in log line, got %s", want, out)
			}
		}
	})

	t.Run("RecoverMiddleware", func(t *testing.T) {
		var logs strings.Builder
		handler := RecoverMiddleware(shared.NewLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(logs.String(), "boom") {
			t.Errorf("expected panic value in logs, got %s", logs.String())
		}
	})
}

func TestReportHandler(t *testing.T) {
	dir := t.TempDir()
	tu.MustWriteFile(t, filepath.Join(dir, "meeple_games_list.html"), "<html>report</html>")

	router := NewBasicRouter()
	router.Handler(NewReportHandler(dir, "meeple_games_list.html"))

	t.Run("root redirects to report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/meeple_games_list.html" {
			t.Errorf("unexpected Location %s", loc)
		}
	})

	t.Run("serves report file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meeple_games_list.html", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "<html>report</html>" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.html", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("private files are not served", func(t *testing.T) {
		for _, name := range []string{"config.toml", "properties.cfg", "bggp.db", "bggp.db-journal", ".env"} {
			tu.MustWriteFile(t, filepath.Join(dir, name), "secret")
		}
		tu.MustWriteFile(t, filepath.Join(dir, "own_meeple_games", "13.xml"), "<items/>")

		for _, target := range []string{"/config.toml", "/properties.cfg", "/bggp.db", "/bggp.db-journal", "/.env", "/own_meeple_games/"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s: expected 404, got %d", target, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "secret") {
				t.Errorf("%s: leaked file contents", target)
			}
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/own_meeple_games/13.xml", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected cached game document to be served, got %d", rec.Code)
		}
	})
}

type fakeRuns struct {
	runs      []*models.Run
	err       error
	lastUser  string
	lastLimit int
}

func (f *fakeRuns) List(username string, limit int) ([]*models.Run, error) {
	f.lastUser, f.lastLimit = username, limit
	return f.runs, f.err
}

func (f *fakeRuns) Get(id string) (*models.Run, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: run %s", shared.ErrNotFound, id)
}

type fakeGames struct {
	games map[string][]models.GameDetails
}

func (f *fakeGames) ListByRun(runID string) ([]models.GameDetails, error) {
	return f.games[runID], nil
}

func TestHistoryHandler(t *testing.T) {
	run := &models.Run{
		ID:        "run-1",
		Username:  "meeple",
		State:     shared.StateOwn,
		GameCount: 1,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	catan := models.NewGameDetails(models.Game{ID: "13", Name: "CATAN"})

	runs := &fakeRuns{runs: []*models.Run{run}}
	router := NewBasicRouter()
	router.Handler(NewHistoryHandler(runs, &fakeGames{games: map[string][]models.GameDetails{"run-1": {catan}}}))

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?username=meeple&limit=5", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if runs.lastUser != "meeple" || runs.lastLimit != 5 {
			t.Errorf("expected filters to be passed, got %q and %d", runs.lastUser, runs.lastLimit)
		}

		var got []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 1 || got[0]["id"] != "run-1" || got[0]["created_at"] != "2026-03-01T12:00:00Z" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=many", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got struct {
			Run   map[string]any   `json:"run"`
			Games []map[string]any `json:"games"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Run["username"] != "meeple" || len(got.Games) != 1 || got.Games[0]["name"] != "CATAN" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
		if got.Games[0]["weight"] != models.Unknown {
			t.Errorf("expected unknown weight, got %v", got.Games[0]["weight"])
		}
	})

	t.Run("detail not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("store error", func(t *testing.T) {
		failing := NewBasicRouter()
		failing.Handler(NewHistoryHandler(&fakeRuns{err: errors.New("disk I/O error")}, &fakeGames{}))

		rec := httptest.NewRecorder()
		failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("stops on cancel", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Serve(ctx, addr, http.NotFoundHandler(), shared.NewLogger(&strings.Builder{}), nil)
		}()

		var resp *http.Response
		for i := 0; i < 50; i++ {
			resp, err = http.Get("http://" + addr + "/")
			if err == nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		if err != nil {
			t.Fatalf("server never became reachable: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Serve() did not return after cancel")
		}
	})

	t.Run("listen error", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		defer ln.Close()

		err = Serve(context.Background(), ln.Addr().String(), http.NotFoundHandler(), shared.NewLogger(&strings.Builder{}), nil)
		if err == nil {
			t.Error("expected error when the address is in use")
		}
	})
}
