package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	tu "github.com/JuezFenix/bgg-profiler/internal/testing"
	"github.com/charmbracelet/log"
)

func newTestService(t *testing.T, fake *tu.FakeBGG, token string) *BGGService {
	t.Helper()
	return NewBGGService(BGGOpts{
		BaseURL: fake.URL,
		Token:   token,
		Logger:  shared.NewLogger(&strings.Builder{}),
	})
}

func TestBGGService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewBGGService(BGGOpts{})

			if srv.baseURL != bggBaseURL {
				t.Errorf("expected baseURL %s, got %s", bggBaseURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.logger != log.Default() {
				t.Error("expected default logger to be used")
			}
			if srv.Name() != "BoardGameGeek" {
				t.Errorf("unexpected name %s", srv.Name())
			}
		})

		t.Run("Trailing Slash Is Trimmed", func(t *testing.T) {
			srv := NewBGGService(BGGOpts{BaseURL: "http://example.com/xmlapi2/"})
			if got := srv.GameURL("1"); got != "http://example.com/xmlapi2/thing?id=1&stats=1" {
				t.Errorf("GameURL() = %s", got)
			}
		})

		t.Run("Negative Delays", func(t *testing.T) {
			srv := NewBGGService(BGGOpts{CollectionRetryDelay: -time.Second, GameRetryDelay: -time.Second})
			if srv.collectionRetryDelay != 0 || srv.gameRetryDelay != 0 {
				t.Errorf("expected negative delays to clamp to zero, got %v and %v", srv.collectionRetryDelay, srv.gameRetryDelay)
			}
		})

		t.Run("From Config", func(t *testing.T) {
			cfg := shared.DefaultConfig().API
			srv := NewBGGServiceFromConfig(cfg, nil)
			if srv.collectionRetryDelay != 10*time.Second || srv.gameRetryDelay != 30*time.Second {
				t.Errorf("unexpected delays %v and %v", srv.collectionRetryDelay, srv.gameRetryDelay)
			}
		})
	})

	t.Run("FetchCollection", func(t *testing.T) {
		t.Run("Query Parameters", func(t *testing.T) {
			tt := []struct {
				state    string
				own      string
				wishlist string
			}{
				{shared.StateOwn, "1", "0"},
				{shared.StateWishlist, "0", "1"},
			}

			for _, tc := range tt {
				t.Run(tc.state, func(t *testing.T) {
					fake := tu.NewFakeBGG(t)
					fake.Collection = tu.CollectionXML()

					if _, err := newTestService(t, fake, "").FetchCollection(context.Background(), "meeple", tc.state); err != nil {
						t.Fatalf("expected no error, got %v", err)
					}

					want := map[string]string{
						"username":       "meeple",
						"own":            tc.own,
						"wishlist":       tc.wishlist,
						"excludesubtype": "boardgameexpansion",
						"brief":          "1",
					}
					for k, v := range want {
						if fake.LastQuery[k] != v {
							t.Errorf("query %s = %q, want %q", k, fake.LastQuery[k], v)
						}
					}
				})
			}
		})

		t.Run("Accepted Then OK", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Collection = tu.CollectionXML(models.Game{ID: "13", Name: "CATAN"})
			fake.CollectionCodes = []int{http.StatusAccepted, http.StatusAccepted}

			body, err := newTestService(t, fake, "").FetchCollection(context.Background(), "meeple", shared.StateOwn)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != fake.Collection {
				t.Error("expected collection document to be returned verbatim")
			}
			if fake.CollectionHits != 3 {
				t.Errorf("expected 3 requests, got %d", fake.CollectionHits)
			}
		})

		t.Run("Service Unavailable Then OK", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Collection = tu.CollectionXML(models.Game{ID: "13", Name: "CATAN"})
			fake.CollectionCodes = []int{http.StatusServiceUnavailable, http.StatusAccepted}

			body, err := newTestService(t, fake, "").FetchCollection(context.Background(), "meeple", shared.StateOwn)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != fake.Collection {
				t.Error("expected collection document to be returned verbatim")
			}
			if fake.CollectionHits != 3 {
				t.Errorf("expected 3 requests, got %d", fake.CollectionHits)
			}
		})

		t.Run("Other Status Is Fatal", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.CollectionCodes = []int{http.StatusInternalServerError}

			_, err := newTestService(t, fake, "").FetchCollection(context.Background(), "meeple", shared.StateOwn)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "500") {
				t.Errorf("expected status code in error, got %v", err)
			}
			if fake.CollectionHits != 1 {
				t.Errorf("expected a single request, got %d", fake.CollectionHits)
			}
		})

		t.Run("Cancelled While Waiting", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.CollectionCodes = []int{http.StatusAccepted}

			srv := NewBGGService(BGGOpts{
				BaseURL:              fake.URL,
				CollectionRetryDelay: time.Hour,
				Logger:               shared.NewLogger(&strings.Builder{}),
			})

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := srv.FetchCollection(ctx, "meeple", shared.StateOwn)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected context.DeadlineExceeded, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			srv := NewBGGService(BGGOpts{
				BaseURL:    "http://bgg.test",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
				Logger:     shared.NewLogger(&strings.Builder{}),
			})

			_, err := srv.FetchCollection(context.Background(), "meeple", shared.StateOwn)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("FetchGame", func(t *testing.T) {
		t.Run("Query Parameters", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Games["174430"] = tu.GameXML(tu.GameFixture{ID: "174430"})

			if _, err := newTestService(t, fake, "").FetchGame(context.Background(), "174430"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if fake.LastQuery["id"] != "174430" || fake.LastQuery["stats"] != "1" {
				t.Errorf("unexpected query %v", fake.LastQuery)
			}
		})

		t.Run("Too Many Requests Then OK", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Games["13"] = tu.GameXML(tu.GameFixture{ID: "13"})
			fake.GameCodes["13"] = []int{http.StatusTooManyRequests}

			body, err := newTestService(t, fake, "").FetchGame(context.Background(), "13")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != fake.Games["13"] {
				t.Error("expected game document to be returned verbatim")
			}
			if fake.GameHits["13"] != 2 {
				t.Errorf("expected 2 requests, got %d", fake.GameHits["13"])
			}
		})

		t.Run("Not Found Is Unavailable", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)

			_, err := newTestService(t, fake, "").FetchGame(context.Background(), "404")
			if !errors.Is(err, shared.ErrGameUnavailable) {
				t.Errorf("expected ErrGameUnavailable, got %v", err)
			}
			if fake.GameHits["404"] != 1 {
				t.Errorf("expected a single request, got %d", fake.GameHits["404"])
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}
			srv := NewBGGService(BGGOpts{
				BaseURL:    "http://bgg.test",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
				Logger:     shared.NewLogger(&strings.Builder{}),
			})

			_, err := srv.FetchGame(context.Background(), "1")
			if !errors.Is(err, shared.ErrGameUnavailable) {
				t.Errorf("expected ErrGameUnavailable, got %v", err)
			}
		})
	})

	t.Run("Token", func(t *testing.T) {
		t.Run("Sent As Bearer", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Games["1"] = tu.GameXML(tu.GameFixture{ID: "1"})

			if _, err := newTestService(t, fake, "s3cr3t").FetchGame(context.Background(), "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if fake.Authorization != "Bearer s3cr3t" {
				t.Errorf("expected bearer header, got %q", fake.Authorization)
			}
		})

		t.Run("Omitted Without Token", func(t *testing.T) {
			fake := tu.NewFakeBGG(t)
			fake.Games["1"] = tu.GameXML(tu.GameFixture{ID: "1"})

			if _, err := newTestService(t, fake, "").FetchGame(context.Background(), "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if fake.Authorization != "" {
				t.Errorf("expected no Authorization header, got %q", fake.Authorization)
			}
		})

		t.Run("Client Is Not Mutated", func(t *testing.T) {
			client := &http.Client{}
			NewBGGService(BGGOpts{HTTPClient: client, Token: "x"})
			if client.Transport != nil {
				t.Error("expected caller's client to be left untouched")
			}
		})
	})
}
