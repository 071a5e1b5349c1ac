// BoardGameGeek XML API v2 implementation of [Catalog]
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const bggBaseURL = "https://boardgamegeek.com/xmlapi2"

// BGGOpts configures a [BGGService].
//
// An empty BaseURL, a nil HTTPClient or a nil Logger select the defaults. Retry delays are used as given.
type BGGOpts struct {
	BaseURL              string
	Token                string
	HTTPClient           *http.Client
	CollectionRetryDelay time.Duration
	GameRetryDelay       time.Duration
	Logger               *log.Logger
}

// BGGService implements [Catalog] against the BoardGameGeek XML API.
type BGGService struct {
	baseURL              string
	httpClient           *http.Client
	collectionRetryDelay time.Duration
	gameRetryDelay       time.Duration
	logger               *log.Logger
}

// NewBGGService creates a BoardGameGeek client. A non-positive retry delay retries immediately.
func NewBGGService(opts BGGOpts) *BGGService {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = bggBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Token != "" {
		client = withToken(client, opts.Token)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &BGGService{
		baseURL:              baseURL,
		httpClient:           client,
		collectionRetryDelay: max(opts.CollectionRetryDelay, 0),
		gameRetryDelay:       max(opts.GameRetryDelay, 0),
		logger:               logger,
	}
}

// NewBGGServiceFromConfig builds a client from the [api] section of the configuration.
func NewBGGServiceFromConfig(cfg shared.APIConfig, logger *log.Logger) *BGGService {
	return NewBGGService(BGGOpts{
		BaseURL:              cfg.BaseURL,
		Token:                cfg.Token,
		CollectionRetryDelay: cfg.CollectionRetryDelay,
		GameRetryDelay:       cfg.GameRetryDelay,
		Logger:               logger,
	})
}

// withToken wraps the client's transport so every request carries a bearer token.
func withToken(client *http.Client, token string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   base,
	}
	return &wrapped
}

func (s *BGGService) Name() string {
	return "BoardGameGeek"
}

// CollectionURL builds the collection request for username and state.
func (s *BGGService) CollectionURL(username, state string) string {
	q := url.Values{}
	q.Set("username", username)
	q.Set("own", flag(state == shared.StateOwn))
	q.Set("wishlist", flag(state == shared.StateWishlist))
	q.Set("excludesubtype", "boardgameexpansion")
	q.Set("brief", "1")
	return s.baseURL + "/collection?" + q.Encode()
}

// GameURL builds the thing request for a single game with statistics enabled.
func (s *BGGService) GameURL(id string) string {
	q := url.Values{}
	q.Set("id", id)
	q.Set("stats", "1")
	return s.baseURL + "/thing?" + q.Encode()
}

// FetchCollection retrieves the collection document, polling while BGG answers 202 Accepted or 503 Service Unavailable.
func (s *BGGService) FetchCollection(ctx context.Context, username, state string) ([]byte, error) {
	endpoint := s.CollectionURL(username, state)

	for {
		status, body, err := s.get(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: collection: %v", shared.ErrAPIRequest, err)
		}

		switch status {
		case http.StatusOK:
			return body, nil
		case http.StatusAccepted, http.StatusServiceUnavailable:
			s.logger.Info("collection is being prepared, retrying", "username", username, "status", status, "delay", s.collectionRetryDelay)
			if err := wait(ctx, s.collectionRetryDelay); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: collection: status %d", shared.ErrAPIRequest, status)
		}
	}
}

// FetchGame retrieves a single game document, polling while BGG answers 429 Too Many Requests.
func (s *BGGService) FetchGame(ctx context.Context, id string) ([]byte, error) {
	endpoint := s.GameURL(id)

	for {
		status, body, err := s.get(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: game %s: %v", shared.ErrGameUnavailable, id, err)
		}

		switch status {
		case http.StatusOK:
			return body, nil
		case http.StatusTooManyRequests:
			s.logger.Warn("rate limited, retrying", "id", id, "delay", s.gameRetryDelay)
			if err := wait(ctx, s.gameRetryDelay); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: game %s: status %d", shared.ErrGameUnavailable, id, status)
		}
	}
}

// get performs one request and returns the status code with the full body.
func (s *BGGService) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	s.logger.Debug("request", "url", endpoint)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
