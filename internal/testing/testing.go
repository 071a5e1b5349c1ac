// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/JuezFenix/bgg-profiler/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// GameFixture describes a "thing" document. Empty fields are left out of the XML.
type GameFixture struct {
	ID            string
	Thumbnail     string
	Image         string
	MinPlayers    string
	MaxPlayers    string
	PlayingTime   string
	YearPublished string
	AverageWeight string
	AgeVotes      []AgeVote
	Recommended   string
}

// AgeVote is one result of the suggested_playerage poll.
type AgeVote struct {
	Value string
	Votes int
}

// CollectionXML renders a brief collection document containing games in order.
func CollectionXML(games ...models.Game) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&b, `<items totalitems="%d" termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">`+"\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, `  <item objecttype="thing" objectid="%s" subtype="boardgame" collid="1">`+"\n", g.ID)
		fmt.Fprintf(&b, `    <name sortindex="1">%s</name>`+"\n", html.EscapeString(g.Name))
		b.WriteString(`    <status own="1" prevowned="0" fortrade="0" want="0" wanttoplay="0" wanttobuy="0" wishlist="0" preordered="0" lastmodified="2024-01-01 00:00:00" />` + "\n")
		b.WriteString("  </item>\n")
	}
	b.WriteString("</items>\n")
	return b.String()
}

// GameXML renders a "thing" document for f with stats enabled.
func GameXML(f GameFixture) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">` + "\n")
	fmt.Fprintf(&b, `  <item type="boardgame" id="%s">`+"\n", f.ID)
	if f.Thumbnail != "" {
		fmt.Fprintf(&b, "    <thumbnail>%s</thumbnail>\n", f.Thumbnail)
	}
	if f.Image != "" {
		fmt.Fprintf(&b, "    <image>%s</image>\n", f.Image)
	}
	for tag, v := range map[string]string{
		"minplayers":    f.MinPlayers,
		"maxplayers":    f.MaxPlayers,
		"playingtime":   f.PlayingTime,
		"yearpublished": f.YearPublished,
	} {
		if v != "" {
			fmt.Fprintf(&b, `    <%s value="%s" />`+"\n", tag, v)
		}
	}
	if f.Recommended != "" {
		b.WriteString(`    <poll-summary name="suggested_numplayers" title="User Suggested Number of Players">` + "\n")
		b.WriteString(`      <result name="bestwith" value="Best with 4 players" />` + "\n")
		fmt.Fprintf(&b, `      <result name="recommmendedwith" value="%s" />`+"\n", f.Recommended)
		b.WriteString("    </poll-summary>\n")
	}
	if len(f.AgeVotes) > 0 {
		fmt.Fprintf(&b, `    <poll name="suggested_playerage" title="User Suggested Player Age" totalvotes="%d">`+"\n", len(f.AgeVotes))
		b.WriteString("      <results>\n")
		for _, v := range f.AgeVotes {
			fmt.Fprintf(&b, `        <result value="%s" numvotes="%d" />`+"\n", v.Value, v.Votes)
		}
		b.WriteString("      </results>\n")
		b.WriteString("    </poll>\n")
	}
	b.WriteString("    <statistics page=\"1\">\n      <ratings>\n")
	b.WriteString(`        <usersrated value="100" />` + "\n")
	if f.AverageWeight != "" {
		fmt.Fprintf(&b, `        <averageweight value="%s" />`+"\n", f.AverageWeight)
	}
	b.WriteString("      </ratings>\n    </statistics>\n")
	b.WriteString("  </item>\n</items>\n")
	return b.String()
}

// FakeBGG is an httptest server standing in for the XML API.
//
// Collection responses and per-game responses are served from in-memory maps;
// every request is counted per endpoint.
type FakeBGG struct {
	*httptest.Server

	mu              sync.Mutex
	Collection      string
	CollectionCodes []int // status codes returned before Collection, in order
	Games           map[string]string
	GameCodes       map[string][]int // per-ID status codes returned before the document
	CollectionHits  int
	GameHits        map[string]int
	LastQuery       map[string]string
	Authorization   string
}

// NewFakeBGG starts a [FakeBGG] that is closed when the test ends.
func NewFakeBGG(t *testing.T) *FakeBGG {
	t.Helper()
	f := &FakeBGG{
		Games:     map[string]string{},
		GameCodes: map[string][]int{},
		GameHits:  map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeBGG) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Authorization = r.Header.Get("Authorization")
	f.LastQuery = map[string]string{}
	for k, v := range r.URL.Query() {
		f.LastQuery[k] = v[0]
	}

	switch r.URL.Path {
	case "/collection":
		f.CollectionHits++
		if len(f.CollectionCodes) > 0 {
			code := f.CollectionCodes[0]
			f.CollectionCodes = f.CollectionCodes[1:]
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(f.Collection))
	case "/thing":
		id := r.URL.Query().Get("id")
		f.GameHits[id]++
		if codes := f.GameCodes[id]; len(codes) > 0 {
			f.GameCodes[id] = codes[1:]
			w.WriteHeader(codes[0])
			return
		}
		doc, ok := f.Games[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(doc))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// TotalGameHits returns the number of /thing requests served.
func (f *FakeBGG) TotalGameHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.GameHits {
		total += n
	}
	return total
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
