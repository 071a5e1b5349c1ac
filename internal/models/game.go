package models

import (
	"sort"
	"time"
)

// Unknown is the display value of any field missing from a source document.
const Unknown = "unknown"

// GameURLPrefix is the public BoardGameGeek page of a game, followed by its ID.
const GameURLPrefix = "https://boardgamegeek.com/boardgame/"

// Game is a collection entry.
type Game struct {
	ID   string
	Name string
}

// URL returns the public BoardGameGeek page of the game.
func (g Game) URL() string {
	return GameURLPrefix + g.ID
}

// Collection holds games in the order they first appear in the collection document.
//
// Adding an ID that is already present keeps its position and replaces its name.
type Collection struct {
	games []Game
	index map[string]int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Add inserts or renames a game.
func (c *Collection) Add(g Game) {
	if i, ok := c.index[g.ID]; ok {
		c.games[i].Name = g.Name
		return
	}
	c.index[g.ID] = len(c.games)
	c.games = append(c.games, g)
}

// Games returns the games in insertion order.
func (c *Collection) Games() []Game {
	out := make([]Game, len(c.games))
	copy(out, c.games)
	return out
}

// Name returns the display name of the game with the given ID, or [Unknown].
func (c *Collection) Name(id string) string {
	if i, ok := c.index[id]; ok {
		return c.games[i].Name
	}
	return Unknown
}

// Len returns the number of distinct games.
func (c *Collection) Len() int { return len(c.games) }

// GameDetails are the display fields of one report row or card.
type GameDetails struct {
	ID            string
	Name          string
	URL           string
	Thumbnail     string
	MinPlayers    string
	MaxPlayers    string
	IdealPlayers  string
	PlayingTime   string
	Weight        string
	MinAge        string
	YearPublished string
}

// NewGameDetails returns details for g with every extracted field set to [Unknown].
func NewGameDetails(g Game) GameDetails {
	return GameDetails{
		ID:            g.ID,
		Name:          g.Name,
		URL:           g.URL(),
		Thumbnail:     Unknown,
		MinPlayers:    Unknown,
		MaxPlayers:    Unknown,
		IdealPlayers:  Unknown,
		PlayingTime:   Unknown,
		Weight:        Unknown,
		MinAge:        Unknown,
		YearPublished: Unknown,
	}
}

// SortByName orders details by display name, keeping collection order between equal names.
func SortByName(details []GameDetails) []GameDetails {
	sorted := make([]GameDetails, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Run is a recorded execution of the profile pipeline.
type Run struct {
	ID           string
	Username     string
	State        string
	Template     string
	ReportPath   string
	GameCount    int
	SkippedCount int
	CacheHits    int
	CreatedAt    time.Time
}
