package bggxml

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	tu "github.com/JuezFenix/bgg-profiler/internal/testing"
)

func TestParseCollection(t *testing.T) {
	t.Run("every item yields one pair", func(t *testing.T) {
		games := []models.Game{
			{ID: "174430", Name: "Gloomhaven"},
			{ID: "13", Name: "CATAN"},
			{ID: "266192", Name: "Wingspan"},
		}

		collection, err := ParseCollection([]byte(tu.CollectionXML(games...)))
		if err != nil {
			t.Fatalf("ParseCollection() error = %v", err)
		}

		got := collection.Games()
		if len(got) != len(games) {
			t.Fatalf("expected %d games, got %d", len(games), len(got))
		}
		for i, want := range games {
			if got[i] != want {
				t.Errorf("games[%d] = %+v, want %+v", i, got[i], want)
			}
		}
	})

	t.Run("escaped names are decoded", func(t *testing.T) {
		collection, err := ParseCollection([]byte(tu.CollectionXML(models.Game{ID: "1", Name: "Dungeons & Dragons"})))
		if err != nil {
			t.Fatalf("ParseCollection() error = %v", err)
		}
		if got := collection.Name("1"); got != "Dungeons & Dragons" {
			t.Errorf("expected decoded name, got %q", got)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		collection, err := ParseCollection([]byte(tu.CollectionXML()))
		if err != nil {
			t.Fatalf("ParseCollection() error = %v", err)
		}
		if collection.Len() != 0 {
			t.Errorf("expected no games, got %d", collection.Len())
		}
	})

	t.Run("item without name", func(t *testing.T) {
		doc := `<items><item objectid="7"></item></items>`
		collection, err := ParseCollection([]byte(doc))
		if err != nil {
			t.Fatalf("ParseCollection() error = %v", err)
		}
		if got := collection.Name("7"); got != models.Unknown {
			t.Errorf("expected %s, got %q", models.Unknown, got)
		}
	})

	t.Run("non-numeric ids are skipped", func(t *testing.T) {
		doc := `<items>
  <item objectid="../../etc/passwd"><name>Escape</name></item>
  <item objectid="a/b"><name>Nested</name></item>
  <item objectid=""><name>Empty</name></item>
  <item objectid="12x"><name>Suffix</name></item>
  <item objectid="42"><name>Kept</name></item>
</items>`
		collection, err := ParseCollection([]byte(doc))
		if err != nil {
			t.Fatalf("ParseCollection() error = %v", err)
		}

		got := collection.Games()
		if len(got) != 1 || got[0] != (models.Game{ID: "42", Name: "Kept"}) {
			t.Errorf("expected only the numeric item, got %+v", got)
		}
	})

	t.Run("api error document", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<errors><error><message>Invalid username specified</message></error></errors>`
		_, err := ParseCollection([]byte(doc))
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "Invalid username specified") {
			t.Errorf("expected API message in error, got %v", err)
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := ParseCollection([]byte(`<items><item objectid="1"></wrong></items>`))
		if !errors.Is(err, shared.ErrMalformedXML) {
			t.Errorf("expected ErrMalformedXML, got %v", err)
		}
	})
}

func TestExtractDetails(t *testing.T) {
	game := models.Game{ID: "266192", Name: "Wingspan"}

	t.Run("all fields present", func(t *testing.T) {
		doc := tu.GameXML(tu.GameFixture{
			ID:            game.ID,
			Thumbnail:     "https://cf.geekdo-images.com/wingspan_t.jpg",
			MinPlayers:    "1",
			MaxPlayers:    "5",
			PlayingTime:   "70",
			YearPublished: "2019",
			AverageWeight: "2.4482",
			AgeVotes:      []tu.AgeVote{{Value: "8", Votes: 3}, {Value: "10", Votes: 14}, {Value: "12", Votes: 9}},
			Recommended:   "Recommended with 1–5 players",
		})

		got, err := ExtractDetails([]byte(doc), game)
		if err != nil {
			t.Fatalf("ExtractDetails() error = %v", err)
		}

		want := models.GameDetails{
			ID:            game.ID,
			Name:          game.Name,
			URL:           "https://boardgamegeek.com/boardgame/266192",
			Thumbnail:     "https://cf.geekdo-images.com/wingspan_t.jpg",
			MinPlayers:    "1",
			MaxPlayers:    "5",
			IdealPlayers:  "1–5",
			PlayingTime:   "70",
			Weight:        "2.4",
			MinAge:        "10",
			YearPublished: "2019",
		}
		if got != want {
			t.Errorf("ExtractDetails() =\n%+v\nwant\n%+v", got, want)
		}
	})

	t.Run("missing fields are unknown", func(t *testing.T) {
		doc := tu.GameXML(tu.GameFixture{ID: game.ID})

		got, err := ExtractDetails([]byte(doc), game)
		if err != nil {
			t.Fatalf("ExtractDetails() error = %v", err)
		}

		if got != models.NewGameDetails(game) {
			t.Errorf("expected all fields unknown, got %+v", got)
		}
	})

	t.Run("missing averageweight is unknown", func(t *testing.T) {
		doc := tu.GameXML(tu.GameFixture{ID: game.ID, MinPlayers: "2"})

		got, err := ExtractDetails([]byte(doc), game)
		if err != nil {
			t.Fatalf("ExtractDetails() error = %v", err)
		}
		if got.Weight != models.Unknown {
			t.Errorf("Weight = %q, want %q", got.Weight, models.Unknown)
		}
	})

	t.Run("weight rounding", func(t *testing.T) {
		tt := []struct {
			raw  string
			want string
		}{
			{"3", "3.0"},
			{"2.96", "3.0"},
			{"1.04", "1.0"},
			{"2.25", "2.2"},
			{"1.25", "1.2"},
			{"3.75", "3.8"},
			{"0", "0.0"},
			{"heavy", models.Unknown},
		}
		for _, tc := range tt {
			t.Run(tc.raw, func(t *testing.T) {
				doc := tu.GameXML(tu.GameFixture{ID: game.ID, AverageWeight: tc.raw})
				got, err := ExtractDetails([]byte(doc), game)
				if err != nil {
					t.Fatalf("ExtractDetails() error = %v", err)
				}
				if got.Weight != tc.want {
					t.Errorf("Weight = %q, want %q", got.Weight, tc.want)
				}
			})
		}
	})

	t.Run("thumbnail falls back to image", func(t *testing.T) {
		doc := tu.GameXML(tu.GameFixture{ID: game.ID, Image: "https://cf.geekdo-images.com/full.jpg"})

		got, err := ExtractDetails([]byte(doc), game)
		if err != nil {
			t.Fatalf("ExtractDetails() error = %v", err)
		}
		if got.Thumbnail != "https://cf.geekdo-images.com/full.jpg" {
			t.Errorf("Thumbnail = %q", got.Thumbnail)
		}
	})

	t.Run("document without item", func(t *testing.T) {
		_, err := ExtractDetails([]byte(`<items></items>`), game)
		if !errors.Is(err, shared.ErrExtraction) {
			t.Errorf("expected ErrExtraction, got %v", err)
		}
	})

	t.Run("unparseable document", func(t *testing.T) {
		_, err := ExtractDetails([]byte(`<items><item id="1"></wrong></items>`), game)
		if !errors.Is(err, shared.ErrExtraction) {
			t.Errorf("expected ErrExtraction, got %v", err)
		}
	})

	t.Run("same document twice yields identical fields", func(t *testing.T) {
		doc := []byte(tu.GameXML(tu.GameFixture{ID: game.ID, MinPlayers: "1", AverageWeight: "2.45"}))
		a, errA := ExtractDetails(doc, game)
		b, errB := ExtractDetails(doc, game)
		if errA != nil || errB != nil {
			t.Fatalf("unexpected errors: %v, %v", errA, errB)
		}
		if a != b {
			t.Errorf("expected identical details, got %+v and %+v", a, b)
		}
	})
}

func TestIdealAge(t *testing.T) {
	tt := []struct {
		name  string
		votes []tu.AgeVote
		want  string
	}{
		{
			name:  "greatest vote count wins",
			votes: []tu.AgeVote{{Value: "8+", Votes: 5}, {Value: "10+", Votes: 12}, {Value: "6+", Votes: 12}},
			want:  "10+",
		},
		{
			name:  "tie keeps first seen",
			votes: []tu.AgeVote{{Value: "12", Votes: 7}, {Value: "14", Votes: 7}},
			want:  "12",
		},
		{
			name:  "no votes",
			votes: []tu.AgeVote{{Value: "8", Votes: 0}, {Value: "10", Votes: 0}},
			want:  models.Unknown,
		},
		{
			name:  "no poll",
			votes: nil,
			want:  models.Unknown,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := parse([]byte(tu.GameXML(tu.GameFixture{ID: "1", AgeVotes: tc.votes})))
			if err != nil {
				t.Fatalf("parse() error = %v", err)
			}
			if got := IdealAge(doc); got != tc.want {
				t.Errorf("IdealAge() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdealPlayers(t *testing.T) {
	t.Run("from poll summary", func(t *testing.T) {
		doc, err := parse([]byte(tu.GameXML(tu.GameFixture{ID: "1", Recommended: "Recommended with 3–4 players"})))
		if err != nil {
			t.Fatalf("parse() error = %v", err)
		}
		if got := IdealPlayers(doc); got != "3–4" {
			t.Errorf("IdealPlayers() = %q, want %q", got, "3–4")
		}
	})

	t.Run("missing summary", func(t *testing.T) {
		doc, err := parse([]byte(tu.GameXML(tu.GameFixture{ID: "1"})))
		if err != nil {
			t.Fatalf("parse() error = %v", err)
		}
		if got := IdealPlayers(doc); got != models.Unknown {
			t.Errorf("IdealPlayers() = %q, want %q", got, models.Unknown)
		}
	})

	t.Run("summary without recommendation", func(t *testing.T) {
		doc, err := parse([]byte(`<items><item><poll-summary name="suggested_numplayers"><result name="bestwith" value="Best with 2 players"/></poll-summary></item></items>`))
		if err != nil {
			t.Fatalf("parse() error = %v", err)
		}
		if got := IdealPlayers(doc); got != models.Unknown {
			t.Errorf("IdealPlayers() = %q, want %q", got, models.Unknown)
		}
	})
}

func TestPlayerRange(t *testing.T) {
	tt := []struct {
		label string
		want  string
	}{
		{"Recommended with 3–4 players", "3–4"},
		{"Recommended with 2 players", "2"},
		{"Recommended with 1–3, 5 players", "1–3–5"},
		{"Recommended with 10+ players", "10"},
		{"No recommendation", models.Unknown},
		{"", models.Unknown},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%q", tc.label), func(t *testing.T) {
			if got := PlayerRange(tc.label); got != tc.want {
				t.Errorf("PlayerRange(%q) = %q, want %q", tc.label, got, tc.want)
			}
		})
	}
}
