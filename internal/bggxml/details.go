package bggxml

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/antchfx/xmlquery"
)

var digits = regexp.MustCompile(`\d+`)

// ExtractDetails reads the report fields of g from its "thing" document.
//
// The only failure is a document that cannot be parsed or has no <item>.
func ExtractDetails(data []byte, g models.Game) (models.GameDetails, error) {
	details := models.NewGameDetails(g)

	doc, err := parse(data)
	if err != nil {
		return details, fmt.Errorf("%w: game %s: %v", shared.ErrExtraction, g.ID, err)
	}

	item := xmlquery.FindOne(doc, "//item")
	if item == nil {
		return details, fmt.Errorf("%w: game %s: no <item> element", shared.ErrExtraction, g.ID)
	}

	details.Thumbnail = thumbnail(item)
	details.MinPlayers = valueOf(item, "minplayers")
	details.MaxPlayers = valueOf(item, "maxplayers")
	details.PlayingTime = valueOf(item, "playingtime")
	details.YearPublished = valueOf(item, "yearpublished")
	details.Weight = weight(item)
	details.MinAge = IdealAge(doc)
	details.IdealPlayers = IdealPlayers(doc)

	return details, nil
}

// thumbnail prefers <thumbnail> and falls back to the full-size <image>.
func thumbnail(item *xmlquery.Node) string {
	for _, tag := range []string{"thumbnail", "image"} {
		if n := xmlquery.FindOne(item, ".//"+tag); n != nil {
			if text := strings.TrimSpace(n.InnerText()); text != "" {
				return text
			}
		}
	}
	return models.Unknown
}

// valueOf returns the value attribute of the first descendant named tag.
func valueOf(item *xmlquery.Node, tag string) string {
	n := xmlquery.FindOne(item, ".//"+tag)
	if n == nil {
		return models.Unknown
	}
	if v := strings.TrimSpace(n.SelectAttr("value")); v != "" {
		return v
	}
	return models.Unknown
}

// weight rounds the average community weight to one decimal.
func weight(item *xmlquery.Node) string {
	raw := valueOf(item, "averageweight")
	if raw == models.Unknown {
		return models.Unknown
	}

	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return models.Unknown
	}
	// exact halves round to even: 2.25 -> 2.2
	return strconv.FormatFloat(w, 'f', 1, 64)
}

// IdealAge returns the suggested_playerage poll result with the strictly greatest vote count.
//
// Ties keep the first-seen maximum. A missing poll, or one where nobody voted, yields [models.Unknown].
func IdealAge(doc *xmlquery.Node) string {
	poll := xmlquery.FindOne(doc, "//poll[@name='suggested_playerage']")
	if poll == nil {
		return models.Unknown
	}

	best, age := 0, models.Unknown
	for _, result := range xmlquery.Find(poll, ".//result") {
		votes, err := strconv.Atoi(strings.TrimSpace(result.SelectAttr("numvotes")))
		if err != nil {
			continue
		}
		if votes > best {
			best = votes
			age = result.SelectAttr("value")
		}
	}
	return age
}

// IdealPlayers returns the numbers of the "recommmendedwith" poll summary joined with an en-dash.
//
// "Recommended with 3–4 players" becomes "3–4".
func IdealPlayers(doc *xmlquery.Node) string {
	summary := xmlquery.FindOne(doc, "//poll-summary[@name='suggested_numplayers']")
	if summary == nil {
		return models.Unknown
	}

	result := xmlquery.FindOne(summary, ".//result[@name='recommmendedwith']")
	if result == nil {
		return models.Unknown
	}

	return PlayerRange(result.SelectAttr("value"))
}

// PlayerRange joins every number in label with an en-dash, or returns [models.Unknown] when there is none.
func PlayerRange(label string) string {
	numbers := digits.FindAllString(label, -1)
	if len(numbers) == 0 {
		return models.Unknown
	}
	return strings.Join(numbers, "–")
}
