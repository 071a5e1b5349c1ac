package ui

import (
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = gameItem{}

// gameItem wraps [models.GameDetails] to implement [list.Item].
type gameItem struct {
	game models.GameDetails
}

func (i gameItem) FilterValue() string { return i.game.Name }
func (i gameItem) Title() string       { return i.game.Name }
func (i gameItem) Description() string {
	return fmt.Sprintf("%s–%s players • %s min • weight %s • %s",
		i.game.MinPlayers, i.game.MaxPlayers, i.game.PlayingTime, i.game.Weight, i.game.YearPublished)
}

// gameItems converts details, sorted by name, into list items.
func gameItems(details []models.GameDetails) []list.Item {
	sorted := models.SortByName(details)
	items := make([]list.Item, len(sorted))
	for i, d := range sorted {
		items[i] = gameItem{game: d}
	}
	return items
}
