package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flix/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.MovieSummary] to implement [list.Item].
type movieItem struct {
	movie models.MovieSummary
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	desc := i.movie.Year
	if !models.Present(desc) {
		desc = "Unknown year"
	}
	if models.Present(i.movie.Type) {
		desc = fmt.Sprintf("%s • %s", desc, i.movie.Type)
	}
	return fmt.Sprintf("%s • %s", desc, i.movie.ID)
}

func movieItems(movies []models.MovieSummary) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}
