package search

import "github.com/desertthunder/flix/internal/models"

// State is a snapshot of the search view.
type State struct {
	RawQuery       string
	CommittedQuery string
	Results        []models.MovieSummary
	Loading        bool
	Error          string
}

// HasResults reports whether the last fetch returned any movies.
func (s State) HasResults() bool {
	return len(s.Results) > 0
}

// ResultCount returns the number of movies in the snapshot.
func (s State) ResultCount() int {
	return len(s.Results)
}

// IsEmpty reports a finished, successful search for a non-empty query that matched nothing.
func (s State) IsEmpty() bool {
	return s.CommittedQuery != "" && !s.Loading && s.Error == "" && len(s.Results) == 0
}

func (s State) clone() State {
	s.Results = append([]models.MovieSummary(nil), s.Results...)
	return s
}

// DetailState is a snapshot of the detail view.
type DetailState struct {
	ID      string
	Detail  *models.MovieDetail
	Loading bool
	Error   string
}

func (s DetailState) clone() DetailState {
	if s.Detail != nil {
		d := *s.Detail
		s.Detail = &d
	}
	return s
}
