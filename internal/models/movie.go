package models

import "strings"

// NotAvailable is the OMDb placeholder for a missing value.
const NotAvailable = "N/A"

// MovieSummary is a single search result.
type MovieSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Type   string `json:"type,omitempty"`
	Poster string `json:"poster,omitempty"`
}

// HasPoster reports whether the summary carries a usable poster URL.
func (m MovieSummary) HasPoster() bool {
	return Present(m.Poster)
}

// MovieDetail is the full record fetched for one title.
type MovieDetail struct {
	MovieSummary
	Rated      string `json:"rated,omitempty"`
	Released   string `json:"released,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Director   string `json:"director,omitempty"`
	Writer     string `json:"writer,omitempty"`
	Actors     string `json:"actors,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Language   string `json:"language,omitempty"`
	Country    string `json:"country,omitempty"`
	IMDbRating string `json:"imdb_rating,omitempty"`
	IMDbVotes  string `json:"imdb_votes,omitempty"`
}

// Cast splits the comma separated actor list.
func (d MovieDetail) Cast() []string {
	if !Present(d.Actors) {
		return nil
	}
	parts := strings.Split(d.Actors, ",")
	cast := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cast = append(cast, p)
		}
	}
	return cast
}

// Present reports whether an OMDb field holds a real value.
func Present(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != NotAvailable
}
