package services

import (
	"context"

	"github.com/desertthunder/flix/internal/models"
)

// MovieService defines the read-only operations offered by a movie database provider.
type MovieService interface {
	// SearchByTitle returns the movies matching query, in provider order.
	// A blank query returns an empty slice without contacting the provider.
	SearchByTitle(ctx context.Context, query string) ([]models.MovieSummary, error)

	// FetchByID returns the full record for an external id.
	FetchByID(ctx context.Context, id string) (*models.MovieDetail, error)

	// Name returns the name of the provider (e.g., "OMDb")
	Name() string
}
