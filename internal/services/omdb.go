// OMDb API implementation of [MovieService]
//
// Response types based on https://www.omdbapi.com/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultOMDBBaseURL = "https://www.omdbapi.com/"
	defaultOMDBTimeout = 8 * time.Second

	omdbNotFound = "Movie not found!"

	fallbackSearchError = "Failed to fetch movies."
	fallbackDetailError = "Failed to fetch movie details."
	fallbackHTTPError   = "Unexpected server error."
)

// omdbEnvelope is the status pair present on every OMDb response.
type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (e omdbEnvelope) ok() bool {
	return e.Response != "False"
}

// OMDBMovie is a single entry of the Search array.
type OMDBMovie struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

func (m OMDBMovie) summary() models.MovieSummary {
	return models.MovieSummary{ID: m.IMDbID, Title: m.Title, Year: m.Year, Type: m.Type, Poster: m.Poster}
}

// OMDBSearchResult is the body returned for s= queries.
type OMDBSearchResult struct {
	omdbEnvelope
	Search       []OMDBMovie `json:"Search"`
	TotalResults string      `json:"totalResults"`
}

// OMDBDetail is the flat body returned for i= queries.
type OMDBDetail struct {
	omdbEnvelope
	OMDBMovie
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
}

func (d OMDBDetail) detail() *models.MovieDetail {
	return &models.MovieDetail{
		MovieSummary: d.summary(),
		Rated:        d.Rated,
		Released:     d.Released,
		Runtime:      d.Runtime,
		Genre:        d.Genre,
		Director:     d.Director,
		Writer:       d.Writer,
		Actors:       d.Actors,
		Plot:         d.Plot,
		Language:     d.Language,
		Country:      d.Country,
		IMDbRating:   d.IMDbRating,
		IMDbVotes:    d.IMDbVotes,
	}
}

// OMDBOpts contains configuration options for creating an [OMDBService].
type OMDBOpts struct {
	APIKey            string
	BaseURL           string        // defaults to https://www.omdbapi.com/
	Timeout           time.Duration // defaults to 8s; ignored when HTTPClient is set
	RequestsPerSecond float64       // zero or negative disables limiting
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// OMDBService implements [MovieService] against the OMDb API.
type OMDBService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewOMDBService creates a new OMDb service instance.
//
// A missing API key is not rejected here; each operation reports [shared.ErrConfiguration] instead.
func NewOMDBService(opts OMDBOpts) *OMDBService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOMDBBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultOMDBTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	svc := &OMDBService{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return svc
}

// Name returns the service name.
func (o *OMDBService) Name() string {
	return "OMDb"
}

// SearchByTitle searches movies by title.
//
// Calls GET {base}?s={query}&type=movie.
func (o *OMDBService) SearchByTitle(ctx context.Context, query string) ([]models.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.MovieSummary{}, nil
	}
	if o.apiKey == "" {
		return nil, shared.ErrConfiguration
	}

	params := url.Values{}
	params.Set("s", query)
	params.Set("type", "movie")

	var result OMDBSearchResult
	if err := o.get(ctx, params, &result); err != nil {
		return nil, err
	}

	if !result.ok() {
		if result.Error == omdbNotFound {
			return []models.MovieSummary{}, nil
		}
		return nil, shared.NewServiceError(result.Error, fallbackSearchError)
	}

	movies := make([]models.MovieSummary, len(result.Search))
	for i, m := range result.Search {
		movies[i] = m.summary()
	}

	o.logger.Debug("search complete", "query", query, "results", len(movies))
	return movies, nil
}

// FetchByID retrieves the full plot record for an IMDb id.
//
// Calls GET {base}?i={id}&plot=full.
func (o *OMDBService) FetchByID(ctx context.Context, id string) (*models.MovieDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.ErrMissingMovieID
	}
	if o.apiKey == "" {
		return nil, shared.ErrConfiguration
	}

	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")

	var result OMDBDetail
	if err := o.get(ctx, params, &result); err != nil {
		return nil, err
	}

	if !result.ok() {
		return nil, shared.NewServiceError(result.Error, fallbackDetailError)
	}

	return result.detail(), nil
}

// get performs a rate limited GET with params plus the API key and decodes a 2xx body into result.
func (o *OMDBService) get(ctx context.Context, params url.Values, result any) error {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	endpoint, err := url.Parse(o.baseURL)
	if err != nil {
		return fmt.Errorf("%w: base url %q: %v", shared.ErrInvalidConfig, o.baseURL, err)
	}
	params.Set("apikey", o.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		o.logger.Warn("omdb request failed", "err", err)
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope omdbEnvelope
		_ = json.Unmarshal(body, &envelope)
		o.logger.Warn("omdb returned an error status", "status", resp.StatusCode, "error", envelope.Error)
		return shared.NewServiceError(envelope.Error, fallbackHTTPError)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
