package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
)

// newOMDBServer serves handler and returns a service pointed at it.
func newOMDBServer(t *testing.T, handler http.HandlerFunc) (*OMDBService, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewOMDBService(OMDBOpts{APIKey: "test-key", BaseURL: server.URL + "/"}), &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestOMDBService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Defaults", func(t *testing.T) {
			svc := NewOMDBService(OMDBOpts{APIKey: " key "})

			if svc.baseURL != defaultOMDBBaseURL {
				t.Errorf("expected default baseURL, got %s", svc.baseURL)
			}
			if svc.httpClient.Timeout != defaultOMDBTimeout {
				t.Errorf("expected default timeout %s, got %s", defaultOMDBTimeout, svc.httpClient.Timeout)
			}
			if svc.apiKey != "key" {
				t.Errorf("expected trimmed api key, got %q", svc.apiKey)
			}
			if svc.limiter != nil {
				t.Error("expected no limiter without a rate")
			}
		})

		t.Run("With Custom Client And Rate", func(t *testing.T) {
			client := &http.Client{}
			svc := NewOMDBService(OMDBOpts{HTTPClient: client, RequestsPerSecond: 2})

			if svc.httpClient != client {
				t.Error("expected custom client to be used")
			}
			if svc.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewOMDBService(OMDBOpts{}); svc.Name() != "OMDb" {
			t.Errorf("expected name to be 'OMDb', got %s", svc.Name())
		}
	})

	t.Run("SearchByTitle", func(t *testing.T) {
		t.Run("Successful Search", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("apikey") != "test-key" {
					t.Errorf("expected apikey test-key, got %s", q.Get("apikey"))
				}
				if q.Get("s") != "batman" {
					t.Errorf("expected trimmed query 'batman', got %q", q.Get("s"))
				}
				if q.Get("type") != "movie" {
					t.Errorf("expected type=movie, got %s", q.Get("type"))
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"Response":     "True",
					"totalResults": "2",
					"Search": []map[string]string{
						{"Title": "Batman Begins", "Year": "2005", "imdbID": "tt0372784", "Type": "movie", "Poster": "https://img/bb.jpg"},
						{"Title": "Batman", "Year": "1989", "imdbID": "tt0096895", "Type": "movie", "Poster": "N/A"},
					},
				})
			})

			movies, err := svc.SearchByTitle(context.Background(), "  batman ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 2 {
				t.Fatalf("expected 2 movies, got %d", len(movies))
			}
			if movies[0].ID != "tt0372784" || movies[0].Title != "Batman Begins" || movies[0].Year != "2005" {
				t.Errorf("unexpected first movie %+v", movies[0])
			}
			if movies[1].HasPoster() {
				t.Error("expected N/A poster to be absent")
			}
		})

		t.Run("Not Found Is Empty", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Movie not found!"})
			})

			for _, q := range []string{"zzzzqqq", "no such film", "xyzzy"} {
				movies, err := svc.SearchByTitle(context.Background(), q)
				if err != nil {
					t.Fatalf("%q: expected no error, got %v", q, err)
				}
				if movies == nil || len(movies) != 0 {
					t.Errorf("%q: expected empty non-nil slice, got %v", q, movies)
				}
			}
		})

		t.Run("Missing Search Field Is Empty", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "True"})
			})

			movies, err := svc.SearchByTitle(context.Background(), "batman")
			if err != nil || len(movies) != 0 {
				t.Errorf("expected empty result, got %v, %v", movies, err)
			}
		})

		t.Run("Blank Query Skips Network", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("must not be called"))
			svc := NewOMDBService(OMDBOpts{APIKey: "k", HTTPClient: &http.Client{Transport: rt}})

			for _, q := range []string{"", " ", "\t\n  "} {
				movies, err := svc.SearchByTitle(context.Background(), q)
				if err != nil {
					t.Errorf("%q: expected no error, got %v", q, err)
				}
				if len(movies) != 0 {
					t.Errorf("%q: expected no movies, got %v", q, movies)
				}
			}
			if rt.Calls() != 0 {
				t.Errorf("expected no requests, got %d", rt.Calls())
			}
		})

		t.Run("Blank Query Without Key", func(t *testing.T) {
			svc := NewOMDBService(OMDBOpts{})
			if _, err := svc.SearchByTitle(context.Background(), "  "); err != nil {
				t.Errorf("blank query should not need a key, got %v", err)
			}
		})

		t.Run("Missing API Key", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("must not be called"))
			svc := NewOMDBService(OMDBOpts{HTTPClient: &http.Client{Transport: rt}})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if !errors.Is(err, shared.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
			if rt.Calls() != 0 {
				t.Errorf("expected no requests, got %d", rt.Calls())
			}
		})

		t.Run("Service Rejection", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Too many results."})
			})

			_, err := svc.SearchByTitle(context.Background(), "a")
			var svcErr *shared.ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("expected ServiceError, got %v", err)
			}
			if svcErr.Message != "Too many results." {
				t.Errorf("expected verbatim message, got %q", svcErr.Message)
			}
		})

		t.Run("Service Rejection Without Message", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "False"})
			})

			_, err := svc.SearchByTitle(context.Background(), "a")
			if err == nil || err.Error() != fallbackSearchError {
				t.Errorf("expected fallback message, got %v", err)
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"Response": "False", "Error": "Invalid API key!"})
			})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest class, got %v", err)
			}
			if err.Error() != "Invalid API key!" {
				t.Errorf("expected body message, got %q", err.Error())
			}
		})

		t.Run("Non-2xx Status Without Body", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if err == nil || err.Error() != fallbackHTTPError {
				t.Errorf("expected %q, got %v", fallbackHTTPError, err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			svc := NewOMDBService(OMDBOpts{APIKey: "k", HTTPClient: client})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-release
			}))
			defer server.Close()
			defer close(release)

			svc := NewOMDBService(OMDBOpts{APIKey: "k", BaseURL: server.URL, Timeout: 20 * time.Millisecond})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork on timeout, got %v", err)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "True"})
			})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := svc.SearchByTitle(ctx, "batman")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}
			svc := NewOMDBService(OMDBOpts{APIKey: "k", HTTPClient: client})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("Malformed JSON", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("<html>")),
					Header:     http.Header{},
				}, nil),
			}
			svc := NewOMDBService(OMDBOpts{APIKey: "k", HTTPClient: client})

			_, err := svc.SearchByTitle(context.Background(), "batman")
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})

	t.Run("FetchByID", func(t *testing.T) {
		t.Run("Successful Lookup", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("i") != "tt0372784" || q.Get("plot") != "full" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				writeJSON(w, http.StatusOK, map[string]string{
					"Response":   "True",
					"Title":      "Batman Begins",
					"Year":       "2005",
					"imdbID":     "tt0372784",
					"Type":       "movie",
					"Poster":     "https://img/bb.jpg",
					"Rated":      "PG-13",
					"Runtime":    "140 min",
					"Genre":      "Action, Crime, Drama",
					"Director":   "Christopher Nolan",
					"Actors":     "Christian Bale, Michael Caine, Ken Watanabe",
					"Plot":       "After witnessing his parents' death...",
					"imdbRating": "8.2",
				})
			})

			detail, err := svc.FetchByID(context.Background(), "tt0372784")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if detail.Title != "Batman Begins" || detail.Director != "Christopher Nolan" || detail.IMDbRating != "8.2" {
				t.Errorf("unexpected detail %+v", detail)
			}
			if len(detail.Cast()) != 3 {
				t.Errorf("expected 3 cast members, got %v", detail.Cast())
			}
		})

		t.Run("Unknown ID Is An Error", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
			})

			_, err := svc.FetchByID(context.Background(), "tt000")
			var svcErr *shared.ServiceError
			if !errors.As(err, &svcErr) || svcErr.Message != "Incorrect IMDb ID." {
				t.Errorf("expected ServiceError with message, got %v", err)
			}
		})

		t.Run("Movie Not Found Is Still An Error", func(t *testing.T) {
			svc, _ := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Movie not found!"})
			})

			if _, err := svc.FetchByID(context.Background(), "tt999"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected service error, got %v", err)
			}
		})

		t.Run("Empty ID", func(t *testing.T) {
			svc, hits := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {})

			_, err := svc.FetchByID(context.Background(), " ")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if msg := shared.UserMessage(err); msg != "Missing movie id." {
				t.Errorf("expected 'Missing movie id.', got %q", msg)
			}
			if hits.Load() != 0 {
				t.Error("expected no request for empty id")
			}
		})

		t.Run("Missing API Key", func(t *testing.T) {
			svc := NewOMDBService(OMDBOpts{})
			if _, err := svc.FetchByID(context.Background(), "tt1"); !errors.Is(err, shared.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("no route to host"))}
			svc := NewOMDBService(OMDBOpts{APIKey: "k", HTTPClient: client})

			if _, err := svc.FetchByID(context.Background(), "tt1"); !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})
	})

	t.Run("Rate Limiter", func(t *testing.T) {
		svc, hits := newOMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"Response": "True"})
		})
		svc.limiter = NewOMDBService(OMDBOpts{RequestsPerSecond: 0.001}).limiter

		if _, err := svc.SearchByTitle(context.Background(), "first"); err != nil {
			t.Fatalf("first request should use the burst token: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := svc.SearchByTitle(ctx, "second"); err == nil {
			t.Error("expected second request to be held back by the limiter")
		}
		if hits.Load() != 1 {
			t.Errorf("expected exactly one request to reach the server, got %d", hits.Load())
		}
	})
}
