// Package services defines the [MovieService] interface and implements it for the OMDb HTTP API.
//
// # OMDb Implementation
//
// [OMDBService] issues GET requests against a single base endpoint with query parameters:
//   - search: apikey, s=<title>, type=movie
//   - detail: apikey, i=<imdb id>, plot=full
//
// Every response carries Response="True"|"False"; on "False" the Error field holds the reason.
// Requests share one http.Client with a fixed timeout and a token bucket limiter
// (golang.org/x/time/rate) so a burst of committed queries cannot exhaust the daily quota.
//
// # Error Handling
//
// Errors are classified with the shared package taxonomy:
//   - [shared.ErrConfiguration] : no API key; returned before any request is made
//   - [shared.ServiceError] : OMDb rejected the request (Response="False" or a non-2xx status)
//   - [shared.ErrNetwork] : no response was received (DNS, refused connection, timeout)
//
// A search that OMDb answers with "Movie not found!" is not an error: it yields zero results.
// A detail lookup for an unknown id is an error, since there is nothing to show instead.
// Cancelling the caller's context returns the context error unchanged.
package services
