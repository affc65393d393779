package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrConfiguration = fmt.Errorf("missing OMDB API key")

	// Authentication errors
	ErrDuplicateAccount   = fmt.Errorf("user with this email already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNetwork            = fmt.Errorf("network error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrMissingMovieID  = fmt.Errorf("%w: missing movie id", ErrInvalidInput)
)

const (
	msgConfiguration      = "Missing OMDB API key. Set omdb.api_key in config.toml or FLIX_OMDB_API_KEY."
	msgNetwork            = "Network error. Please check your connection."
	msgDuplicateAccount   = "User with this email already exists."
	msgInvalidCredentials = "Invalid email or password."
	msgMissingMovieID     = "Missing movie id."
	msgUnexpected         = "Something went wrong."
)

// ServiceError is an application-level rejection from the remote movie database.
//
// Message is the text returned by the service and is shown to users verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is reports a match against [ErrAPIRequest] so callers can test the class with [errors.Is].
func (e *ServiceError) Is(target error) bool {
	return target == ErrAPIRequest
}

// NewServiceError builds a [ServiceError], falling back to fallback when msg is empty.
func NewServiceError(msg, fallback string) *ServiceError {
	if msg == "" {
		msg = fallback
	}
	return &ServiceError{Message: msg}
}

// UserMessage converts an operation error into the text displayed inline in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		return svcErr.Message
	case errors.Is(err, ErrConfiguration):
		return msgConfiguration
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return msgNetwork
	case errors.Is(err, ErrDuplicateAccount):
		return msgDuplicateAccount
	case errors.Is(err, ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, ErrMissingMovieID):
		return msgMissingMovieID
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return msgUnexpected
	}
}
