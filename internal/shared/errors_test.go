package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestServiceError(t *testing.T) {
	t.Run("Matches ErrAPIRequest", func(t *testing.T) {
		err := fmt.Errorf("search failed: %w", NewServiceError("Invalid API key!", "fallback"))

		if !errors.Is(err, ErrAPIRequest) {
			t.Error("expected wrapped service error to match ErrAPIRequest")
		}
		if errors.Is(err, ErrNetwork) {
			t.Error("service error must not match ErrNetwork")
		}
	})

	t.Run("Fallback Message", func(t *testing.T) {
		err := NewServiceError("", "Failed to fetch movies.")
		if err.Error() != "Failed to fetch movies." {
			t.Errorf("expected fallback message, got %q", err.Error())
		}
	})
}

func TestUserMessage(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"service error verbatim", fmt.Errorf("wrap: %w", &ServiceError{Message: "Too many results."}), "Too many results."},
		{"configuration", fmt.Errorf("search: %w", ErrConfiguration), msgConfiguration},
		{"network", fmt.Errorf("%w: dial tcp", ErrNetwork), msgNetwork},
		{"deadline", context.DeadlineExceeded, msgNetwork},
		{"duplicate account", ErrDuplicateAccount, msgDuplicateAccount},
		{"invalid credentials", fmt.Errorf("login: %w", ErrInvalidCredentials), msgInvalidCredentials},
		{"missing movie id", fmt.Errorf("lookup: %w", ErrMissingMovieID), "Missing movie id."},
		{"other invalid input", fmt.Errorf("%w: bad format", ErrInvalidInput), "invalid input: bad format"},
		{"unknown", errors.New("boom"), msgUnexpected},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
