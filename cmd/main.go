package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/flix/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		runner.Close()
		logger.Fatal(describe(err))
	}
}

// describe turns a command error into the line shown to the user.
func describe(err error) string {
	for _, known := range []error{
		shared.ErrConfiguration,
		shared.ErrAPIRequest,
		shared.ErrNetwork,
		shared.ErrDuplicateAccount,
		shared.ErrInvalidCredentials,
	} {
		if errors.Is(err, known) {
			return shared.UserMessage(err)
		}
	}
	return err.Error()
}
