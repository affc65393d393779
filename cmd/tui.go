package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/search"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.prepare(cmd); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Session: r.session,
		Movies:  r.movies,
		Search: search.Options{
			Debounce:     r.config.Search.Debounce.Duration,
			InitialQuery: r.config.Search.InitialQuery,
		},
		Logger:    fileLogger,
		StartPath: cmd.String("open"),
		OpenURL:   r.openURL,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
