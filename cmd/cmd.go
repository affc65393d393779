// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// app builds the root command. Its flags are inherited by every subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "flix",
		Usage:   "Search the OMDb movie database from your terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep accounts and sessions in memory for this run only",
			},
		},
		Commands: r.register(),
	}
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, markdown, csv or json",
			Value:   string(formatter.Text),
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON (same as --format json)",
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, then initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they have been applied",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles local account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the local account and session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password (at least 6 characters); prompted when omitted",
						Sources: cli.EnvVars("FLIX_PASSWORD"),
					},
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "login",
				Usage: "Sign in to an existing account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address (defaults to the remembered one)"},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password; prompted when omitted",
						Sources: cli.EnvVars("FLIX_PASSWORD"),
					},
					&cli.BoolFlag{Name: "remember", Usage: "Remember the email for the next sign-in", Value: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// searchCommand searches movies by title
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search movies by title",
		ArgsUsage: "<title>",
		Flags: append(formatFlags(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results to print (0 for all)",
			},
		),
		Action: r.Search,
	}
}

// movieCommand shows a single movie
func movieCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "movie",
		Aliases:   []string{"m"},
		Usage:     "Show details for a movie by IMDb id",
		ArgsUsage: "<imdb-id>",
		Flags: append(formatFlags(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the IMDb page in the default browser",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write a Markdown page (and poster) to this directory",
			},
		),
		Action: r.Movie,
	}
}

// exportCommand writes many movies to disk at once
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export several movies by IMDb id, with a manifest",
		ArgsUsage: "<imdb-id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: markdown, text, csv or json",
				Value:   string(formatter.Markdown),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: flix_export_<epoch>)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers (max 10)",
				Value: 5,
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "open",
				Usage: "Location to start at, e.g. /home or /movie/tt0372784",
				Value: "/",
			},
		},
		Action: r.TUI,
	}
}
