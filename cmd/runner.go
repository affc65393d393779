package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/guard"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies not supplied through [RunnerOpts] are built on first use from the configuration file
// and the root command's flags.
type Runner struct {
	config     *shared.Config
	configPath string
	movies     services.MovieService
	store      store.Store
	session    *session.Manager
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Movies     services.MovieService
	Store      store.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		movies:     opts.Movies,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		openURL:    opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, movieCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() {
	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "err", err)
	}
	r.db = nil
}

// loadConfig resolves the configuration from --config, falling back to defaults when the file is absent.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if r.config != nil {
		return nil
	}

	path := r.configPath
	if path == "" {
		path = cmd.String("config")
	}
	r.configPath = path

	config, err := shared.LoadConfig(path)
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("config file not found, using defaults", "path", path)
		r.config = shared.DefaultConfig()
	case err != nil:
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	default:
		r.config = config
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return nil
}

// prepare builds the movie client, the store and the session manager.
func (r *Runner) prepare(cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	if r.movies == nil {
		r.movies = services.NewOMDBService(services.OMDBOpts{
			APIKey:            r.config.OMDB.APIKey,
			BaseURL:           r.config.OMDB.BaseURL,
			Timeout:           r.config.OMDB.Timeout.Duration,
			RequestsPerSecond: r.config.OMDB.RequestsPerSecond,
			Logger:            shared.WithLogger(r.logger, "service", "omdb"),
		})
	}

	if r.store == nil {
		if cmd.Bool("ephemeral") {
			r.logger.Debug("using in-memory store")
			r.store = store.NewMemoryStore()
		} else {
			db, err := shared.OpenDatabase(r.config.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			r.db = db
			r.store = store.NewSQLiteStore(db, r.logger)
		}
	}

	if r.session == nil {
		r.session = session.NewManager(r.store, r.logger)
	}
	return nil
}

// requireRoute applies the route guard to a CLI action that maps onto a protected view.
func (r *Runner) requireRoute(path string) error {
	d := guard.Resolve(r.session.Current().IsAuthenticated(), path)
	if d.Redirect && d.Target == guard.PathSignIn {
		return fmt.Errorf("%w: sign in with 'flix auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// withTimeout bounds a one-shot request by the configured OMDb timeout.
func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config == nil || r.config.OMDB.Timeout.Duration <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.config.OMDB.Timeout.Duration)
}
