package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/guard"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

func outputFormat(cmd *cli.Command) (formatter.Format, error) {
	if cmd.Bool("json") {
		return formatter.JSON, nil
	}
	return formatter.ParseFormat(cmd.String("format"))
}

// Search runs one title search and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: title to search for", shared.ErrMissingArgument)
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}
	if err := r.requireRoute(guard.PathHome); err != nil {
		return err
	}

	r.logger.Debug("searching", "query", query, "service", r.movies.Name())
	results, err := r.movies.SearchByTitle(ctx, query)
	if err != nil {
		return err
	}

	if limit := cmd.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if len(results) == 0 && format == formatter.Text {
		return r.writePlain("No movies found for %s. Try another search term.\n", query)
	}

	out, err := formatter.RenderResults(format, query, results)
	if err != nil {
		return err
	}
	return r.writeBytes(out)
}

// Movie fetches one title and prints, opens or exports it.
func (r *Runner) Movie(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: IMDb id, e.g. tt0372784", shared.ErrMissingArgument)
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}
	if err := r.requireRoute(guard.MoviePath(id)); err != nil {
		return err
	}

	if cmd.Bool("open") {
		target := shared.IMDbURL(id)
		if err := r.openURL(target); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		return r.writePlain("Opened %s\n", target)
	}

	detail, err := r.movies.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if dir := cmd.String("export"); dir != "" {
		exportCtx, cancel := r.withTimeout(ctx)
		defer cancel()

		result, err := formatter.WriteMarkdownExport(exportCtx, detail, dir, r.httpClient, r.output)
		if err != nil {
			return err
		}
		for _, f := range result.Files {
			r.writePlain("✓ Wrote %s\n", f)
		}
		return nil
	}

	out, err := formatter.RenderDetail(format, detail)
	if err != nil {
		return err
	}
	return r.writeBytes(out)
}

// Export writes every id given on the command line and prints a summary.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one IMDb id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}
	if err := r.requireRoute(guard.PathHome); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	exporter := tasks.NewExporter(r.movies, r.httpClient, shared.WithLogger(r.logger, "task", "export"))
	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.OMDB.RequestsPerSecond,
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlain("Exported %d of %d movies to %s\n", result.Successful, result.Total, result.OutputDirectory)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("✗ %s: %s\n", res.ID, res.Message)
			}
		}
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}
	return err
}
