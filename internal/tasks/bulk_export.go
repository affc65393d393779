package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
	manifestName     = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk movie exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: Markdown)
	OutputDir  string           // Base output directory (default: flix_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 5, max: 10)
	RateLimit  float64          // Detail requests per second (default: 5)
}

// MovieExportResult is the outcome for a single title.
type MovieExportResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Message string   `json:"error,omitempty"`
	Error   error    `json:"-"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	Total           int                 `json:"total"`
	Successful      int                 `json:"successful"`
	Failed          int                 `json:"failed"`
	Format          string              `json:"format"`
	OutputDirectory string              `json:"output_directory"`
	ManifestPath    string              `json:"-"`
	Results         []MovieExportResult `json:"results"`
}

type exportJob struct {
	id     string
	detail *models.MovieDetail
}

// BulkExport fetches and writes every id concurrently, then writes a manifest into the output directory.
//
// Blank and repeated ids are skipped. Ids that are not a single path component fail
// without a lookup. Results arrive in completion order.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	ids, rejected := uniqueIDs(ids)
	if len(ids) == 0 && len(rejected) == 0 {
		return nil, fmt.Errorf("%w: at least one IMDb id", shared.ErrMissingArgument)
	}

	opts = opts.withDefaults()
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Total:           len(ids) + len(rejected),
		Format:          string(opts.Format),
		OutputDirectory: opts.OutputDir,
		Results:         make([]MovieExportResult, 0, len(ids)+len(rejected)),
	}
	for _, id := range rejected {
		err := fmt.Errorf("%w: unsafe movie id %q", shared.ErrInvalidInput, id)
		result.Results = append(result.Results, MovieExportResult{
			ID:      id,
			Title:   fmt.Sprintf("Unknown (%s)", id),
			Message: err.Error(),
			Error:   err,
		})
		result.Failed++
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan MovieExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)

		e.sendProgress(prog, fetchingDetailsUpdate(len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			detail, err := e.movies.FetchByID(ctx, id)
			if err != nil {
				e.logger.Debug("bulk export fetch failed", "id", id, "err", err)
				results <- MovieExportResult{
					ID:    id,
					Title: fmt.Sprintf("Unknown (%s)", id),
					Error: fmt.Errorf("failed to fetch movie: %w", err),
				}
				continue
			}

			jobs <- exportJob{id: id, detail: detail}
			e.sendProgress(prog, fetchedDetailUpdate(i+1, len(ids), detail.Title))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.Message = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, len(res.Files)))
		} else {
			result.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Title, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (o BulkExportOpts) withDefaults() BulkExportOpts {
	if o.Format == "" {
		o.Format = formatter.Markdown
	}
	if o.OutputDir == "" {
		o.OutputDir = fmt.Sprintf("flix_export_%d", time.Now().Unix())
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = defaultWorkers
	}
	if o.NumWorkers > maxWorkers {
		o.NumWorkers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// uniqueIDs trims and dedupes ids, splitting off the ones that cannot name a file in the output directory.
func uniqueIDs(ids []string) (valid, rejected []string) {
	seen := make(map[string]bool, len(ids))
	valid = make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if !safePathComponent(id) {
			rejected = append(rejected, id)
			continue
		}
		valid = append(valid, id)
	}
	return valid, rejected
}

func safePathComponent(id string) bool {
	return id != "." && !strings.Contains(id, "..") && !strings.ContainsAny(id, `/\`)
}

// exportWorker writes movies from the jobs channel until it closes.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- MovieExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			results <- MovieExportResult{ID: job.id, Title: job.detail.Title, Error: ctx.Err()}
			continue
		}
		results <- e.exportSingleMovie(ctx, job, opts)
	}
}

// exportSingleMovie writes one movie in the requested format.
func (e *Exporter) exportSingleMovie(ctx context.Context, j exportJob, opts BulkExportOpts) MovieExportResult {
	result := MovieExportResult{
		ID:    j.id,
		Title: j.detail.Title,
		Files: []string{},
	}

	if opts.Format == formatter.Markdown {
		dir := filepath.Join(opts.OutputDir, j.id)
		mdRes, err := formatter.WriteMarkdownExport(ctx, j.detail, dir, e.httpClient, nil)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true
		return result
	}

	data, err := formatter.RenderDetail(opts.Format, j.detail)
	if err != nil {
		result.Error = fmt.Errorf("%s render failed: %w", opts.Format, err)
		return result
	}

	path := filepath.Join(opts.OutputDir, j.id+"."+opts.Format.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Errorf("%s write failed: %w", opts.Format, err)
		return result
	}

	result.Files = []string{path}
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
