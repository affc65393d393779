// package formatter renders search results and movie details for the command line (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Format names an output format accepted by --format.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat maps a flag value onto a [Format]. An empty value selects [Text].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case "md":
		return Markdown, nil
	case Text, Markdown, CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, csv or json)", shared.ErrInvalidInput, s)
	}
}

// Extension is the file extension used when a format is written to disk.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case Text:
		return "txt"
	default:
		return string(f)
	}
}

// field returns v, or "-" when OMDb had no value.
func field(v string) string {
	if !models.Present(v) {
		return "-"
	}
	return strings.TrimSpace(v)
}

// ResultsToCSV renders results with columns: ID, Title, Year, Type, Poster
func ResultsToCSV(results []models.MovieSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Type", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range results {
		poster := ""
		if m.HasPoster() {
			poster = m.Poster
		}
		record := []string{m.ID, m.Title, m.Year, m.Type, poster}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ResultsToMarkdown renders results as a numbered list headed by the query.
func ResultsToMarkdown(query string, results []models.MovieSummary) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Results for %q\n\n", query)
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(results))

	for i, m := range results {
		fmt.Fprintf(&buf, "%d. [%s](%s) (%s)\n", i+1, m.Title, shared.IMDbURL(m.ID), field(m.Year))
	}

	return buf.Bytes(), nil
}

// ResultsToText renders results one per line.
func ResultsToText(query string, results []models.MovieSummary) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Query: %s\n", query)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(results))

	for i, m := range results {
		fmt.Fprintf(&buf, "%d. %s (%s) [%s]\n", i+1, m.Title, field(m.Year), m.ID)
	}

	return buf.Bytes(), nil
}

// DetailToText renders a movie as labelled lines. Missing values are omitted.
func DetailToText(d *models.MovieDetail) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s (%s)\n", d.Title, field(d.Year))
	for _, row := range detailRows(d) {
		fmt.Fprintf(&buf, "%s: %s\n", row[0], row[1])
	}
	if models.Present(d.Plot) {
		fmt.Fprintf(&buf, "\n%s\n", d.Plot)
	}

	return buf.Bytes(), nil
}

// DetailToMarkdown renders a movie with an optional poster image.
func DetailToMarkdown(d *models.MovieDetail, posterFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s (%s)\n\n", d.Title, field(d.Year))

	if posterFilename != "" {
		fmt.Fprintf(&buf, "![Poster](%s)\n\n", posterFilename)
	}

	for _, row := range detailRows(d) {
		fmt.Fprintf(&buf, "**%s**: %s\n", row[0], row[1])
	}

	if models.Present(d.Plot) {
		fmt.Fprintf(&buf, "\n## Plot\n\n%s\n", d.Plot)
	}
	if cast := d.Cast(); len(cast) > 0 {
		buf.WriteString("\n## Cast\n\n")
		for _, name := range cast {
			fmt.Fprintf(&buf, "- %s\n", name)
		}
	}

	fmt.Fprintf(&buf, "\n[IMDb](%s)\n", shared.IMDbURL(d.ID))
	return buf.Bytes(), nil
}

// DetailToCSV renders a movie as field,value rows.
func DetailToCSV(d *models.MovieDetail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := append([][2]string{{"ID", d.ID}, {"Title", d.Title}, {"Year", field(d.Year)}}, detailRows(d)...)
	if models.Present(d.Plot) {
		rows = append(rows, [2]string{"Plot", d.Plot})
	}

	if err := writer.Write([]string{"Field", "Value"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row[:]); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func detailRows(d *models.MovieDetail) [][2]string {
	candidates := [][2]string{
		{"Rated", d.Rated},
		{"Released", d.Released},
		{"Runtime", d.Runtime},
		{"Genre", d.Genre},
		{"Director", d.Director},
		{"Writer", d.Writer},
		{"Actors", d.Actors},
		{"Language", d.Language},
		{"Country", d.Country},
		{"IMDb Rating", d.IMDbRating},
		{"IMDb Votes", d.IMDbVotes},
	}

	rows := make([][2]string, 0, len(candidates))
	for _, c := range candidates {
		if models.Present(c[1]) {
			rows = append(rows, [2]string{c[0], strings.TrimSpace(c[1])})
		}
	}
	return rows
}

// RenderResults renders results in format f.
func RenderResults(f Format, query string, results []models.MovieSummary) ([]byte, error) {
	switch f {
	case CSV:
		return ResultsToCSV(results)
	case Markdown:
		return ResultsToMarkdown(query, results)
	case JSON:
		return shared.MarshalJSON(results, true)
	default:
		return ResultsToText(query, results)
	}
}

// RenderDetail renders a movie in format f.
func RenderDetail(f Format, d *models.MovieDetail) ([]byte, error) {
	switch f {
	case CSV:
		return DetailToCSV(d)
	case Markdown:
		return DetailToMarkdown(d, "")
	case JSON:
		return shared.MarshalJSON(d, true)
	default:
		return DetailToText(d)
	}
}

// DownloadPoster downloads a poster image and returns the raw bytes
func DownloadPoster(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if !models.Present(url) {
		return nil, fmt.Errorf("%w: movie has no poster", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poster request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download poster: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read poster data: %w", err)
	}

	return data, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Poster    string
}

// WriteMarkdownExport writes a movie to {dir}/README.md, plus {dir}/poster.jpg when the poster downloads.
//
// Directory name defaults to the movie ID. A poster failure is reported on warn and does not fail the export.
func WriteMarkdownExport(ctx context.Context, d *models.MovieDetail, outputDir string, client *http.Client, warn io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = d.ID
	}
	if warn == nil {
		warn = io.Discard
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var posterFilename string
	if d.HasPoster() {
		data, err := DownloadPoster(ctx, client, d.Poster)
		if err != nil {
			fmt.Fprintf(warn, "Warning: failed to download poster: %v\n", err)
		} else {
			posterFilename = "poster.jpg"
			posterPath := fmt.Sprintf("%s/%s", outputDir, posterFilename)
			if err := os.WriteFile(posterPath, data, 0644); err != nil {
				fmt.Fprintf(warn, "Warning: failed to save poster: %v\n", err)
				posterFilename = ""
			} else {
				result.Poster = posterPath
				result.Files = append(result.Files, posterPath)
			}
		}
	}

	md, err := DetailToMarkdown(d, posterFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
