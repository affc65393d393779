package tasks

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/services"
)

// Exporter runs bulk operations against one movie provider.
type Exporter struct {
	movies     services.MovieService
	httpClient *http.Client
	logger     *log.Logger
}

// NewExporter creates an [Exporter]. A nil client falls back to [http.DefaultClient] for poster downloads.
func NewExporter(movies services.MovieService, httpClient *http.Client, logger *log.Logger) *Exporter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{movies: movies, httpClient: httpClient, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
