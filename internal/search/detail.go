package search

import (
	"strings"
	"sync"

	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
)

// DetailLoader fetches the full record for one title at a time.
type DetailLoader struct {
	mu         sync.Mutex
	svc        services.MovieService
	opts       Options
	state      DetailState
	generation uint64
	closed     bool
	inflight   sync.WaitGroup
	hub        shared.Hub[DetailState]
}

// NewDetailLoader creates an idle [DetailLoader]. Only Context and Logger are read from opts.
func NewDetailLoader(svc services.MovieService, opts Options) *DetailLoader {
	return &DetailLoader{svc: svc, opts: opts.withDefaults()}
}

// Snapshot returns the current state.
func (d *DetailLoader) Snapshot() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// Subscribe registers fn for every published state and returns a func that removes it.
func (d *DetailLoader) Subscribe(fn func(DetailState)) func() {
	return d.hub.Subscribe(fn)
}

// Load starts fetching id, superseding any earlier load.
func (d *DetailLoader) Load(id string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	d.generation++
	gen := d.generation
	id = strings.TrimSpace(id)
	d.state = DetailState{ID: id, Loading: true}

	d.inflight.Add(1)
	d.hub.Publish(&d.mu, d.state.clone())
	go d.fetch(gen, id)
}

// Close discards the outcome of any lookup still in flight.
func (d *DetailLoader) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.generation++
}

// Wait blocks until every lookup started so far has returned.
func (d *DetailLoader) Wait() {
	d.inflight.Wait()
}

func (d *DetailLoader) fetch(gen uint64, id string) {
	defer d.inflight.Done()

	d.opts.Logger.Debug("fetching movie", "id", id, "generation", gen)
	detail, err := d.svc.FetchByID(d.opts.Context, id)

	d.mu.Lock()
	if d.closed || gen != d.generation {
		d.mu.Unlock()
		d.opts.Logger.Debug("discarding stale lookup", "id", id, "generation", gen)
		return
	}

	d.state.Loading = false
	if err != nil {
		d.opts.Logger.Warn("lookup failed", "id", id, "err", err)
		d.state.Detail = nil
		d.state.Error = shared.UserMessage(err)
	} else {
		d.state.Detail = detail
		d.state.Error = ""
	}

	d.hub.Publish(&d.mu, d.state.clone())
}
