package search

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
)

// DefaultDebounce is the quiet period used when Options.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a [Controller] or [DetailLoader].
type Options struct {
	// Context is passed to every fetch. Defaults to [context.Background].
	Context      context.Context
	Debounce     time.Duration
	InitialQuery string
	Logger       *log.Logger
	Schedule     Scheduler
}

func (o Options) withDefaults() Options {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Schedule == nil {
		o.Schedule = afterFunc
	}
	return o
}

// Controller owns the search query, its debounce timer and the fetch race guard.
type Controller struct {
	mu         sync.Mutex
	svc        services.MovieService
	opts       Options
	state      State
	generation uint64
	timer      Timer
	timerSeq   uint64
	closed     bool
	inflight   sync.WaitGroup
	hub        shared.Hub[State]
}

// NewController creates a [Controller] and commits opts.InitialQuery right away.
func NewController(svc services.MovieService, opts Options) *Controller {
	c := &Controller{svc: svc, opts: opts.withDefaults()}

	c.mu.Lock()
	c.state.RawQuery = c.opts.InitialQuery
	if !c.commitLocked() {
		c.mu.Unlock()
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn for every published state and returns a func that removes it.
func (c *Controller) Subscribe(fn func(State)) func() {
	return c.hub.Subscribe(fn)
}

// SetQuery records a keystroke and restarts the quiet period.
func (c *Controller) SetQuery(raw string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.state.RawQuery = raw
	c.stopTimerLocked()
	c.timerSeq++
	seq := c.timerSeq
	c.timer = c.opts.Schedule(c.opts.Debounce, func() { c.fire(seq) })

	c.hub.Publish(&c.mu, c.state.clone())
}

// Commit commits the raw query immediately, skipping the quiet period.
func (c *Controller) Commit() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.stopTimerLocked()
	if !c.commitLocked() {
		c.mu.Unlock()
	}
}

// Retry runs the committed query again, e.g. after a network error.
func (c *Controller) Retry() {
	c.mu.Lock()
	if c.closed || c.state.CommittedQuery == "" {
		c.mu.Unlock()
		return
	}

	c.startLocked(c.state.CommittedQuery)
}

// Close stops the timer and discards the outcome of any fetch still in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.closed = true
	c.generation++
}

// Wait blocks until every fetch started so far has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}

	c.timer = nil
	if !c.commitLocked() {
		c.mu.Unlock()
	}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
}

// commitLocked commits the raw query when it differs from the committed one.
// It returns true when it published, which releases c.mu.
func (c *Controller) commitLocked() bool {
	query := strings.TrimSpace(c.state.RawQuery)
	if query == c.state.CommittedQuery {
		return false
	}

	c.state.CommittedQuery = query
	if query == "" {
		c.generation++
		c.state.Results = nil
		c.state.Error = ""
		c.state.Loading = false
		c.hub.Publish(&c.mu, c.state.clone())
		return true
	}

	c.startLocked(query)
	return true
}

// startLocked begins a fetch cycle for query and releases c.mu.
func (c *Controller) startLocked(query string) {
	c.generation++
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""

	c.inflight.Add(1)
	c.hub.Publish(&c.mu, c.state.clone())
	go c.fetch(gen, query)
}

func (c *Controller) fetch(gen uint64, query string) {
	defer c.inflight.Done()

	c.opts.Logger.Debug("searching", "query", query, "generation", gen)
	results, err := c.svc.SearchByTitle(c.opts.Context, query)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.opts.Logger.Debug("discarding stale search", "query", query, "generation", gen)
		return
	}

	c.state.Loading = false
	if err != nil {
		c.opts.Logger.Warn("search failed", "query", query, "err", err)
		c.state.Results = nil
		c.state.Error = shared.UserMessage(err)
	} else {
		if results == nil {
			results = []models.MovieSummary{}
		}
		c.state.Results = results
		c.state.Error = ""
	}

	c.hub.Publish(&c.mu, c.state.clone())
}
