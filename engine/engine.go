// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/transit-dashboard/models"
)

// Engine is one dashboard instance: it owns the record store, filter rules,
// view state and vote ledger of a single browsing session.
type Engine struct {
	mu sync.Mutex

	sources        Sources
	store          *RecordStore
	rules          *Registry
	state          ViewState
	votes          *VoteTracker
	pageSize       int
	acquireTimeout time.Duration

	status    string
	err       error
	acquiring bool
	done      chan struct{}
}

// View is a projected page together with the state the renderer needs for
// sort indicators, filter highlighting and the vote buttons.
type View struct {
	Page
	SortField  string
	Descending bool
	Query      string
	Filters    map[string]bool
	Voted      []int64
}

type Option func(*Engine)

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithDefaultSort(field string) Option {
	return func(e *Engine) {
		if _, ok := comparators[field]; ok {
			e.state.SortField = field
		}
	}
}

func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = NewRegistry(rules...)
	}
}

func WithAcquireTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.acquireTimeout = d
	}
}

func WithVoteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.votes.timeout = d
	}
}

func New(sources Sources, opts ...Option) *Engine {
	e := &Engine{
		sources:  sources,
		store:    NewRecordStore(),
		rules:    NewRegistry(DefaultRules()...),
		state:    DefaultViewState(),
		votes:    NewVoteTracker(sources.Sink, 10*time.Second),
		pageSize: PageSize,
		status:   models.StatusLoading,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load acquires and joins the data sources. It is a no-op once the engine is
// ready. After a failed load, calling Load again retries the acquisition.
func (e *Engine) Load(ctx context.Context) error {
	done, err := e.begin()
	if errors.Is(err, ErrAlreadyLoaded) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.run(ctx, done)
}

// Start is Load in the background. The engine reports loading as soon as
// Start returns.
func (e *Engine) Start(ctx context.Context) error {
	done, err := e.begin()
	if err != nil {
		return err
	}
	go e.run(ctx, done)
	return nil
}

// begin claims the acquisition slot and returns the channel run closes.
func (e *Engine) begin() (chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == models.StatusReady {
		return nil, ErrAlreadyLoaded
	}
	if e.acquiring {
		return nil, ErrLoadInProgress
	}
	if e.status == models.StatusFailed {
		e.status = models.StatusLoading
		e.err = nil
		e.done = make(chan struct{})
	}
	e.acquiring = true
	return e.done, nil
}

func (e *Engine) run(ctx context.Context, done chan struct{}) error {
	if e.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.acquireTimeout)
		defer cancel()
	}

	records, err := Acquire(ctx, e.sources.Agencies, e.sources.Votes)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer close(done)

	e.acquiring = false

	if err == nil {
		err = e.store.Publish(records)
	}
	if err != nil {
		e.status = models.StatusFailed
		e.err = err
		slog.Error("agency acquisition failed", "error", err)
		return fmt.Errorf("%w: %w", ErrAcquisitionFailed, err)
	}

	e.status = models.StatusReady
	slog.Info("agencies loaded", "count", humanize.Comma(int64(e.store.Len())))

	return nil
}

// Reload retries a failed acquisition.
func (e *Engine) Reload(ctx context.Context) error {
	done, err := e.begin()
	if err != nil {
		return err
	}
	return e.run(ctx, done)
}

// Done is closed when the current acquisition has settled, successfully or not.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Status returns the load status and, when failed, the acquisition error.
func (e *Engine) Status() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.err
}

// View re-projects the current state.
func (e *Engine) View() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return View{}, err
	}
	return e.project()
}

func (e *Engine) ToggleFilter(name string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return View{}, err
	}
	if err := e.rules.Toggle(name); err != nil {
		return View{}, err
	}
	return e.project()
}

func (e *Engine) SortBy(field string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return View{}, err
	}
	if err := e.state.Activate(field); err != nil {
		return View{}, err
	}
	return e.project()
}

func (e *Engine) GoToPage(index int) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return View{}, err
	}
	e.state.Page = index
	return e.project()
}

func (e *Engine) Search(query string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return View{}, err
	}
	e.state.Query = query
	return e.project()
}

// CastVote votes for an agency once per engine. counted is false when the
// session already voted for it. Eligibility is the caller's responsibility.
func (e *Engine) CastVote(id int64) (votes int, counted bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return 0, false, err
	}
	return e.votes.Cast(e.store, id)
}

// Record returns a copy of one joined agency.
func (e *Engine) Record(id int64) (models.Agency, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return models.Agency{}, err
	}
	rec, ok := e.store.Get(id)
	if !ok {
		return models.Agency{}, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return rec, nil
}

// Export returns every record passing the current filters in the current
// sort order, unpaginated.
func (e *Engine) Export() ([]models.Agency, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return nil, err
	}
	return Arrange(e.store.Records(), e.rules, e.state)
}

// Wait blocks until background vote requests have finished.
func (e *Engine) Wait() {
	e.votes.Wait()
}

func (e *Engine) ready() error {
	switch e.status {
	case models.StatusReady:
		return nil
	case models.StatusFailed:
		return fmt.Errorf("%w: %w", ErrAcquisitionFailed, e.err)
	default:
		return ErrNotReady
	}
}

// project runs the full pipeline. Caller holds e.mu.
func (e *Engine) project() (View, error) {
	page, err := Project(e.store.Records(), e.rules, e.state, e.pageSize)
	if err != nil {
		return View{}, err
	}
	e.state.Page = page.Index

	return View{
		Page:       page,
		SortField:  e.state.SortField,
		Descending: e.state.Descending,
		Query:      e.state.Query,
		Filters:    e.rules.States(),
		Voted:      e.votes.Voted(),
	}, nil
}
