// Package app wires the job-search state holders together and runs the event loop
// that connects search input, navigation, and the query caches.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/jonathan/jobsearch/internal/activeid"
	"github.com/jonathan/jobsearch/internal/bookmarks"
	"github.com/jonathan/jobsearch/internal/debounce"
	"github.com/jonathan/jobsearch/internal/joblist"
	"github.com/jonathan/jobsearch/internal/kvstore"
	"github.com/jonathan/jobsearch/internal/notify"
	"github.com/jonathan/jobsearch/internal/query"
	"github.com/jonathan/jobsearch/internal/types"
)

// DefaultPruneSchedule is the cron spec for dropping expired cache entries while Run is active.
const DefaultPruneSchedule = "@every 1m"

// JobAPI is the remote API; jobapi.Client satisfies it.
type JobAPI interface {
	FetchOne(ctx context.Context, id int) (*types.JobItemResponse, error)
	FetchMany(ctx context.Context, searchText string) (*types.JobItemsResponse, error)
}

// Options lists the dependencies and tunables of an App.
type Options struct {
	API     JobAPI          `validate:"required"`
	Store   kvstore.Store   `validate:"required"`
	Toaster *notify.Toaster `validate:"required"`

	StaleTime     time.Duration `validate:"gte=0"`
	GCTime        time.Duration `validate:"gte=0"`
	DebounceDelay time.Duration `validate:"gte=0"`
	PageSize      int           `validate:"gte=0"`
	PruneSchedule string
	Verbose       bool
}

// EventKind says what changed.
type EventKind string

// Event kinds emitted on Updates.
const (
	EventResults    EventKind = "results"
	EventActiveItem EventKind = "active-item"
	EventBookmarks  EventKind = "bookmarks"
)

// Event tells the presentation layer to re-read state.
type Event struct {
	Kind EventKind
}

// App owns every piece of shared state. Each holder is mutated only through App
// or the holder's own methods.
type App struct {
	api     JobAPI
	toaster *notify.Toaster
	handler *notify.Handler

	items *query.Cache[*types.JobItemResponse]
	lists *query.Cache[*types.JobItemsResponse]

	search    *debounce.Debouncer[string]
	jobs      *joblist.State
	bookmarks *bookmarks.Set
	active    *activeid.Tracker
	changes   <-chan activeid.Change

	mu      sync.Mutex
	settled string

	updates       chan Event
	pruneSchedule string
	verbose       bool
}

// New validates opts, loads bookmarks from the store, and builds the App.
func New(ctx context.Context, opts Options) (*App, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, &WiringError{Holder: "app.Options", Cause: err}
	}

	set, err := bookmarks.Load(ctx, opts.Store)
	if err != nil {
		return nil, err
	}

	handler := notify.NewHandler(opts.Toaster, opts.Verbose)
	onError := func(key query.Key, err error) {
		if opts.Verbose {
			log.Printf("[app] query %s failed", key)
		}
		handler.HandleError(err)
	}
	cacheOpts := &query.Options{
		StaleTime: opts.StaleTime,
		GCTime:    opts.GCTime,
		OnError:   onError,
		Verbose:   opts.Verbose,
	}

	schedule := opts.PruneSchedule
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}

	tracker := activeid.New()

	return &App{
		api:           opts.API,
		toaster:       opts.Toaster,
		handler:       handler,
		items:         query.New[*types.JobItemResponse](cacheOpts),
		lists:         query.New[*types.JobItemsResponse](cacheOpts),
		search:        debounce.New(opts.DebounceDelay, ""),
		jobs:          joblist.New(opts.PageSize),
		bookmarks:     set,
		active:        tracker,
		changes:       tracker.Subscribe(),
		updates:       make(chan Event, 16),
		pruneSchedule: schedule,
		verbose:       opts.Verbose,
	}, nil
}

// mustBeWired panics when a holder is reached through an App not built by New.
func (a *App) mustBeWired(holder string) {
	if a == nil || a.jobs == nil {
		panic(&WiringError{Holder: holder})
	}
}

// Jobs returns the derived job-list state.
func (a *App) Jobs() *joblist.State {
	a.mustBeWired("Jobs")
	return a.jobs
}

// Bookmarks returns the bookmark set.
func (a *App) Bookmarks() *bookmarks.Set {
	a.mustBeWired("Bookmarks")
	return a.bookmarks
}

// Active returns the active-item tracker.
func (a *App) Active() *activeid.Tracker {
	a.mustBeWired("Active")
	return a.active
}

// Toaster returns the notification holder.
func (a *App) Toaster() *notify.Toaster {
	a.mustBeWired("Toaster")
	return a.toaster
}

// Updates delivers a notice whenever Run changes state.
func (a *App) Updates() <-chan Event {
	a.mustBeWired("Updates")
	return a.updates
}

// Type records a keystroke-level change of the search box. The search runs
// once the text has settled, from Run.
func (a *App) Type(text string) {
	a.mustBeWired("Type")
	a.search.Set(text)
}

// SearchText returns the raw and settled search text.
func (a *App) SearchText() (raw, settled string) {
	a.mustBeWired("SearchText")
	return a.search.Raw(), a.search.Settled()
}

// SearchResult is the outcome of one settled search.
type SearchResult struct {
	Text  string
	State query.State[*types.JobItemsResponse]
}

// Items returns the fetched items, nil when none are available.
func (r SearchResult) Items() []types.JobItem {
	if !r.State.HasData || r.State.Data == nil {
		return nil
	}
	return r.State.Data.JobItems
}

// Search runs the search for text now and feeds the result into the job list.
// Empty text issues no request and clears the list.
func (a *App) Search(ctx context.Context, text string) SearchResult {
	a.mustBeWired("Search")

	a.mu.Lock()
	changed := a.settled != text
	a.settled = text
	a.mu.Unlock()
	if changed {
		a.jobs.ResetPage()
	}

	key := query.JobItemsKey(text)
	st := a.lists.Query(ctx, key, func(ctx context.Context) (*types.JobItemsResponse, error) {
		return a.api.FetchMany(ctx, text)
	}, text != "")
	result := SearchResult{Text: text, State: st}

	// A response for text the user has already moved past only fills the cache.
	a.mu.Lock()
	current := a.settled == text
	a.mu.Unlock()
	if current {
		a.jobs.SetItems(result.Items())
	}
	return result
}

// SetSortBy changes the sort order, returning to page 1.
func (a *App) SetSortBy(sortBy types.SortBy) {
	a.mustBeWired("SetSortBy")
	a.jobs.SetSortBy(sortBy)
}

// ChangePage moves one page if the matching control is shown and reports whether it moved.
func (a *App) ChangePage(direction types.PageDirection) bool {
	a.mustBeWired("ChangePage")
	switch direction {
	case types.PageNext:
		if !a.jobs.HasNext() {
			return false
		}
	case types.PagePrevious:
		if !a.jobs.HasPrevious() {
			return false
		}
	default:
		return false
	}
	a.jobs.ChangePage(direction)
	return true
}

// Navigate handles a fragment change such as "#123".
func (a *App) Navigate(fragment string) {
	a.mustBeWired("Navigate")
	a.active.Navigate(fragment)
}

// ItemResult is the detail-panel state for the active job.
type ItemResult struct {
	ID       int
	Selected bool
	State    query.State[*types.JobItemResponse]
}

// Item returns the job, or nil when it is not loaded.
func (r ItemResult) Item() *types.JobItem {
	if !r.State.HasData || r.State.Data == nil {
		return nil
	}
	item := r.State.Data.JobItem
	return &item
}

// ActiveItem loads the job selected by the current fragment. With no selection
// no request is made.
func (a *App) ActiveItem(ctx context.Context) ItemResult {
	a.mustBeWired("ActiveItem")
	id, ok := a.active.Current()
	st := a.items.Query(ctx, query.JobItemKey(id), bookmarks.ItemFetch(a.api, id), ok)
	return ItemResult{ID: id, Selected: ok, State: st}
}

// ToggleBookmark flips id in the bookmark set. Storage failures are shown as a toast and returned.
func (a *App) ToggleBookmark(ctx context.Context, id int) (bool, error) {
	a.mustBeWired("ToggleBookmark")
	on, err := a.bookmarks.Toggle(ctx, id)
	if err != nil {
		a.handler.HandleError(err)
		return on, err
	}
	a.emit(EventBookmarks)
	return on, nil
}

// BookmarkedItems loads every bookmarked job; failed lookups are left out.
func (a *App) BookmarkedItems(ctx context.Context) bookmarks.Materialized {
	a.mustBeWired("BookmarkedItems")
	return a.bookmarks.Materialize(ctx, a.items, a.api)
}

// Snapshot is everything the presentation layer renders.
type Snapshot struct {
	RawText     string
	SettledText string
	Jobs        joblist.Snapshot
	ActiveID    int
	HasActive   bool
	Bookmarks   []int
	Toasts      []notify.Toast
}

// Snapshot reads the current state of every holder.
func (a *App) Snapshot() Snapshot {
	a.mustBeWired("Snapshot")
	id, ok := a.active.Current()
	return Snapshot{
		RawText:     a.search.Raw(),
		SettledText: a.search.Settled(),
		Jobs:        a.jobs.Snapshot(),
		ActiveID:    id,
		HasActive:   ok,
		Bookmarks:   a.bookmarks.IDs(),
		Toasts:      a.toaster.Active(),
	}
}

// Run reacts to settled search text and navigation until ctx is done. Each
// reaction fetches in its own goroutine so the loop never waits on the network.
func (a *App) Run(ctx context.Context) error {
	a.mustBeWired("Run")

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(a.pruneSchedule, a.prune); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", a.pruneSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			a.search.Stop()
			return nil
		case text := <-a.search.C():
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.Search(ctx, text)
				a.emit(EventResults)
			}()
		case <-a.changes:
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.ActiveItem(ctx)
				a.emit(EventActiveItem)
			}()
		}
	}
}

func (a *App) prune() {
	removed := a.items.Prune() + a.lists.Prune()
	if a.verbose && removed > 0 {
		log.Printf("[app] pruned %d cache entries", removed)
	}
}

// emit never blocks; a full channel means a re-render is already pending.
func (a *App) emit(kind EventKind) {
	select {
	case a.updates <- Event{Kind: kind}:
	default:
	}
}
