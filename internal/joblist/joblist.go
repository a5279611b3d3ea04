// Package joblist derives the sorted, paged view of a search result list.
package joblist

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/jonathan/jobsearch/internal/types"
)

// DefaultPageSize is the number of results shown per page.
const DefaultPageSize = 7

// SortItems returns a stably sorted copy of items. The input is not modified.
func SortItems(items []types.JobItem, sortBy types.SortBy) []types.JobItem {
	sorted := slices.Clone(items)
	if sortBy == types.SortRecent {
		slices.SortStableFunc(sorted, func(a, b types.JobItem) int {
			return cmp.Compare(a.DaysAgo, b.DaysAgo)
		})
	} else {
		slices.SortStableFunc(sorted, func(a, b types.JobItem) int {
			return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
		})
	}
	return sorted
}

// Paginate returns the 1-based page of items. Pages outside the list are empty.
func Paginate(items []types.JobItem, page, pageSize int) []types.JobItem {
	if pageSize <= 0 || page < 1 {
		return []types.JobItem{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []types.JobItem{}
	}
	end := min(start+pageSize, len(items))
	return slices.Clone(items[start:end])
}

// State holds the raw result list plus the user's sort and page choices.
// It is owned by one holder; readers use the accessor methods.
type State struct {
	mu       sync.RWMutex
	items    []types.JobItem
	loaded   bool
	sortBy   types.SortBy
	page     int
	pageSize int
}

// New creates an empty state. A non-positive pageSize uses DefaultPageSize.
func New(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{
		sortBy:   types.SortRelevant,
		page:     1,
		pageSize: pageSize,
	}
}

// SetItems replaces the raw list. nil means "not loaded yet".
func (s *State) SetItems(items []types.JobItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.loaded = items != nil
}

// Items returns the raw list and whether one has been loaded.
func (s *State) Items() ([]types.JobItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), s.loaded
}

// SetSortBy changes the sort order and always returns to page 1.
func (s *State) SetSortBy(sortBy types.SortBy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = 1
	s.sortBy = sortBy
}

// SortBy returns the current sort order.
func (s *State) SortBy() types.SortBy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy
}

// ChangePage moves one page in direction. The move is not clamped; callers
// consult HasNext and HasPrevious first.
func (s *State) ChangePage(direction types.PageDirection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch direction {
	case types.PageNext:
		s.page++
	case types.PagePrevious:
		s.page--
	}
}

// ResetPage returns to page 1, used when a new search replaces the list.
func (s *State) ResetPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = 1
}

// CurrentPage returns the 1-based page number.
func (s *State) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// PageSize returns the fixed page size.
func (s *State) PageSize() int {
	return s.pageSize
}

// TotalJobs returns the number of raw results.
func (s *State) TotalJobs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalPages is the raw quotient count/pageSize, so 7 results at 10 per page is 0.7.
func (s *State) TotalPages() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return float64(len(s.items)) / float64(s.pageSize)
}

// PageCount is TotalPages rounded up, for display.
func (s *State) PageCount() int {
	return int(math.Ceil(s.TotalPages()))
}

// HasNext reports whether the "next" control is shown: current page < TotalPages.
func (s *State) HasNext() bool {
	return float64(s.CurrentPage()) < s.TotalPages()
}

// HasPrevious reports whether the "previous" control is shown.
func (s *State) HasPrevious() bool {
	return s.CurrentPage() > 1
}

// Sorted returns the whole list in the current sort order.
func (s *State) Sorted() []types.JobItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SortItems(s.items, s.sortBy)
}

// Page returns the current page of the sorted list.
func (s *State) Page() []types.JobItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Paginate(SortItems(s.items, s.sortBy), s.page, s.pageSize)
}

// Snapshot is a consistent read of the whole derived state.
type Snapshot struct {
	Items       []types.JobItem
	Loaded      bool
	SortBy      types.SortBy
	CurrentPage int
	PageSize    int
	TotalJobs   int
	TotalPages  float64
	HasNext     bool
	HasPrevious bool
}

// Snapshot returns the current page and navigation flags under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := float64(len(s.items)) / float64(s.pageSize)
	return Snapshot{
		Items:       Paginate(SortItems(s.items, s.sortBy), s.page, s.pageSize),
		Loaded:      s.loaded,
		SortBy:      s.sortBy,
		CurrentPage: s.page,
		PageSize:    s.pageSize,
		TotalJobs:   len(s.items),
		TotalPages:  total,
		HasNext:     float64(s.page) < total,
		HasPrevious: s.page > 1,
	}
}
