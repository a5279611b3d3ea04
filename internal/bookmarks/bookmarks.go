// Package bookmarks keeps the user's set of bookmarked job ids in durable storage.
package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/jonathan/jobsearch/internal/kvstore"
	"github.com/jonathan/jobsearch/internal/query"
	"github.com/jonathan/jobsearch/internal/schemas"
	"github.com/jonathan/jobsearch/internal/types"
)

// StorageKey is the key the id list is persisted under.
const StorageKey = "bookmarkedIds"

// Set is the ordered, duplicate-free list of bookmarked ids.
// Every mutation is written through to the store before it returns.
type Set struct {
	mu    sync.RWMutex
	store kvstore.Store
	ids   []int
}

// Load reads the persisted ids. A missing key yields an empty set.
// Duplicates in a hand-edited store are dropped, keeping first occurrences.
func Load(ctx context.Context, store kvstore.Store) (*Set, error) {
	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	s := &Set{store: store, ids: []int{}}
	if !ok {
		return s, nil
	}

	if err := schemas.Validate(schemas.BookmarkIDs, raw); err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks: %w", err)
	}

	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
	return s, nil
}

// Toggle removes id if present, otherwise appends it, then persists.
// It returns whether id is bookmarked afterwards. On a storage failure the
// in-memory set is left unchanged.
func (s *Set) Toggle(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.ids)
	bookmarked := false
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, id)
		bookmarked = true
	}

	if err := s.persist(ctx, next); err != nil {
		return !bookmarked, err
	}
	s.ids = next
	return bookmarked, nil
}

func (s *Set) persist(ctx context.Context, ids []int) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode bookmarks: %w", err)
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}

// Contains reports whether id is bookmarked.
func (s *Set) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// IDs returns the bookmarked ids in insertion order.
func (s *Set) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Len returns the number of bookmarks.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// ItemFetcher loads one job item; jobapi.Client satisfies it.
type ItemFetcher interface {
	FetchOne(ctx context.Context, id int) (*types.JobItemResponse, error)
}

// Materialized is the list of bookmarked jobs that could be loaded.
type Materialized struct {
	Items     []types.JobItem
	IsLoading bool
}

// Materialize loads every bookmarked job in parallel through the item cache.
// Ids whose lookup fails are left out rather than reported.
func (s *Set) Materialize(ctx context.Context, cache *query.Cache[*types.JobItemResponse], fetcher ItemFetcher) Materialized {
	ids := s.IDs()
	batch := cache.QueryAll(ctx, keysFor(ids), fetchFor(fetcher), enabledID)
	return materialized(ids, batch)
}

// Observe starts loading bookmarked jobs in the background and returns what is cached so far.
func (s *Set) Observe(cache *query.Cache[*types.JobItemResponse], fetcher ItemFetcher) Materialized {
	ids := s.IDs()
	batch := cache.PrefetchAll(keysFor(ids), fetchFor(fetcher), enabledID)
	return materialized(ids, batch)
}

func keysFor(ids []int) []query.Key {
	keys := make([]query.Key, len(ids))
	for i, id := range ids {
		keys[i] = query.JobItemKey(id)
	}
	return keys
}

// ItemFetch adapts fetcher into the cache's fetch function for one id.
func ItemFetch(fetcher ItemFetcher, id int) query.FetchFunc[*types.JobItemResponse] {
	return func(ctx context.Context) (*types.JobItemResponse, error) {
		return fetcher.FetchOne(ctx, id)
	}
}

func fetchFor(fetcher ItemFetcher) func(query.Key) query.FetchFunc[*types.JobItemResponse] {
	return func(k query.Key) query.FetchFunc[*types.JobItemResponse] {
		id, _ := parseID(k)
		return ItemFetch(fetcher, id)
	}
}

func enabledID(k query.Key) bool {
	id, ok := parseID(k)
	return ok && id != 0
}

func parseID(k query.Key) (int, bool) {
	id, err := strconv.Atoi(k.Param)
	if err != nil {
		return 0, false
	}
	return id, true
}

// materialized keeps, in bookmark order, the items whose id matches the bookmark they were fetched for.
func materialized(ids []int, batch query.Batch[*types.JobItemResponse]) Materialized {
	m := Materialized{Items: make([]types.JobItem, 0, len(batch.Data)), IsLoading: batch.IsLoading}
	for i, st := range batch.States {
		if !st.HasData || st.Data == nil || st.Data.JobItem.ID != ids[i] {
			continue
		}
		m.Items = append(m.Items, st.Data.JobItem)
	}
	return m
}
