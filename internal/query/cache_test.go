package query

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func counting(calls *atomic.Int32, value string) FetchFunc[string] {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestQuery_FreshEntryIsNotRefetched(t *testing.T) {
	clock := newFakeClock()
	c := New[string](&Options{Now: clock.Now})
	var calls atomic.Int32
	key := JobItemsKey("go")

	st := c.Query(context.Background(), key, counting(&calls, "first"), true)
	require.True(t, st.HasData)
	assert.Equal(t, "first", st.Data)
	assert.False(t, st.IsLoading)

	clock.Advance(59 * time.Minute)
	st = c.Query(context.Background(), key, counting(&calls, "second"), true)
	assert.Equal(t, "first", st.Data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuery_StaleEntryIsRefetched(t *testing.T) {
	clock := newFakeClock()
	c := New[string](&Options{Now: clock.Now})
	var calls atomic.Int32
	key := JobItemKey(1)

	c.Query(context.Background(), key, counting(&calls, "v1"), true)
	clock.Advance(DefaultStaleTime)

	st := c.Query(context.Background(), key, counting(&calls, "v2"), true)
	assert.Equal(t, "v2", st.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := New[string](nil)
	var calls atomic.Int32
	release := make(chan struct{})
	key := JobItemKey(7)

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]State[string], 5)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Query(context.Background(), key, fetch, true)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), c.Fetches())
	for _, st := range results {
		assert.Equal(t, "shared", st.Data)
	}
}

func TestQuery_DisabledNeverFetches(t *testing.T) {
	c := New[string](nil)
	var calls atomic.Int32

	st := c.Query(context.Background(), JobItemsKey(""), counting(&calls, "x"), false)
	assert.False(t, st.HasData)
	assert.False(t, st.IsLoading)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestQuery_ErrorInvokesHandlerOnce(t *testing.T) {
	var handled []error
	var mu sync.Mutex
	c := New[string](&Options{OnError: func(_ Key, err error) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, err)
	}})
	boom := errors.New("Not found")

	st := c.Query(context.Background(), JobItemKey(404), func(context.Context) (string, error) {
		return "", boom
	}, true)

	assert.True(t, st.IsError)
	assert.False(t, st.HasData)
	assert.Equal(t, "Not found", st.Err.Error())
	require.Len(t, handled, 1)
	assert.ErrorIs(t, handled[0], boom)
}

func TestQuery_PanickingFetchDoesNotCrash(t *testing.T) {
	c := New[string](nil)

	st := c.Query(context.Background(), JobItemKey(1), func(context.Context) (string, error) {
		panic("kaboom")
	}, true)

	require.True(t, st.IsError)
	assert.Contains(t, st.Err.Error(), "kaboom")
}

func TestQuery_ErrorKeepsPreviousData(t *testing.T) {
	c := New[string](nil)
	key := JobItemKey(3)

	c.Query(context.Background(), key, func(context.Context) (string, error) { return "old", nil }, true)
	c.Invalidate(key)

	st := c.Query(context.Background(), key, func(context.Context) (string, error) {
		return "", errors.New("offline")
	}, true)
	assert.True(t, st.IsError)
	assert.True(t, st.HasData)
	assert.Equal(t, "old", st.Data)
}

func TestQuery_KeysAreIndependent(t *testing.T) {
	c := New[string](nil)
	var calls atomic.Int32

	c.Query(context.Background(), JobItemKey(1), counting(&calls, "one"), true)
	c.Query(context.Background(), JobItemKey(2), counting(&calls, "two"), true)
	c.Invalidate(JobItemKey(2))

	assert.Equal(t, "one", c.Peek(JobItemKey(1)).Data)
	c.Query(context.Background(), JobItemKey(1), counting(&calls, "again"), true)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryAll_FiltersFailedEntries(t *testing.T) {
	c := New[string](&Options{OnError: func(Key, error) {}})
	keys := []Key{JobItemKey(1), JobItemKey(2), JobItemKey(3)}

	fetchFor := func(k Key) FetchFunc[string] {
		return func(context.Context) (string, error) {
			if k.Param == "2" {
				return "", errors.New("gone")
			}
			return "job-" + k.Param, nil
		}
	}

	batch := c.QueryAll(context.Background(), keys, fetchFor, nil)
	assert.False(t, batch.IsLoading)
	assert.Equal(t, []string{"job-1", "job-3"}, batch.Data)
	require.Len(t, batch.States, 3)
	assert.True(t, batch.States[1].IsError)
}

func TestQueryAll_RunsInParallel(t *testing.T) {
	c := New[string](nil)
	var inFlight, peak atomic.Int32

	fetchFor := func(k Key) FetchFunc[string] {
		return func(context.Context) (string, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			inFlight.Add(-1)
			return k.Param, nil
		}
	}

	keys := make([]Key, 4)
	for i := range keys {
		keys[i] = JobItemKey(i + 1)
	}
	batch := c.QueryAll(context.Background(), keys, fetchFor, nil)

	assert.Len(t, batch.Data, 4)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestPrefetchAll_ReportsLoadingUntilDone(t *testing.T) {
	c := New[string](nil)
	release := make(chan struct{})
	keys := []Key{JobItemKey(10), JobItemKey(11)}

	fetchFor := func(k Key) FetchFunc[string] {
		return func(context.Context) (string, error) {
			<-release
			return k.Param, nil
		}
	}

	batch := c.PrefetchAll(keys, fetchFor, nil)
	assert.True(t, batch.IsLoading)
	assert.Empty(t, batch.Data)

	close(release)
	require.Eventually(t, func() bool {
		b := c.PeekAll(keys)
		return !b.IsLoading && len(b.Data) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestQuery_EnabledFilter(t *testing.T) {
	c := New[string](nil)
	var calls atomic.Int32
	keys := []Key{JobItemKey(0), JobItemKey(5)}

	batch := c.QueryAll(context.Background(), keys, func(k Key) FetchFunc[string] {
		return counting(&calls, k.Param)
	}, func(k Key) bool {
		id, _ := strconv.Atoi(k.Param)
		return id != 0
	})

	assert.Equal(t, []string{"5"}, batch.Data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPrune_DropsOnlyStaleUnobservedEntries(t *testing.T) {
	clock := newFakeClock()
	c := New[string](&Options{Now: clock.Now, StaleTime: time.Minute, GCTime: time.Minute})
	var calls atomic.Int32

	c.Query(context.Background(), JobItemKey(1), counting(&calls, "a"), true)
	clock.Advance(30 * time.Second)
	c.Query(context.Background(), JobItemKey(2), counting(&calls, "b"), true)

	// key 1 stale and idle for 2m; key 2 stale but looked at 90s ago
	clock.Advance(90 * time.Second)
	c.Peek(JobItemKey(2))
	clock.Advance(30 * time.Second)

	removed := c.Prune()
	assert.Equal(t, 1, removed)
	assert.False(t, c.Peek(JobItemKey(1)).HasData)
	assert.True(t, c.Peek(JobItemKey(2)).HasData)
}

func TestQuery_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	c := New[string](nil)
	release := make(chan struct{})
	key := JobItemsKey("slow")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State[string])
	go func() {
		done <- c.Query(ctx, key, func(fctx context.Context) (string, error) {
			<-release
			return "late", fctx.Err()
		}, true)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	st := <-done
	assert.ErrorIs(t, st.Err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return c.Peek(key).HasData
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "late", c.Peek(key).Data)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "job-item:42", JobItemKey(42).String())
	assert.Equal(t, "job-items:react", JobItemsKey("react").String())
}
