package collectioncache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls atomic.Int32
	value []string
	err   error
	gate  chan struct{}
}

func (f *countingFetcher) fetch(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.value, nil
}

func TestGetFetchesOnce(t *testing.T) {
	cache := New[[]string]()
	fetcher := &countingFetcher{value: []string{"a"}}

	first := cache.Get(context.Background(), "/user/users", fetcher.fetch)
	require.True(t, first.OK())
	assert.False(t, first.Cached)
	assert.Equal(t, []string{"a"}, first.Data)

	second := cache.Get(context.Background(), "/user/users", fetcher.fetch)
	assert.True(t, second.Cached)
	assert.Equal(t, []string{"a"}, second.Data)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestGetSharesInFlightFetch(t *testing.T) {
	cache := New[[]string]()
	fetcher := &countingFetcher{value: []string{"x"}, gate: make(chan struct{})}

	const readers = 8
	var started sync.WaitGroup
	var done sync.WaitGroup
	results := make([]Entry[[]string], readers)
	for i := range readers {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			results[i] = cache.Get(context.Background(), "/booking/bookings", fetcher.fetch)
		}()
	}
	started.Wait()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(fetcher.gate)
	done.Wait()

	assert.EqualValues(t, 1, fetcher.calls.Load())
	for _, result := range results {
		assert.Equal(t, []string{"x"}, result.Data)
	}
}

func TestGetFailureIsNotCached(t *testing.T) {
	cache := New[[]string]()
	failing := &countingFetcher{err: errors.New("boom")}

	entry := cache.Get(context.Background(), "k", failing.fetch)
	assert.False(t, entry.OK())
	assert.Nil(t, entry.Data)
	assert.EqualError(t, entry.Err, "boom")

	ok := &countingFetcher{value: []string{"ok"}}
	entry = cache.Get(context.Background(), "k", ok.fetch)
	require.True(t, entry.OK())
	assert.Equal(t, []string{"ok"}, entry.Data)
}

func TestInvalidateWithReplacementSkipsFetch(t *testing.T) {
	cache := New[[]string]()
	fetcher := &countingFetcher{value: []string{"a", "b"}}
	cache.Get(context.Background(), "k", fetcher.fetch)

	cache.Invalidate(context.Background(), "k", []string{"b", "a"})
	cache.Wait()

	entry := cache.Get(context.Background(), "k", fetcher.fetch)
	assert.True(t, entry.Cached)
	assert.Equal(t, []string{"b", "a"}, entry.Data)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestInvalidateWithoutReplacementRefetches(t *testing.T) {
	cache := New[[]string]()
	fetcher := &countingFetcher{value: []string{"old"}}
	cache.Get(context.Background(), "k", fetcher.fetch)

	fetcher.value = []string{"new"}
	cache.Invalidate(context.Background(), "k")
	cache.Wait()

	assert.EqualValues(t, 2, fetcher.calls.Load())
	entry := cache.Get(context.Background(), "k", fetcher.fetch)
	assert.True(t, entry.Cached)
	assert.Equal(t, []string{"new"}, entry.Data)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestInvalidateUnknownKeyIsNoop(t *testing.T) {
	cache := New[[]string]()
	cache.Invalidate(context.Background(), "never-fetched")
	cache.Wait()
}

func TestTTLExpiresEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := New[[]string](WithTTL(time.Minute), WithClock(func() time.Time { return now }))
	fetcher := &countingFetcher{value: []string{"a"}}

	cache.Get(context.Background(), "k", fetcher.fetch)
	now = now.Add(30 * time.Second)
	assert.True(t, cache.Get(context.Background(), "k", fetcher.fetch).Cached)

	now = now.Add(31 * time.Second)
	entry := cache.Get(context.Background(), "k", fetcher.fetch)
	assert.False(t, entry.Cached)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestInvalidatePrefix(t *testing.T) {
	cache := New[[]string]()
	fetcher := &countingFetcher{value: []string{"a"}}
	cache.Get(context.Background(), "/booking/userUpcomingBookings?date=1", fetcher.fetch)
	cache.Get(context.Background(), "/booking/userUpcomingBookings?date=2", fetcher.fetch)
	cache.Get(context.Background(), "/user/users", fetcher.fetch)

	cache.InvalidatePrefix("/booking/userUpcomingBookings")

	assert.False(t, cache.Get(context.Background(), "/booking/userUpcomingBookings?date=1", fetcher.fetch).Cached)
	assert.True(t, cache.Get(context.Background(), "/user/users", fetcher.fetch).Cached)
}
