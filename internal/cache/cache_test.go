package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache() *Cache {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestGetOrFetch_HitWithinTTLSkipsFetch(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	v, err := c.GetOrFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.GetOrFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "hit within TTL must not invoke fetch")
}

func TestGetOrFetch_SingleFlight(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	const waiters = 20
	var calls int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, waiters)
	errs := make([]error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(ctx, "shared", time.Minute, fetch)
		}(i)
	}

	// Let all goroutines pile up on the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one fetch per key")
	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
}

func TestGetOrFetch_FailureNotCached(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	boom := errors.New("upstream exploded")
	var calls int32

	_, err := c.GetOrFetch(ctx, "k", time.Minute, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failures must not be stored")

	// The key is immediately eligible for retry.
	v, err := c.GetOrFetch(ctx, "k", time.Minute, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrFetch_FailurePropagatesToAllWaiters(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	boom := errors.New("shared failure")
	release := make(chan struct{})
	var calls int32

	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil, boom
	}

	const waiters = 8
	var wg sync.WaitGroup
	errs := make([]error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrFetch(ctx, "k", time.Minute, fetch)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < waiters; i++ {
		assert.ErrorIs(t, errs[i], boom, "every waiter shares the flight's failure")
	}
}

func TestGetOrFetch_TTLExpiryTriggersRefetch(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, err := c.GetOrFetch(ctx, "k", 20*time.Millisecond, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(40 * time.Millisecond)

	v, err = c.GetOrFetch(ctx, "k", 20*time.Millisecond, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "expired entry must trigger exactly one new fetch")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrFetch_AbandonedCallerDoesNotCancelFlight(t *testing.T) {
	c := testCache()

	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context) (interface{}, error) {
		close(started)
		<-release
		return "late result", nil
	}

	callerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetch(callerCtx, "k", time.Minute, fetch)
		done <- err
	}()

	<-started
	cancel() // caller walks away
	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	// The flight keeps running and its result lands in the cache for the
	// next caller.
	close(release)
	v, err := c.GetOrFetch(context.Background(), "k", time.Minute, func(ctx context.Context) (interface{}, error) {
		t.Fatal("fetch should not run, flight result should be cached")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "late result", v)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	_, err := c.GetOrFetch(ctx, "short", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return 1, nil
	})
	require.NoError(t, err)
	_, err = c.GetOrFetch(ctx, "long", time.Hour, func(ctx context.Context) (interface{}, error) {
		return 2, nil
	})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestTypedGetOrFetch(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	type record struct{ Name string }

	got, err := GetOrFetch(ctx, c, "typed", time.Minute, func(ctx context.Context) (record, error) {
		return record{Name: "Norway"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Norway", got.Name)

	// Second read comes from the cache with the concrete type intact.
	got, err = GetOrFetch(ctx, c, "typed", time.Minute, func(ctx context.Context) (record, error) {
		t.Fatal("must not refetch")
		return record{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Norway", got.Name)
}

func TestInvalidate(t *testing.T) {
	c := testCache()
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	_, err := c.GetOrFetch(ctx, "k", time.Hour, fetch)
	require.NoError(t, err)

	c.Invalidate("k")

	_, err = c.GetOrFetch(ctx, "k", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
