package broute_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheSingleComputation(t *testing.T) {
	var cache broute.PageCache
	var calls atomic.Int64

	compute := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "page", nil
	}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := cache.Get(t.Context(), "404.html", compute)
			assert.NoError(t, err)
			assert.Equal(t, "page", page)
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 1, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
}

func TestPageCacheFailuresNotCached(t *testing.T) {
	cache := broute.NewPageCache()

	_, err := cache.Get(t.Context(), "500.html", func(context.Context) (string, error) {
		return "", errors.New("unavailable")
	})
	require.ErrorContains(t, err, "unavailable")
	assert.Equal(t, 0, cache.Len())

	page, err := cache.Get(t.Context(), "500.html", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", page)
}

func TestPageCacheContextCanceled(t *testing.T) {
	cache := broute.NewPageCache()
	unblock := make(chan struct{})
	defer close(unblock)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := cache.Get(ctx, "slow", func(context.Context) (string, error) {
		<-unblock
		return "late", nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPageCacheWaiterSurvivesCanceledStarter(t *testing.T) {
	cache := broute.NewPageCache()
	started := make(chan struct{})
	unblock := make(chan struct{})

	compute := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-unblock:
			return "page", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	first, cancel := context.WithCancel(t.Context())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(first, "404.html", compute)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		page, err := cache.Get(t.Context(), "404.html", compute)
		assert.NoError(t, err)
		second <- page
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(unblock)
	assert.Equal(t, "page", <-second)
	assert.Equal(t, 1, cache.Len())
}
