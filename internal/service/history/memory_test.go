package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Append(ctx, "s1", interaction("programacao", 1)))

	items, err := store.List(ctx, "s1")
	require.NoError(t, err)
	items[0].Answer = "mutated"

	again, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a1", again[0].Answer)
}

func TestMemoryStoreConcurrentAppendsKeepBound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Append(ctx, "shared", interaction("programacao", n%60))
		}(i)
	}
	wg.Wait()

	items, err := store.List(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, items, MaxInteractions)
}

func TestMemoryStoreSweepDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Append(ctx, "old", interaction("programacao", 1)))

	store.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, store.Append(ctx, "fresh", interaction("programacao", 2)))

	removed, err := store.Sweep(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	items, err := store.List(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, NewMemoryStore(), time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestRunJanitorSweeps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	store.now = func() time.Time { return time.Now().Add(-time.Hour) }
	require.NoError(t, store.Append(ctx, "stale", interaction("programacao", 1)))

	go RunJanitor(ctx, store, 2*time.Second)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}
