package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store, err := NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return newTestGormStore(t) })
}

func TestGormStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	old := interaction("programacao", 1)
	old.Timestamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := interaction("programacao", 2)
	fresh.Timestamp = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, "old", old))
	require.NoError(t, store.Append(ctx, "fresh", fresh))

	removed, err := store.Sweep(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items, err := store.List(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = store.List(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGormStoreSweepWithZonedCutoff(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	ahead := time.FixedZone("UTC+8", 8*60*60)
	behind := time.FixedZone("UTC-5", -5*60*60)
	now := time.Now()

	fresh := interaction("programacao", 1)
	fresh.Timestamp = now.UTC()
	local := interaction("programacao", 2)
	local.Timestamp = now.In(behind)
	stale := interaction("programacao", 3)
	stale.Timestamp = now.Add(-2 * time.Hour).In(ahead)

	require.NoError(t, store.Append(ctx, "fresh", fresh))
	require.NoError(t, store.Append(ctx, "local", local))
	require.NoError(t, store.Append(ctx, "stale", stale))

	removed, err := store.Sweep(ctx, now.Add(-time.Minute).In(ahead))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	for _, id := range []string{"fresh", "local"} {
		items, err := store.List(ctx, id)
		require.NoError(t, err)
		assert.Len(t, items, 1, id)
	}
	items, err := store.List(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, items)
}
