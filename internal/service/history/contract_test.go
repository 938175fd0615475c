package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

func interaction(assistantID string, n int) chat.Interaction {
	return chat.Interaction{
		AssistantID: assistantID,
		Question:    fmt.Sprintf("q%d", n),
		Answer:      fmt.Sprintf("a%d", n),
		Timestamp:   time.Date(2025, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

// runStoreContract exercises behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("unknown session lists empty", func(t *testing.T) {
		store := newStore(t)
		items, err := store.List(ctx, "never-used")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("append keeps chronological order", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, "s1", interaction("programacao", i)))
		}
		items, err := store.List(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i, item := range items {
			assert.Equal(t, fmt.Sprintf("q%d", i), item.Question)
			assert.Equal(t, "programacao", item.AssistantID)
			assert.True(t, item.Timestamp.Equal(interaction("", i).Timestamp))
		}
	})

	t.Run("bound evicts oldest first", func(t *testing.T) {
		store := newStore(t)
		total := MaxInteractions + 7
		for i := 0; i < total; i++ {
			require.NoError(t, store.Append(ctx, "s1", interaction("culinaria", i)))
		}
		items, err := store.List(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, items, MaxInteractions)
		assert.Equal(t, "q7", items[0].Question)
		assert.Equal(t, fmt.Sprintf("q%d", total-1), items[len(items)-1].Question)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, "a", interaction("programacao", 1)))
		require.NoError(t, store.Append(ctx, "b", interaction("investimentos", 2)))

		items, err := store.List(ctx, "a")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "programacao", items[0].AssistantID)
	})

	t.Run("clear removes session and is idempotent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, "s1", interaction("programacao", 1)))
		require.NoError(t, store.Clear(ctx, "s1"))
		require.NoError(t, store.Clear(ctx, "s1"))
		require.NoError(t, store.Clear(ctx, "unknown"))

		items, err := store.List(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
