package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mockNamespace = "assistentes.interactions"

func newMockMongoStore(mt *mtest.T) *MongoStore {
	mt.AddMockResponses(mtest.CreateSuccessResponse())
	store, err := NewMongoStore(context.Background(), mt.Client, "assistentes")
	require.NoError(mt, err)
	mt.ClearEvents()
	return store
}

func countResponse(n int32) bson.D {
	return mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func startedCommands(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoStoreAppendWithinBound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert only", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			countResponse(MaxInteractions),
		)

		require.NoError(mt, store.Append(context.Background(), "s1", interaction("programacao", 1)))
		assert.Equal(mt, []string{"insert", "aggregate"}, startedCommands(mt))
	})
}

func TestMongoStoreAppendTrimsOldest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("trim", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		oldest := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			countResponse(MaxInteractions+1),
			mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{{Key: "_id", Value: oldest}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, store.Append(context.Background(), "s1", interaction("programacao", 51)))

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 4)
		assert.Equal(mt, "find", events[2].CommandName)
		assert.Equal(mt, int64(1), events[2].Command.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(1), events[2].Command.Lookup("sort", "_id").AsInt64())

		assert.Equal(mt, "delete", events[3].CommandName)
		ids, err := events[3].Command.Lookup("deletes", "0", "q", "_id", "$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, ids, 1)
		assert.Equal(mt, oldest, ids[0].ObjectID())
	})
}

func TestMongoStoreListAndClear(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		zone := time.FixedZone("UTC-3", -3*60*60)
		at := time.Date(2025, 1, 1, 9, 0, 0, 0, zone)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "session_id", Value: "s1"},
				{Key: "tipo", Value: "culinaria"},
				{Key: "pergunta", Value: "q1"},
				{Key: "resposta", Value: "a1"},
				{Key: "created_at", Value: at},
			},
		))

		items, err := store.List(context.Background(), "s1")
		require.NoError(mt, err)
		require.Len(mt, items, 1)
		assert.Equal(mt, "culinaria", items[0].AssistantID)
		assert.Equal(mt, "q1", items[0].Question)
		assert.Equal(mt, "a1", items[0].Answer)
		assert.True(mt, items[0].Timestamp.Equal(at))
		assert.Equal(mt, time.UTC, items[0].Timestamp.Location())
	})

	mt.Run("unknown session", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch))

		items, err := store.List(context.Background(), "nobody")
		require.NoError(mt, err)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("clear", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.NoError(mt, store.Clear(context.Background(), "nobody"))
		assert.Equal(mt, []string{"delete"}, startedCommands(mt))
	})

	mt.Run("backend error", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}))

		_, err := store.List(context.Background(), "s1")
		assert.Error(mt, err)
	})
}

func TestMongoStoreSweep(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removes idle sessions", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "old"}, {Key: "last", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
		)

		cutoff := time.Date(2025, 1, 1, 8, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60))
		removed, err := store.Sweep(context.Background(), cutoff)
		require.NoError(mt, err)
		assert.Equal(mt, 1, removed)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		lt := events[0].Command.Lookup("pipeline", "1", "$match", "last", "$lt").Time()
		assert.True(mt, lt.Equal(cutoff))

		sessions, err := events[1].Command.Lookup("deletes", "0", "q", "session_id", "$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, sessions, 1)
		assert.Equal(mt, "old", sessions[0].StringValue())
	})

	mt.Run("nothing idle", func(mt *mtest.T) {
		store := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch))

		removed, err := store.Sweep(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Zero(mt, removed)
		assert.Equal(mt, []string{"aggregate"}, startedCommands(mt))
	})
}

// TestMongoStoreContract runs the shared checks against a real server when
// MONGO_URI is set.
func TestMongoStoreContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	require.NoError(t, client.Ping(ctx, nil))

	runStoreContract(t, func(t *testing.T) Store {
		db := "assistentes_test_" + uuid.NewString()[:8]
		t.Cleanup(func() { _ = client.Database(db).Drop(ctx) })

		store, err := NewMongoStore(ctx, client, db)
		require.NoError(t, err)
		return store
	})
}
