package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

const mongoCollection = "interactions"

// interactionDoc is the stored document. ObjectIDs are generated by the
// driver in increasing order, so sorting on _id yields insertion order.
type interactionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SessionID   string             `bson:"session_id"`
	AssistantID string             `bson:"tipo"`
	Question    string             `bson:"pergunta"`
	Answer      string             `bson:"resposta"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// MongoStore keeps one document per interaction.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore binds the store to dbName and ensures the session index.
func NewMongoStore(ctx context.Context, client *mongo.Client, dbName string) (*MongoStore, error) {
	collection := client.Database(dbName).Collection(mongoCollection)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session index: %w", err)
	}
	return &MongoStore{client: client, collection: collection}, nil
}

// Append implements Store. Insert and trim are separate round trips; a
// concurrent append may briefly observe 51 entries before the trim lands.
func (s *MongoStore) Append(ctx context.Context, sessionID string, item chat.Interaction) error {
	doc := interactionDoc{
		ID:          primitive.NewObjectID(),
		SessionID:   sessionID,
		AssistantID: item.AssistantID,
		Question:    item.Question,
		Answer:      item.Answer,
		CreatedAt:   item.Timestamp.UTC(),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	filter := bson.M{"session_id": sessionID}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to count interactions: %w", err)
	}
	if count <= MaxInteractions {
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(count - MaxInteractions).
		SetProjection(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to find stale interactions: %w", err)
	}
	var stale []interactionDoc
	if err := cursor.All(ctx, &stale); err != nil {
		return fmt.Errorf("failed to decode stale interactions: %w", err)
	}

	ids := make([]primitive.ObjectID, len(stale))
	for i, doc := range stale {
		ids[i] = doc.ID
	}
	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to trim interactions: %w", err)
	}
	return nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, sessionID string) ([]chat.Interaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]chat.Interaction, 0)
	for cursor.Next(ctx) {
		var doc interactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, chat.Interaction{
			AssistantID: doc.AssistantID,
			Question:    doc.Question,
			Answer:      doc.Answer,
			Timestamp:   doc.CreatedAt.UTC(),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear implements Store.
func (s *MongoStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sweep implements Sweeper.
func (s *MongoStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	cutoff = cutoff.UTC()
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$session_id"},
			{Key: "last", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "last", Value: bson.D{{Key: "$lt", Value: cutoff}}}}}},
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to find idle sessions: %w", err)
	}
	var groups []struct {
		SessionID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return 0, fmt.Errorf("failed to decode idle sessions: %w", err)
	}
	if len(groups) == 0 {
		return 0, nil
	}

	idle := make([]string, len(groups))
	for i, g := range groups {
		idle[i] = g.SessionID
	}
	if _, err := s.collection.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": idle}}); err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	return len(idle), nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
