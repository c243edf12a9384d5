package store

import (
	"context"
	"fmt"
	"time"

	"skillconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{coll: db.Collection(collMessages)}
}

func (s *MessageStore) Insert(ctx context.Context, m *models.ChatMessage) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// Thread returns up to limit messages exchanged between a and b, older than
// before when it is set. The page is returned oldest first.
func (s *MessageStore) Thread(ctx context.Context, a, b string, limit int64, before time.Time) ([]models.ChatMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": a, "recipientId": b},
		bson.M{"senderId": b, "recipientId": a},
	}}
	if !before.IsZero() {
		filter["createdAt"] = bson.M{"$lt": before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}

	out := []models.ChatMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode thread: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkSeen flips every unseen message from sender to recipient.
func (s *MessageStore) MarkSeen(ctx context.Context, recipientID, senderID string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"senderId": senderID, "recipientId": recipientID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages seen: %w", err)
	}
	return res.ModifiedCount, nil
}
