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

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(collNotifications)}
}

// Insert assigns an ID and creation time when they are unset.
func (s *NotificationStore) Insert(ctx context.Context, n *models.NotificationRecord) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListByRecipient returns the newest notifications first.
func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID string, limit int64) ([]models.NotificationRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := s.coll.Find(ctx, bson.M{"recipientId": recipientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := []models.NotificationRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID, recipientID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "recipientId": recipientID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id primitive.ObjectID, recipientID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "recipientId": recipientID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
