package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const (
	collNotifications = "notifications"
	collMessages      = "messages"
	collJobs          = "jobs"
	collApplications  = "applications"
	collInterests     = "interests"
	collUsers         = "users"
	collFollows       = "follows"
)

// Connect opens a client and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI configuration is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the queries below rely on. It is safe to
// run on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		collNotifications: {
			{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collMessages: {
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collApplications: {
			{Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "applicantId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collInterests: {
			{Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collFollows: {
			{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followeeId", Value: 1}}},
		},
	}

	for coll, indexes := range specs {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		slog.Debug("[STORE] Indexes ensured", "collection", coll, "indexes", names)
	}
	return nil
}

// ParseID converts a hex id from a URL into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", ErrNotFound, hex)
	}
	return id, nil
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}
