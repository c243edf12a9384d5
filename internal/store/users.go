package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore reads profile display fields and maintains follow edges. User
// documents themselves are written by the account service.
type UserStore struct {
	users   *mongo.Collection
	follows *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{
		users:   db.Collection(collUsers),
		follows: db.Collection(collFollows),
	}
}

type userDoc struct {
	Name   string `bson:"name"`
	Avatar string `bson:"avatar"`
}

// Summary resolves the display fields of a user. Accounts created by the
// account service use ObjectIDs, so hex ids are matched as such.
func (s *UserStore) Summary(ctx context.Context, userID string) (*models.UserSummary, error) {
	var key interface{} = userID
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		key = oid
	}

	opts := options.FindOne().SetProjection(bson.M{"name": 1, "avatar": 1})
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"_id": key}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &models.UserSummary{ID: userID, Name: doc.Name, Avatar: doc.Avatar}, nil
}

func (s *UserStore) Follow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.follows.InsertOne(ctx, models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to follow: %w", mapWriteErr(err))
	}
	return nil
}

func (s *UserStore) Unfollow(ctx context.Context, followerID, followeeID string) error {
	res, err := s.follows.DeleteOne(ctx, bson.M{"followerId": followerID, "followeeId": followeeID})
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Followers returns the ids of everyone following userID.
func (s *UserStore) Followers(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"followerId": 1})
	cur, err := s.follows.Find(ctx, bson.M{"followeeId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}

	var edges []models.Follow
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("failed to decode followers: %w", err)
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowerID)
	}
	return ids, nil
}
