// Package service holds the producers (send message, create job, apply,
// register interest) and the pull-side queries. Every producer persists its
// record before emitting it, and never emits a record that failed to persist.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"skillconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyApplied = errors.New("already applied to this job")
)

// Emitter pushes an event to a user's live connection, if any. It must not
// block or fail the caller.
type Emitter interface {
	EmitToUser(userID, eventType string, payload interface{})
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.NotificationRecord) error
	ListByRecipient(ctx context.Context, recipientID string, limit int64) ([]models.NotificationRecord, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID, recipientID string) error
}

type MessageRepository interface {
	Insert(ctx context.Context, m *models.ChatMessage) error
	Thread(ctx context.Context, a, b string, limit int64, before time.Time) ([]models.ChatMessage, error)
	MarkSeen(ctx context.Context, recipientID, senderID string) (int64, error)
}

type JobRepository interface {
	Insert(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	InsertApplication(ctx context.Context, app *models.Application) error
	InsertInterest(ctx context.Context, in *models.Interest) error
}

type UserRepository interface {
	Summary(ctx context.Context, userID string) (*models.UserSummary, error)
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Followers(ctx context.Context, userID string) ([]string, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// clampLimit applies the default page size to a missing limit and caps
// oversized ones.
func clampLimit(limit int) int64 {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	}
	return int64(limit)
}

// summaryOf resolves display fields, falling back to the bare id so a
// missing profile never blocks a producer.
func summaryOf(ctx context.Context, users UserRepository, userID string) *models.UserSummary {
	s, err := users.Summary(ctx, userID)
	if err != nil {
		slog.Debug("[SERVICE] Could not resolve user summary", "user", userID, "error", err)
		return &models.UserSummary{ID: userID, Name: "Someone"}
	}
	if s.Name == "" {
		s.Name = "Someone"
	}
	return s
}
