package service

import (
	"context"
	"fmt"
	"log/slog"

	"skillconnect/internal/models"
	"skillconnect/internal/store"
)

type NotificationService struct {
	repo    NotificationRepository
	emitter Emitter
}

func NewNotificationService(repo NotificationRepository, emitter Emitter) *NotificationService {
	return &NotificationService{repo: repo, emitter: emitter}
}

// Notify persists n and then pushes it to the recipient.
func (s *NotificationService) Notify(ctx context.Context, n *models.NotificationRecord) error {
	if n.RecipientID == "" {
		return fmt.Errorf("%w: notification without recipient", ErrInvalidInput)
	}
	n.IsRead = false
	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	slog.Debug("[SERVICE] Notification stored", "id", n.ID.Hex(), "type", n.Type, "recipient", n.RecipientID)
	s.emitter.EmitToUser(n.RecipientID, models.EventNewNotification, n)
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.NotificationRecord, error) {
	return s.repo.ListByRecipient(ctx, userID, clampLimit(limit))
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	id, err := store.ParseID(notificationID)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	id, err := store.ParseID(notificationID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, userID)
}
