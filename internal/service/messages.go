package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skillconnect/internal/models"
)

type MessageService struct {
	messages MessageRepository
	users    UserRepository
	notifier *NotificationService
	emitter  Emitter
}

func NewMessageService(messages MessageRepository, users UserRepository, notifier *NotificationService, emitter Emitter) *MessageService {
	return &MessageService{messages: messages, users: users, notifier: notifier, emitter: emitter}
}

// Send stores a direct message, pushes it to the recipient and leaves a
// "message" notification. The message counts as sent once it is stored, even
// if the notification fails.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, text, imageRef string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	imageRef = strings.TrimSpace(imageRef)
	switch {
	case recipientID == "":
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	case senderID == recipientID:
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	case text == "" && imageRef == "":
		return nil, fmt.Errorf("%w: message needs text or an image", ErrInvalidInput)
	}

	msg := &models.ChatMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		ImageRef:    imageRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	msg.Sender = summaryOf(ctx, s.users, senderID)
	s.emitter.EmitToUser(recipientID, models.EventNewChatMessage, msg)

	preview := text
	if preview == "" {
		preview = "sent you an image"
	}
	err := s.notifier.Notify(ctx, &models.NotificationRecord{
		RecipientID:  recipientID,
		Type:         models.NotificationMessage,
		SourceUserID: senderID,
		Text:         fmt.Sprintf("%s: %s", msg.Sender.Name, truncate(preview, 80)),
		Link:         "/messages/" + senderID,
	})
	if err != nil {
		slog.Warn("[SERVICE] Message stored but notification failed", "message", msg.ID.Hex(), "error", err)
	}

	return msg, nil
}

// Thread is the pull-side query for the conversation between userID and
// otherID, oldest first within the page.
func (s *MessageService) Thread(ctx context.Context, userID, otherID string, limit int, before time.Time) ([]models.ChatMessage, error) {
	if otherID == "" {
		return nil, fmt.Errorf("%w: other user is required", ErrInvalidInput)
	}
	return s.messages.Thread(ctx, userID, otherID, clampLimit(limit), before)
}

// MarkSeen flips seen on the messages senderID sent to recipientID.
func (s *MessageService) MarkSeen(ctx context.Context, recipientID, senderID string) (int64, error) {
	if senderID == "" {
		return 0, fmt.Errorf("%w: sender is required", ErrInvalidInput)
	}
	return s.messages.MarkSeen(ctx, recipientID, senderID)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
