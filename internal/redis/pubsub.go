package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"skillconnect/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

// Deliverer pushes an encoded frame to a local connection.
type Deliverer interface {
	Deliver(userID string, frame []byte) bool
}

var errOwnEvent = errors.New("event published by this instance")

// SubscribeToEvents feeds user events published by other instances into the
// local hub until ctx is cancelled.
func SubscribeToEvents(ctx context.Context, client *Client, hub Deliverer) {
	slog.Info("[REDIS] Starting Redis pub/sub subscription...")

	pattern := userChannelPrefix + "*"
	pubsub := client.rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		slog.Error("[REDIS] Failed to receive subscription confirmation", "error", err)
		return
	}

	slog.Info("[REDIS] Subscription confirmed, listening for messages...", "pattern", pattern)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("[REDIS] Subscription stopped")
			return

		case msg, ok := <-ch:
			if !ok {
				slog.Info("[REDIS] Redis pub/sub channel closed")
				return
			}
			handleMessage(client.instance, msg, hub)
		}
	}
}

func handleMessage(instance string, msg *redis.Message, hub Deliverer) {
	event, err := decodeUserEvent(instance, msg.Channel, []byte(msg.Payload))
	if errors.Is(err, errOwnEvent) {
		return
	}
	if err != nil {
		slog.Error("[REDIS] Error decoding user event", "channel", msg.Channel, "error", err)
		return
	}

	if !hub.Deliver(event.UserID, event.Frame) {
		slog.Debug("[REDIS] User not connected here", "user", event.UserID)
	}
}

func decodeUserEvent(instance, channel string, payload []byte) (*models.UserEvent, error) {
	var event models.UserEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	if event.Origin == instance {
		return nil, errOwnEvent
	}
	if event.UserID == "" {
		event.UserID = strings.TrimPrefix(channel, userChannelPrefix)
	}
	if event.UserID == "" || len(event.Frame) == 0 {
		return nil, errors.New("user event without user or frame")
	}
	return &event, nil
}
