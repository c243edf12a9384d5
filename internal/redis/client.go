package redis

import (
	"context"
	"fmt"
	"log/slog"

	"skillconnect/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	userChannelPrefix = "user:"
	presenceKey       = "presence:online"
)

// Client relays user events between instances and mirrors local presence
// into a shared set. It satisfies ws.Relay.
type Client struct {
	rdb      *redis.Client
	instance string
}

func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c := &Client{
		rdb:      rdb,
		instance: uuid.NewString(),
	}
	slog.Info("[REDIS] Connected to Redis", "addr", opt.Addr, "instance", c.instance)

	return c, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// PublishUserEvent forwards an encoded frame for userID to every instance.
func (c *Client) PublishUserEvent(ctx context.Context, userID string, frame []byte) error {
	payload, err := json.Marshal(models.UserEvent{
		UserID: userID,
		Origin: c.instance,
		Frame:  frame,
	})
	if err != nil {
		slog.Error("[REDIS] Failed to marshal user event", "user", userID, "error", err)
		return err
	}

	channel := userChannelPrefix + userID
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		slog.Error("[REDIS] Failed to publish user event", "channel", channel, "error", err)
		return err
	}

	return nil
}

func (c *Client) MarkOnline(ctx context.Context, userID string) error {
	return c.rdb.SAdd(ctx, presenceKey, userID).Err()
}

func (c *Client) MarkOffline(ctx context.Context, userID string) error {
	return c.rdb.SRem(ctx, presenceKey, userID).Err()
}

// OnlineEverywhere reads the shared presence mirror. It is informational;
// presence broadcasts only ever carry the local set.
func (c *Client) OnlineEverywhere(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, presenceKey).Result()
}
