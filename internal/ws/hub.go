package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skillconnect/internal/models"

	"github.com/goccy/go-json"
)

// Relay forwards user events to other instances and mirrors presence.
type Relay interface {
	PublishUserEvent(ctx context.Context, userID string, frame []byte) error
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string) error
}

const (
	relayTimeout     = 2 * time.Second
	mirrorBufferSize = 1024
)

type presenceUpdate struct {
	userID string
	online bool
}

// Hub owns the connection registry. Register and unregister requests are
// applied one at a time on the Run loop, and each change of the online set
// is followed by exactly one presence broadcast.
type Hub struct {
	registry *Registry

	// Guards registry reads from outside the loop and closing of client send channels.
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	relay Relay
	// Presence mirror updates, applied in order by runMirror off the loop.
	mirror chan presenceUpdate
	now    func() time.Time
}

// NewHub creates a hub. relay may be nil for a single-instance deployment.
func NewHub(relay Relay) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		relay:      relay,
		mirror:     make(chan presenceUpdate, mirrorBufferSize),
		now:        time.Now,
	}
}

// Run processes register/unregister requests until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	slog.Info("[HUB] Starting hub event loop")
	defer close(h.done)

	if h.relay != nil {
		go h.runMirror()
		defer close(h.mirror)
	}

	for {
		select {
		case client := <-h.register:
			slog.Debug("[HUB] Received register request", "user", client.userID, "conn", client.id)
			h.registerClient(client)

		case client := <-h.unregister:
			slog.Debug("[HUB] Received unregister request", "user", client.userID, "conn", client.id)
			h.unregisterClient(client)

		case <-ctx.Done():
			h.shutdown()
			slog.Info("[HUB] Hub event loop stopped")
			return
		}
	}
}

// Register queues c for admission. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	prev := h.registry.Set(client.userID, client)
	if prev != nil && prev != client {
		slog.Info("[HUB] Replacing previous connection", "user", client.userID, "old", prev.id, "new", client.id)
		h.closeClient(prev)
	}
	slog.Info("[HUB] Client registered", "user", client.userID, "conn", client.id, "online", h.registry.Len())
	evicted := h.broadcastPresenceLocked()
	h.mu.Unlock()

	h.mirrorPresence(client.userID, true)
	for _, userID := range evicted {
		h.mirrorPresence(userID, false)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	removed := h.registry.DeleteIf(client.userID, client)
	h.closeClient(client)
	if !removed {
		h.mu.Unlock()
		slog.Debug("[HUB] Unregister of stale or unknown connection ignored", "user", client.userID, "conn", client.id)
		return
	}
	slog.Info("[HUB] Client unregistered", "user", client.userID, "conn", client.id, "online", h.registry.Len())
	evicted := h.broadcastPresenceLocked()
	h.mu.Unlock()

	h.mirrorPresence(client.userID, false)
	for _, userID := range evicted {
		h.mirrorPresence(userID, false)
	}
}

// mirrorPresence queues an update for the relay's presence set. It runs on
// the loop and never blocks it: when the queue is full the update is dropped.
func (h *Hub) mirrorPresence(userID string, online bool) {
	if h.relay == nil {
		return
	}
	select {
	case h.mirror <- presenceUpdate{userID: userID, online: online}:
	default:
		slog.Warn("[HUB] Presence mirror queue full, dropping update", "user", userID, "online", online)
	}
}

func (h *Hub) runMirror() {
	for upd := range h.mirror {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		var err error
		if upd.online {
			err = h.relay.MarkOnline(ctx, upd.userID)
		} else {
			err = h.relay.MarkOffline(ctx, upd.userID)
		}
		cancel()
		if err != nil {
			slog.Warn("[HUB] Failed to mirror presence", "user", upd.userID, "online", upd.online, "error", err)
		}
	}
}

// broadcastPresenceLocked sends the full online set to every registered
// client. Clients whose buffers are full are evicted, which changes the set
// again, so another round follows until nobody is evicted. It returns the
// users that were evicted.
func (h *Hub) broadcastPresenceLocked() []string {
	var evictedUsers []string
	for {
		users := h.registry.Users()
		frame, err := h.encode(models.EventOnlineUsersChanged, users)
		if err != nil {
			return evictedUsers
		}

		var evicted []*Client
		for _, client := range h.registry.all() {
			select {
			case client.send <- frame:
			default:
				slog.Warn("[HUB] Client buffer full, disconnecting", "user", client.userID, "conn", client.id)
				evicted = append(evicted, client)
			}
		}
		slog.Debug("[HUB] Presence broadcast", "online", len(users), "evicted", len(evicted))

		if len(evicted) == 0 {
			return evictedUsers
		}
		for _, client := range evicted {
			if h.registry.DeleteIf(client.userID, client) {
				evictedUsers = append(evictedUsers, client.userID)
			}
			h.closeClient(client)
		}
	}
}

// closeClient must be called with h.mu held for writing.
func (h *Hub) closeClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.registry.all() {
		h.closeClient(client)
	}
	h.registry.reset()
}

// EmitToUser pushes an event to userID's live connection, if there is one,
// and hands it to the relay for other instances. Delivery is best effort:
// failures are logged and never reach the caller.
func (h *Hub) EmitToUser(userID, eventType string, payload interface{}) {
	frame, err := h.encode(eventType, payload)
	if err != nil {
		return
	}

	h.Deliver(userID, frame)

	if h.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		defer cancel()
		if err := h.relay.PublishUserEvent(ctx, userID, frame); err != nil {
			slog.Warn("[HUB] Failed to relay event", "type", eventType, "user", userID, "error", err)
		}
	}
}

// Deliver pushes an encoded frame to the local connection of userID.
// It reports whether the frame was queued.
func (h *Hub) Deliver(userID string, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.registry.Get(userID)
	if !ok {
		slog.Debug("[HUB] User not connected, skipping push", "user", userID)
		return false
	}
	return h.trySendLocked(client, frame)
}

// reply pushes a frame to one specific connection, even if it is no longer
// the registered one for its user.
func (h *Hub) reply(c *Client, eventType string, payload interface{}) bool {
	frame, err := h.encode(eventType, payload)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.trySendLocked(c, frame)
}

func (h *Hub) trySendLocked(c *Client, frame []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		slog.Warn("[HUB] Client buffer full, dropping event", "user", c.userID, "conn", c.id)
		return false
	}
}

// OnlineUsers returns a snapshot of the presence set.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry.Users()
}

// Lookup returns the connection ID held by userID.
func (h *Hub) Lookup(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.registry.Get(userID)
	if !ok {
		return "", false
	}
	return client.id, true
}

func (h *Hub) encode(eventType string, payload interface{}) ([]byte, error) {
	frame, err := json.Marshal(models.Event{
		Type:      eventType,
		Data:      payload,
		Timestamp: h.now().Unix(),
	})
	if err != nil {
		slog.Error("[HUB] Failed to marshal event", "type", eventType, "error", err)
		return nil, err
	}
	return frame, nil
}
