// Package api exposes the producers and pull-side queries over HTTP and
// mounts the websocket handshake.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"skillconnect/internal/models"
	"skillconnect/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Presence interface {
	OnlineUsers() []string
}

// ClusterPresence reads the presence mirror shared by every instance.
type ClusterPresence interface {
	OnlineEverywhere(ctx context.Context) ([]string, error)
}

type Notifications interface {
	List(ctx context.Context, userID string, limit int) ([]models.NotificationRecord, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, notificationID string) error
}

type Messages interface {
	Send(ctx context.Context, senderID, recipientID, text, imageRef string) (*models.ChatMessage, error)
	Thread(ctx context.Context, userID, otherID string, limit int, before time.Time) ([]models.ChatMessage, error)
	MarkSeen(ctx context.Context, recipientID, senderID string) (int64, error)
}

type Jobs interface {
	Create(ctx context.Context, ownerID string, in service.JobInput) (*models.Job, error)
	Apply(ctx context.Context, applicantID, jobID, resumeRef string) (*models.Application, error)
	RegisterInterest(ctx context.Context, userID, jobID string) error
}

type Social interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
}

type Deps struct {
	Logger         *slog.Logger
	AllowedOrigins []string // empty allows any origin
	Auth           func(http.Handler) http.Handler
	WS             http.Handler
	Presence       Presence
	Cluster        ClusterPresence // optional
	Notifications  Notifications
	Messages       Messages
	Jobs           Jobs
	Social         Social
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &handlers{
		presence:      d.Presence,
		cluster:       d.Cluster,
		notifications: d.Notifications,
		messages:      d.Messages,
		jobs:          d.Jobs,
		social:        d.Social,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Outside the request logger: a websocket request lasts as long as its
	// connection.
	if d.WS != nil {
		r.Method(http.MethodGet, "/ws", d.WS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(LoggerMiddleware(d.Logger))
		r.Use(corsHandler(d.AllowedOrigins))
		r.Use(d.Auth)

		r.Get("/presence", h.getPresence)

		r.Get("/notifications", h.listNotifications)
		r.Patch("/notifications/read", h.markAllNotificationsRead)
		r.Patch("/notifications/{id}/read", h.markNotificationRead)
		r.Delete("/notifications/{id}", h.deleteNotification)

		r.Get("/messages/{userID}", h.getThread)
		r.Post("/messages/{userID}", h.sendMessage)
		r.Post("/messages/{userID}/seen", h.markMessagesSeen)

		r.Post("/jobs", h.createJob)
		r.Post("/jobs/{jobID}/apply", h.applyToJob)
		r.Post("/jobs/{jobID}/interest", h.registerInterest)

		r.Post("/users/{userID}/follow", h.follow)
		r.Delete("/users/{userID}/follow", h.unfollow)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.Handler(opts)
}
