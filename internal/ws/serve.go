package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"skillconnect/internal/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenValidator verifies the credential presented on the handshake.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Handler authenticates websocket upgrade requests and admits the resulting
// connections into the hub.
type Handler struct {
	hub       *Hub
	validator TokenValidator
	upgrader  websocket.Upgrader
}

// NewHandler builds the /ws handler. An empty allowedOrigins list accepts any origin.
func NewHandler(hub *Hub, validator TokenValidator, allowedOrigins []string) *Handler {
	return &Handler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	slog.Debug("[WS] New WebSocket connection request", "from", remoteAddr)

	token := auth.ExtractToken(r)
	if token == "" {
		slog.Warn("[WS] No token provided", "from", remoteAddr)
		http.Error(w, auth.ErrCredentialMissing.Error(), http.StatusUnauthorized)
		return
	}

	claims, err := h.validator.Validate(token)
	if err != nil {
		slog.Warn("[WS] Token validation failed", "from", remoteAddr, "error", err)
		reason := auth.ErrInvalidCredential.Error()
		if errors.Is(err, auth.ErrCredentialMissing) {
			reason = auth.ErrCredentialMissing.Error()
		}
		http.Error(w, reason, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("[WS] Failed to upgrade connection", "user", claims.UserID(), "error", err)
		return
	}

	client := newClient(h.hub, conn, uuid.NewString(), claims.UserID(), claims.Name)
	slog.Info("[WS] Connection upgraded", "user", client.userID, "conn", client.id, "from", remoteAddr)

	if !h.hub.Register(client) {
		slog.Warn("[WS] Hub stopped, dropping connection", "user", client.userID)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
