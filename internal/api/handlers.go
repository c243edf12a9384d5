package api

import (
	"net/http"
	"strconv"
	"time"

	"skillconnect/internal/auth"
	"skillconnect/internal/service"

	"github.com/go-chi/chi/v5"
)

type handlers struct {
	presence      Presence
	cluster       ClusterPresence
	notifications Notifications
	messages      Messages
	jobs          Jobs
	social        Social
}

type sendMessageRequest struct {
	Text     string `json:"text"`
	ImageRef string `json:"imageRef"`
}

type applyRequest struct {
	ResumeRef string `json:"resumeRef"`
}

type presenceResponse struct {
	Online           []string `json:"online"`
	OnlineEverywhere []string `json:"onlineEverywhere,omitempty"`
}

type countResponse struct {
	Updated int64 `json:"updated"`
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// getPresence always answers with the local set. The cluster-wide mirror is
// added when a relay is configured and left out if it cannot be read.
func (h *handlers) getPresence(w http.ResponseWriter, r *http.Request) {
	resp := presenceResponse{Online: h.presence.OnlineUsers()}
	if h.cluster != nil {
		all, err := h.cluster.OnlineEverywhere(r.Context())
		if err != nil {
			LoggerFromContext(r.Context()).Warn("[API] Failed to read presence mirror", "error", err)
		} else {
			resp.OnlineEverywhere = all
		}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context(), auth.UserIDFromContext(r.Context()), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (h *handlers) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, countResponse{Updated: n})
}

func (h *handlers) deleteNotification(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getThread(w http.ResponseWriter, r *http.Request) {
	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = t
	}

	thread, err := h.messages.Thread(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID"), queryLimit(r), before)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, thread)
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg, err := h.messages.Send(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID"), req.Text, req.ImageRef)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *handlers) markMessagesSeen(w http.ResponseWriter, r *http.Request) {
	n, err := h.messages.MarkSeen(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, countResponse{Updated: n})
}

func (h *handlers) createJob(w http.ResponseWriter, r *http.Request) {
	var in service.JobInput
	if err := decodeBody(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, job)
}

func (h *handlers) applyToJob(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	app, err := h.jobs.Apply(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "jobID"), req.ResumeRef)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, app)
}

func (h *handlers) registerInterest(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.RegisterInterest(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "jobID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) follow(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Follow(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Unfollow(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
