package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/application/chat"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
	infrachat "github.com/SlavaKuntsov/software-security/internal/infrastructure/chat"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
)

// ChatHandler serves direct messaging between authenticated users. Presence
// is tracked through the connection registry, fed by the SSE stream endpoint.
type ChatHandler struct {
	svc      *chat.Service
	registry *infrachat.Registry
	validate *validator.Validate
	log      zerolog.Logger
}

func NewChatHandler(svc *chat.Service, registry *infrachat.Registry, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, registry: registry, validate: validator.New(), log: log}
}

func messageResponse(m *domain.ChatMessage) map[string]interface{} {
	return map[string]interface{}{
		"id":          m.ID.String(),
		"sender_id":   m.SenderID.String(),
		"receiver_id": m.ReceiverID.String(),
		"content":     m.Content,
		"timestamp":   m.Timestamp,
		"is_read":     m.IsRead,
	}
}

// Send stores a message to another user.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		ReceiverID string `json:"receiver_id" validate:"required"`
		Content    string `json:"content" validate:"required,max=4096"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	body.Content = SanitizeMessage(body.Content)
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}
	receiverID, err := domain.ParseUserID(body.ReceiverID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid receiver id")
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), id.UserID, receiverID, body.Content)
	if err != nil {
		if errors.Is(err, domerrors.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("chat send failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse(msg))
}

// History returns the two-way conversation with another user.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	partnerID, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	msgs, err := h.svc.History(r.Context(), id.UserID, partnerID)
	if err != nil {
		h.log.Error().Err(err).Msg("chat history failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	out := make([]map[string]interface{}, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkRead marks every message from the given sender to the caller as read.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	senderID, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.svc.MarkRead(r.Context(), id.UserID, senderID); err != nil {
		h.log.Error().Err(err).Msg("chat mark read failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Unread returns the caller's unread message count.
func (h *ChatHandler) Unread(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	count, err := h.svc.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("chat unread failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Partners lists users the caller can message.
func (h *ChatHandler) Partners(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	partners, err := h.svc.Partners(r.Context(), id.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("chat partners failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	out := make([]map[string]interface{}, 0, len(partners))
	for _, u := range partners {
		p := UserResponse(u)
		if h.registry != nil {
			p["online"] = len(h.registry.ConnectionsFor(u.ID)) > 0
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// Stream holds an SSE connection open, registering the caller as online for
// its duration. The unread count is pushed on connect and every interval.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "", "streaming unsupported")
		return
	}
	connID := ulid.Make().String()
	h.registry.Add(connID, id.UserID)
	defer h.registry.Remove(connID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	push := func() {
		count, err := h.svc.UnreadCount(r.Context(), id.UserID)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: unread\ndata: {\"count\":%d}\n\n", count)
		flusher.Flush()
	}
	push()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			push()
		}
	}
}
