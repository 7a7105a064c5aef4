package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kestrelworks/smsbridge/internal/message"
)

// defaultListLimit is applied when the caller supplies no limit. There
// is deliberately no upper bound; callers own their own pagination.
const defaultListLimit = 50

// inboxResponse is the wire shape for GET /inbox. Counts always cover
// the full unfiltered store.
type inboxResponse struct {
	Messages    []message.Message `json:"messages"`
	TotalCount  int               `json:"totalCount"`
	UnreadCount int               `json:"unreadCount"`
	Timestamp   string            `json:"timestamp"`
}

// mutationResponse is the wire shape for read/delete mutations.
type mutationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Deleted *bool  `json:"deleted,omitempty"`
}

// handleListInbox returns messages newest-first, filtered by the
// limit, unread, and from query parameters.
//
// Store read failures degrade to an empty result rather than an error;
// a gateway without read access still answers.
func (s *Server) handleListInbox(w http.ResponseWriter, r *http.Request) {
	filter := message.ListFilter{Limit: defaultListLimit}

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := q.Get("unread"); v != "" {
		filter.UnreadOnly = v == "true" || v == "1"
	}
	filter.FromContains = q.Get("from")

	resp := inboxResponse{
		Messages:  []message.Message{},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	msgs, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.logger.Warn("inbox list degraded to empty result", "error", err)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Messages = msgs

	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.logger.Warn("inbox counts unavailable", "error", err)
	} else {
		resp.TotalCount = counts.Total
		resp.UnreadCount = counts.Unread
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetMessage returns a single message by id.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	msg, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, message.ErrNotFound) {
			writeNotFound(w, "message not found")
			return
		}
		s.logger.Error("message lookup failed", "id", id, "error", err)
		writeInternalError(w, "message lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// handleMarkRead marks a message as read. Re-marking an already-read
// message still succeeds.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, message.ErrNotFound) {
			writeNotFound(w, "message not found")
			return
		}
		s.logger.Error("mark read failed", "id", id, "error", err)
		writeInternalError(w, "mark read failed")
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, ID: id})
}

// handleDeleteMessage deletes a message by id. Deleting an unknown id
// is reported as a failed mutation, not a server error.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted := false
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, message.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, mutationResponse{Success: false, ID: id, Deleted: &deleted})
			return
		}
		s.logger.Error("delete failed", "id", id, "error", err)
		writeInternalError(w, "delete failed")
		return
	}

	deleted = true
	writeJSON(w, http.StatusOK, mutationResponse{Success: true, ID: id, Deleted: &deleted})
}
