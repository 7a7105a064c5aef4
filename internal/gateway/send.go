package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/kestrelworks/smsbridge/internal/message"
)

// sendCompletionTimeout bounds the background wait for a transport
// outcome. Expiry is a failure outcome, never a hang.
const sendCompletionTimeout = 2 * time.Minute

// sendRequest is the wire shape for POST /send.
type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// sendResponse is the wire shape for the POST /send reply. Success
// means the request was accepted; the real delivery outcome arrives
// later as a `sent` event carrying the same message id.
type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// handleSend accepts a send request, dispatches it to the transport in
// the background, and returns immediately with a correlation id. The
// transport outcome surfaces via the later `sent` event.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.To == "" {
		writeBadRequest(w, "missing required field: to")
		return
	}
	if req.Message == "" {
		writeBadRequest(w, "missing required field: message")
		return
	}

	now := time.Now()

	if s.transport == nil || !s.transport.Available() {
		writeJSON(w, http.StatusServiceUnavailable, sendResponse{
			Success:   false,
			Error:     "transport unavailable",
			Timestamp: now.UTC().Format(time.RFC3339),
		})
		return
	}

	correlationID := newCorrelationID(now)

	// The id is generated before the goroutine is spawned, so the
	// response and the later sent event always agree on it.
	go s.completeSend(correlationID, req.To, req.Message)

	writeJSON(w, http.StatusOK, sendResponse{
		Success:   true,
		MessageID: correlationID,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}

// completeSend runs the transport call off the request path, records
// the outcome, and broadcasts the sent event.
func (s *Server) completeSend(correlationID, to, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendCompletionTimeout)
	defer cancel()

	start := time.Now()
	err := s.transport.Send(ctx, correlationID, to, body)
	success := err == nil

	if success {
		s.logger.Info("message sent", "correlation_id", correlationID)
		s.recordSentMessage(ctx, to, body)
	} else {
		s.logger.Warn("message send failed", "correlation_id", correlationID, "error", err)
	}

	if s.influx != nil {
		s.influx.WriteSendOutcome(correlationID, success, time.Since(start))
	}

	s.hub.Broadcast(newSentEvent(correlationID, to, success, err))
}

// recordSentMessage stores a copy of a successfully sent message.
// Store failures are logged and swallowed; the send already happened.
func (s *Server) recordSentMessage(ctx context.Context, to, body string) {
	msg := &message.Message{
		Address: to,
		Body:    body,
		Read:    true,
		Kind:    message.KindSent,
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		s.logger.Warn("failed to record sent message", "error", err)
	}
}

// correlationIDRandomMax bounds the 4-digit random suffix.
const correlationIDRandomMax = 10000

// newCorrelationID generates a send correlation id. Uniqueness is
// probabilistic within a process run, not guaranteed across restarts.
func newCorrelationID(now time.Time) string {
	return fmt.Sprintf("sms_%d_%04d", now.UnixMilli(), rand.Intn(correlationIDRandomMax))
}
