package gateway

import (
	"net/http"
	"time"
)

// statusResponse is the wire shape for GET /status.
type statusResponse struct {
	Status      string `json:"status"`
	SendCapable bool   `json:"sendCapable"`
	ReadCapable bool   `json:"readCapable"`
	Port        int    `json:"port"`
	EventPort   int    `json:"eventPort"`
	Timestamp   string `json:"timestamp"`
}

// handleStatus reports gateway liveness and capability flags. Flags are
// re-derived from the collaborators on every call, never cached.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sendCapable := s.transport != nil && s.transport.Available()

	readCapable := false
	if s.store != nil {
		_, err := s.store.Counts(r.Context())
		readCapable = err == nil
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "running",
		SendCapable: sendCapable,
		ReadCapable: readCapable,
		Port:        s.cfg.Port,
		EventPort:   s.eventPort,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}
