package api

import "net/http"

// handleHealth returns a minimal liveness response.
//
// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStatus mirrors the control-plane status command.
//
// GET /api/v1/status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	running := false
	clients := 0
	if s.runtime != nil {
		running = s.runtime.Running()
		clients = s.runtime.ClientCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"running":    running,
		"clients":    clients,
		"ws_clients": s.wsClientCount(),
	})
}

func (s *Server) wsClientCount() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.ClientCount()
}
