package api

import (
	"net/http"

	"github.com/seenimoa/tickerpulse/internal/config"
)

// handleGetConfig returns the running configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    redactConfig(s.cfg),
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// redactConfig returns a copy of cfg that is safe to expose.
func redactConfig(cfg *config.Config) config.Config {
	out := *cfg
	if out.Ingest.NewsAPIKey != "" {
		out.Ingest.NewsAPIKey = "***"
	}
	return out
}
