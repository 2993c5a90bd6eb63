package server

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/refero/internal/common"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Tool surface (JSON-RPC 2.0)
	mux.HandleFunc("/rpc", s.toolHandler.HandleRPC)
	mux.HandleFunc("/rpc/info", s.toolHandler.InfoHandler)

	// Health
	mux.HandleFunc("/api/status", s.statusHandler)

	return mux
}

// statusHandler reports server health and version
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
	})
}
