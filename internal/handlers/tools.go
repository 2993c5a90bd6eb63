package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/common"
	"github.com/ternarybob/refero/internal/services/tools"
)

// ToolHandler exposes the tool surface over JSON-RPC 2.0
type ToolHandler struct {
	service *tools.Service
	logger  arbor.ILogger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(service *tools.Service, logger arbor.ILogger) *ToolHandler {
	return &ToolHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRPC handles JSON-RPC 2.0 requests
func (h *ToolHandler) HandleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, nil, tools.InvalidRequest, "Method must be POST", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.sendError(w, nil, tools.ParseError, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req tools.JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.sendError(w, nil, tools.ParseError, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.JSONRPC != "2.0" {
		h.sendError(w, req.ID, tools.InvalidRequest, "Invalid JSON-RPC version", http.StatusBadRequest)
		return
	}

	h.logger.Debug().Str("method", req.Method).Msg("Tool RPC request")

	switch req.Method {
	case "tools/list":
		h.handleListTools(w, r, req)
	case "tools/call":
		h.handleCallTool(w, r, req)
	default:
		h.sendError(w, req.ID, tools.MethodNotFound, fmt.Sprintf("Unknown method: %s", req.Method), http.StatusNotFound)
	}
}

// handleListTools handles tools/list requests
func (h *ToolHandler) handleListTools(w http.ResponseWriter, r *http.Request, req tools.JSONRPCRequest) {
	result, err := h.service.ListTools(r.Context())
	if err != nil {
		h.sendError(w, req.ID, tools.InternalError, err.Error(), http.StatusInternalServerError)
		return
	}

	h.sendSuccess(w, req.ID, result)
}

// handleCallTool handles tools/call requests
func (h *ToolHandler) handleCallTool(w http.ResponseWriter, r *http.Request, req tools.JSONRPCRequest) {
	name, ok := req.Params["name"].(string)
	if !ok {
		h.sendError(w, req.ID, tools.InvalidParams, "Missing or invalid 'name' parameter", http.StatusBadRequest)
		return
	}

	args, ok := req.Params["arguments"].(map[string]interface{})
	if !ok {
		args = make(map[string]interface{})
	}

	result, err := h.service.CallTool(r.Context(), name, args)
	if err != nil {
		h.sendError(w, req.ID, tools.InternalError, err.Error(), http.StatusInternalServerError)
		return
	}

	h.sendSuccess(w, req.ID, result)
}

// sendSuccess sends a successful JSON-RPC response
func (h *ToolHandler) sendSuccess(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// sendError sends an error JSON-RPC response
func (h *ToolHandler) sendError(w http.ResponseWriter, id interface{}, code int, message string, httpStatus int) {
	resp := tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &tools.RPCError{
			Code:    code,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(resp)
}

// InfoHandler returns server information
func (h *ToolHandler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Refero Webhook Knowledge Agent",
		"version":     common.GetVersion(),
		"description": "Webhook knowledge base agent for document source registration and query dispatch",
		"endpoints": map[string]string{
			"rpc":  "/rpc",
			"info": "/rpc/info",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"info":    info,
	})
}
