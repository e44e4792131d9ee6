// ABOUTME: MCP-compatible JSON-RPC HTTP endpoint for tax data access
// ABOUTME: Authenticates bearer tokens, dispatches methods, maps errors to codes

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taxhelper/tax-gateway/internal/auth"
	"github.com/taxhelper/tax-gateway/internal/refdata"
	"github.com/taxhelper/tax-gateway/internal/store"
)

// ProtocolVersion is the MCP protocol revision advertised in initialize.
const ProtocolVersion = "2024-11-05"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes. The -3200x codes are this protocol's additions:
// -32001 for absent credentials, -32002 for rejected tokens and for
// resource reads that miss (the code is shared by wire contract).
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeAuthRequired   = -32001
	CodeInvalidToken   = -32002
	CodeNotFound       = -32002
)

// Config holds configuration for the MCP server.
type Config struct {
	Store     store.TaxStore
	RefData   *refdata.Provider
	Validator auth.TokenValidator
	Logger    *slog.Logger
	Name      string
	Version   string
}

// Server implements the MCP JSON-RPC endpoint over a single HTTP POST path.
// Each request is independent: authenticate, dispatch, respond. No session
// state is kept between calls.
type Server struct {
	store     store.TaxStore
	refdata   *refdata.Provider
	validator auth.TokenValidator
	logger    *slog.Logger
	name      string
	version   string
	tools     []toolDefinition
	prompts   []promptDefinition
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.RefData == nil {
		return nil, errors.New("refdata provider is required")
	}
	if cfg.Validator == nil {
		return nil, errors.New("token validator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "tax-gateway"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:     cfg.Store,
		refdata:   cfg.RefData,
		validator: cfg.Validator,
		logger:    logger.With("component", "mcp"),
		name:      name,
		version:   version,
	}
	s.tools = s.toolDefinitions()
	s.prompts = promptDefinitions()
	return s, nil
}

// ToolNames returns the registered tool names, for the discovery endpoint.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name
	}
	return names
}

// Methods returns the JSON-RPC method names this server dispatches.
func (s *Server) Methods() []string {
	return []string{
		"initialize",
		"tools/list",
		"tools/call",
		"resources/list",
		"resources/read",
		"prompts/list",
		"prompts/get",
	}
}

// RegisterRoutes registers the MCP endpoint on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handlePost(w, r)
}

// handlePost processes one JSON-RPC message: parse, authenticate, dispatch.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendError(w, http.StatusOK, nil, CodeParseError, "failed to read request body")
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendError(w, http.StatusOK, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, http.StatusOK, nil, CodeParseError, "invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidRequest, "invalid JSON-RPC version")
		return
	}
	if req.Method == "" {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidRequest, "missing method")
		return
	}

	// Authentication gate: every method requires a verified identity.
	ctx, authErr := s.authenticate(r)
	if authErr != nil {
		s.sendError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message)
		return
	}

	// Notifications are acknowledged without dispatch or response body.
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("accepted notification", "method", req.Method)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	s.logger.Debug("MCP request", "method", req.Method)

	switch req.Method {
	case "initialize":
		s.handleInitialize(w, req)
	case "tools/list":
		s.handleToolsList(w, req)
	case "tools/call":
		s.handleToolsCall(ctx, w, req)
	case "resources/list":
		s.handleResourcesList(w, req)
	case "resources/read":
		s.handleResourcesRead(w, req)
	case "prompts/list":
		s.handlePromptsList(w, req)
	case "prompts/get":
		s.handlePromptsGet(w, req)
	default:
		s.sendError(w, http.StatusOK, req.ID, CodeMethodNotFound, "method not found: "+req.Method)
	}
}

// authenticate extracts and validates the bearer token, returning a context
// carrying the verified identity. A missing header and an invalid token are
// distinct outcomes; both reject the request with HTTP 401.
func (s *Server) authenticate(r *http.Request) (context.Context, *JSONRPCError) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			s.logger.Warn("request without credentials", "remote_addr", r.RemoteAddr)
			return nil, &JSONRPCError{Code: CodeAuthRequired, Message: "authentication required"}
		}
		s.logger.Warn("malformed authorization header", "remote_addr", r.RemoteAddr)
		return nil, &JSONRPCError{Code: CodeInvalidToken, Message: "invalid authentication token"}
	}

	identity, err := s.validator.Validate(token)
	if err != nil {
		s.logger.Warn("token rejected", "remote_addr", r.RemoteAddr, "error", err)
		return nil, &JSONRPCError{Code: CodeInvalidToken, Message: "invalid authentication token"}
	}

	return auth.WithIdentity(r.Context(), identity), nil
}

// handleInitialize answers the MCP handshake.
func (s *Server) handleInitialize(w http.ResponseWriter, req JSONRPCRequest) {
	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
			"prompts":   map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	}
	s.sendResult(w, req.ID, result)
}

// sendResult sends a successful JSON-RPC response, echoing the request id.
func (s *Server) sendResult(w http.ResponseWriter, id json.RawMessage, result any) {
	s.writeResponse(w, http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      normalizeID(id),
		Result:  result,
	})
}

// sendError sends a JSON-RPC error response with the given HTTP status.
func (s *Server) sendError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string) {
	s.writeResponse(w, status, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      normalizeID(id),
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
	})
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, resp JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// normalizeID maps an absent id to explicit null so responses always carry
// the id field; present ids pass through byte-for-byte.
func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
