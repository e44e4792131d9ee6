// ABOUTME: HTTP server assembly and lifecycle for the tax gateway
// ABOUTME: Wires discovery, health, and MCP routes; blocks in Run until canceled

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/taxhelper/tax-gateway/internal/mcp"
)

// Config holds everything the HTTP server needs.
type Config struct {
	HTTPAddr       string
	MCP            *mcp.Server
	AllowedOrigins []string
	Logger         *slog.Logger
	Name           string
	Version        string
	Pinger         Pinger
}

// Pinger reports backing-store health for the /healthz endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server owns the HTTP listener and route table.
type Server struct {
	httpServer *http.Server
	addr       string
	logger     *slog.Logger
	name       string
	version    string
	mcpServer  *mcp.Server
	pinger     Pinger
}

// New builds the server with the full middleware chain applied.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:      cfg.HTTPAddr,
		logger:    logger.With("component", "server"),
		name:      cfg.Name,
		version:   cfg.Version,
		mcpServer: cfg.MCP,
		pinger:    cfg.Pinger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDiscovery)
	mux.HandleFunc("/healthz", s.handleHealth)
	cfg.MCP.RegisterRoutes(mux)

	handler := requestLogging(s.logger,
		securityHeaders(
			corsMiddleware(cfg.AllowedOrigins, mux)))

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context since the run context is already
// canceled by the time shutdown starts.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleDiscovery serves an unauthenticated service descriptor at the root.
// Nothing tenant-scoped is exposed here.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body := map[string]any{
		"status":   "ok",
		"name":     s.name,
		"version":  s.version,
		"protocol": mcp.ProtocolVersion,
		"endpoint": "/mcp",
		"methods":  s.mcpServer.Methods(),
		"tools":    s.mcpServer.ToolNames(),
	}
	writeJSON(w, http.StatusOK, body)
}

// handleHealth reports liveness plus backing-store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	body := map[string]any{"status": "ok"}
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("health check: store unreachable", "error", err)
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "store": "unreachable"}
		} else {
			body["store"] = "ok"
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
