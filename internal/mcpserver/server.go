package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/logger"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures the tools exposed by a Server.
type Options struct {
	VerifyDuration   time.Duration // total used by wizard-start-verification when none is given
	MaxArtifactBytes int64         // upper bound for decoded artifacts, 0 means no limit

	// Optional observers, called after the transition with the new state.
	// They run with the session locked and must not call back into the Server.
	OnComplete func(flow.Snapshot)
	OnReset    func(flow.Snapshot)
}

// Server exposes one onboarding session over MCP. Remote clients drive the
// flow.Controller through tools; calls are serialized so the controller sees
// one event at a time.
type Server struct {
	ctrl       *flow.Controller
	opts       Options
	id         string
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server // Standard HTTP server that uses the listener
	port       int
	mu         sync.Mutex // guards the HTTP lifecycle
	ctrlMu     sync.Mutex // guards ctrl
}

// New creates a new MCP server instance for ctrl.
// The server is not started until Start() is called.
func New(ctrl *flow.Controller, opts Options) *Server {
	s := &Server{
		ctrl: ctrl,
		opts: opts,
		id:   uuid.NewString(),
	}
	s.mcpServer = server.NewMCPServer(
		"onboard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ID identifies the hosted session in tool output and logs.
func (s *Server) ID() string {
	return s.id
}

// Start starts the MCP HTTP server on addr ("127.0.0.1:0" picks a free port).
// Returns the port number or an error if startup fails.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Stateless: every request carries the whole call, the session lives in ctrl
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = mcpHandler

	logger.Info("MCP server for session %s listening on port %d", s.id, s.port)

	// Capture stdServer reference for goroutine to avoid race with Stop()
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	return s.port, nil
}

// Stop stops the MCP HTTP server and cleans up resources.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil // Already stopped
	}

	logger.Debug("Stopping MCP server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.stdServer.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
