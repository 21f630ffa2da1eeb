package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/platform/config"
)

var listenTCP = net.Listen

// mcpHTTPEnv holds env-parsed configuration for MCP HTTP transport.
type mcpHTTPEnv struct {
	AllowedHosts []string `env:"SCENE_MCP_ALLOWED_HOSTS" envSeparator:","`
}

// defaultShutdownTimeout is the maximum time to wait for graceful HTTP server
// shutdown, long enough for in-flight tool calls to complete.
const defaultShutdownTimeout = 35 * time.Second

// HTTPTransport serves MCP over HTTP using the streamable transport from the
// MCP SDK. It defaults to localhost-only binding; broader access requires
// explicit host configuration.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	handler      http.Handler
	httpServer   *http.Server
}

// NewHTTPTransportWithServer creates an HTTP transport backed by a
// preconfigured MCP server. Every HTTP session shares the one server and
// therefore the one scene.
func NewHTTPTransportWithServer(addr string, server *mcp.Server) *HTTPTransport {
	// Default to localhost-only binding for security
	if addr == "" {
		addr = "localhost:8081"
	}
	var raw mcpHTTPEnv
	_ = config.ParseEnv(&raw)
	return &HTTPTransport{
		addr:         addr,
		allowedHosts: parseAllowedHosts(raw.AllowedHosts),
		handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil),
	}
}

// Start starts the HTTP server and blocks until context cancellation or a
// server error.
func (t *HTTPTransport) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", t.requireAllowedHost(t.handler))

	// GET /mcp/health - Health check endpoint
	mux.HandleFunc("/mcp/health", t.handleHealth)

	t.httpServer = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	log.Printf("Starting MCP HTTP server on %s", t.addr)

	errChan := make(chan error, 1)
	go func() {
		listener, err := listenTCP("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

// requireAllowedHost rejects requests whose Host header is neither loopback
// nor explicitly allowed, which blocks DNS-rebinding access to the local
// server.
func (t *HTTPTransport) requireAllowedHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.hostAllowed(r.Host) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *HTTPTransport) hostAllowed(hostport string) bool {
	host := strings.ToLower(strings.TrimSpace(hostport))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	_, ok := t.allowedHosts[host]
	return ok
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":%q,"version":%q}`, serverName, serverVersion)
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	allowed := make(map[string]struct{})
	for _, host := range hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		allowed[host] = struct{}{}
	}
	return allowed
}
