package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/scene"
	"github.com/coplay/scene-mcp/internal/scene/storage/sqlite"
	"github.com/coplay/scene-mcp/internal/services/mcp/domain"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Scene Control MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpSceneToolsModuleName     = "scene-tools"
	mcpTransformToolsModuleName = "transform-tools"
	mcpHistoryToolsModuleName   = "history-tools"
	mcpSnapshotToolsModuleName  = "snapshot-tools"
	mcpSceneResourceModuleName  = "scene-resources"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.LookAtInput, domain.LookAtResult](),
	newMCPToolRegistrar[domain.EntityCreateInput, domain.EntityCreateResult](),
	newMCPToolRegistrar[domain.EntityDeleteInput, domain.EntityDeleteResult](),
	newMCPToolRegistrar[domain.EntityFindInput, domain.EntityFindResult](),
	newMCPToolRegistrar[domain.TransformSetInput, domain.TransformResult](),
	newMCPToolRegistrar[domain.TransformTranslateInput, domain.TransformResult](),
	newMCPToolRegistrar[domain.HistoryInput, domain.HistoryResult](),
	newMCPToolRegistrar[domain.SnapshotInput, domain.SnapshotResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(server *Server) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpSceneToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerSceneTools(registrar, server.scene)
			},
		},
		{
			name: mcpTransformToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTransformTools(registrar, server.scene)
			},
		},
		{
			name: mcpHistoryToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerHistoryTools(registrar, server.scene)
			},
		},
		{
			name: mcpSnapshotToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerSnapshotTools(registrar, server.scene, server.snapshots)
			},
		},
		{
			name: mcpSceneResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerSceneResources(registrar, server.scene)
				return nil
			},
		},
	}
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over HTTP for browser or remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP server address (e.g., "localhost:8081"). Defaults to localhost:8081 for HTTP transport.
	ScenePath string // sqlite snapshot file; snapshots are disabled when empty.
}

// Server hosts the MCP server together with the scene it manipulates.
type Server struct {
	mcpServer *mcp.Server
	scene     *scene.Store
	snapshots *sqlite.Store
}

// New creates a configured MCP server with a fresh scene. When cfg.ScenePath
// names a sqlite file, the snapshot store is opened and a persisted scene, if
// any, is restored before the server starts handling requests.
func New(cfg Config) (*Server, error) {
	server := &Server{scene: scene.NewStore()}

	if path := strings.TrimSpace(cfg.ScenePath); path != "" {
		snapshots, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store at %s: %w", path, err)
		}
		entities, err := snapshots.Load(context.Background())
		if err != nil {
			closeErr := snapshots.Close()
			if closeErr != nil {
				return nil, fmt.Errorf("load snapshot: %v; close snapshot store: %w", err, closeErr)
			}
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if len(entities) > 0 {
			server.scene.Replace(entities)
		}
		server.snapshots = snapshots
	}

	server.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	for _, module := range newMCPRegistrationModules(server) {
		if err := module.register(mcpServerRegistrationAdapter{server: server.mcpServer}); err != nil {
			closeErr := server.Close()
			if closeErr != nil {
				return nil, fmt.Errorf("register MCP module %q: %v; close snapshot store: %w", module.name, err, closeErr)
			}
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	return server, nil
}

// completionHandler handles completion/complete requests with empty results.
// Scene tools take free-form references, so there is nothing useful to offer
// until entity-name completion is wired to the store.
func completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
// It is transport-agnostic so startup can choose stdio for local tools and
// HTTP for browser/remote integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		server, err := New(cfg)
		if err != nil {
			return err
		}
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithHTTPTransport creates a server and serves it over HTTP transport.
// HTTP session handling lives in the transport; the MCP domain handlers are
// the same ones stdio uses.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	// Default to localhost-only binding for security
	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = "localhost:8081"
	}

	server, err := New(cfg)
	if err != nil {
		return err
	}
	defer server.Close()

	httpTransport := NewHTTPTransportWithServer(httpAddr, server.mcpServer)
	return httpTransport.Start(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the snapshot store held by the server.
func (s *Server) Close() error {
	if s == nil || s.snapshots == nil {
		return nil
	}
	if err := s.snapshots.Close(); err != nil {
		return err
	}
	s.snapshots = nil
	return nil
}

// serveWithTransport starts the MCP server using the provided transport.
// The server and its snapshot store share a single exit path so cleanup
// behavior is consistent for both stdio and HTTP runs.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close snapshot store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close snapshot store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
