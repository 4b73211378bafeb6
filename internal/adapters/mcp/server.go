package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/hbnb"
	"github.com/aretw0/hbnb/internal/console"
	"github.com/aretw0/hbnb/internal/logging"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ObjectsURI is the resource listing every stored object.
const ObjectsURI = "hbnb://objects"

// ConsoleResult is the structured output of the console tool.
type ConsoleResult struct {
	Output string `json:"output" jsonschema_description:"Everything the command printed"`
	Stop   bool   `json:"stop" jsonschema_description:"True if the line asked the console to exit"`
}

type consoleArgs struct {
	Line string `json:"line"`
}

// Server exposes the console and the object store as an MCP Server.
type Server struct {
	store     console.Store
	registry  *models.Registry
	recorder  console.Recorder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRecorder reports console tool commands to r.
func WithRecorder(r console.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(store console.Store, registry *models.Registry, opts ...Option) *Server {
	s := &Server{
		store:     store,
		registry:  registry,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("hbnb-mcp", strings.TrimSpace(hbnb.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		if err := <-serverErrors; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: console
	consoleTool := mcp.NewTool("console",
		mcp.WithDescription("Run one HBNB console line, e.g. `create User`, `User.all()` or `update User <id> name \"Bob\"`."),
		mcp.WithString("line", mcp.Required(), mcp.Description("The command line to execute")),
		mcp.WithOutputSchema[ConsoleResult](),
	)
	s.mcpServer.AddTool(consoleTool, mcp.NewStructuredToolHandler(s.handleConsole))

	// TOOL: count
	countTool := mcp.NewTool("count",
		mcp.WithDescription("Count the stored instances of a class."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Class name, e.g. User")),
	)
	s.mcpServer.AddTool(countTool, s.handleCount)
}

func (s *Server) handleConsole(ctx context.Context, _ mcp.CallToolRequest, args consoleArgs) (ConsoleResult, error) {
	var out bytes.Buffer
	opts := []console.Option{
		console.WithOutput(&out),
		console.WithInput(strings.NewReader("")),
		console.WithPrompt(""),
		console.WithLogger(s.logger),
	}
	if s.recorder != nil {
		opts = append(opts, console.WithRecorder(s.recorder))
	}

	stop, err := console.New(s.store, s.registry, opts...).Exec(ctx, args.Line)
	if err != nil {
		s.logger.Error("MCP console: command failed", "line", args.Line, "err", err)
		return ConsoleResult{}, fmt.Errorf("command failed: %w", err)
	}
	return ConsoleResult{Output: out.String(), Stop: stop}, nil
}

func (s *Server) handleCount(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := request.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.registry.Has(class) {
		return mcp.NewToolResultError(console.MsgClassUnknown), nil
	}
	return mcp.NewToolResultText(strconv.Itoa(s.store.Count(class))), nil
}

func (s *Server) registerResources() {
	// EXPOSE: hbnb://objects
	s.mcpServer.AddResource(mcp.NewResource(ObjectsURI, "Stored objects",
		mcp.WithResourceDescription("Every stored object, serialised as in file.json"),
		mcp.WithMIMEType("application/json"),
	), s.readObjects)
}

func (s *Server) readObjects(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	objects := make(map[string]map[string]any)
	for _, obj := range s.store.All("") {
		objects[obj.Key()] = obj.ToMap()
	}
	jsonBytes, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode objects: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ObjectsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
