package mcpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/venetanji/simplemem-mcp/memoryapi"
	"github.com/venetanji/simplemem-mcp/token"
)

const (
	// TransportStdio serves the MCP protocol over stdin and stdout.
	TransportStdio = "stdio"
	// TransportStreamableHTTP serves the MCP protocol over HTTP.
	TransportStreamableHTTP = "streamable-http"
)

// TokenValidator checks bearer tokens presented on the HTTP transport.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

// MCPServer exposes the memory API as MCP tools.
type MCPServer struct {
	api       *memoryapi.Client
	mcpServer *server.MCPServer
	transport string
	validator TokenValidator
}

type Option func(*MCPServer)

// WithTokenValidator requires a valid bearer token on every HTTP request.
// It has no effect on the stdio transport.
func WithTokenValidator(v TokenValidator) Option {
	return func(m *MCPServer) { m.validator = v }
}

// New creates an MCP server forwarding tool calls to the memory API.
func New(api *memoryapi.Client, transport string, options ...Option) (*MCPServer, error) {
	if api == nil {
		return nil, errors.New("mcpserver.New memory API client is nil")
	}
	switch transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return nil, errors.Errorf("unsupported server transport: %s", transport)
	}

	mcpServer := server.NewMCPServer(
		"simplemem-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	m := &MCPServer{
		api:       api,
		mcpServer: mcpServer,
		transport: transport,
	}
	for _, option := range options {
		option(m)
	}

	m.registerTools()
	return m, nil
}

// Start serves the configured transport until the context is cancelled or
// the transport fails.
func (m *MCPServer) Start(ctx context.Context, listenAddr string) error {
	switch m.transport {
	case TransportStdio:
		return server.ServeStdio(m.mcpServer)
	case TransportStreamableHTTP:
		httpServer := server.NewStreamableHTTPServer(
			m.mcpServer,
			server.WithEndpointPath("/mcp"),
		)
		handler := http.Handler(httpServer)
		if m.validator != nil {
			handler = m.requireBearerToken(handler)
		}
		srv := &http.Server{Addr: listenAddr, Handler: handler}
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	default:
		return errors.Errorf("unsupported server transport: %s", m.transport)
	}
}

func (m *MCPServer) requireBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_request"`)
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Msg("rejected MCP request")
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		log.Debug().Str("client_id", claims.ClientID).Msg("authorized MCP request")
		next.ServeHTTP(w, r)
	})
}

func (m *MCPServer) registerTools() {
	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Check the health and initialization status of the memory API"),
	)
	m.mcpServer.AddTool(healthTool, m.handleHealth)

	dialogueTool := mcp.NewTool("dialogue",
		mcp.WithDescription("Add a single dialogue entry. Call finalize once after adding all entries for a batch"),
		mcp.WithString("speaker",
			mcp.Required(),
			mcp.Description("Speaker of the dialogue entry"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Content of the dialogue entry"),
		),
		mcp.WithString("timestamp",
			mcp.Description("Optional ISO-8601 timestamp of the entry"),
		),
	)
	m.mcpServer.AddTool(dialogueTool, m.handleDialogue)

	finalizeTool := mcp.NewTool("finalize",
		mcp.WithDescription("Consolidate memories after dialogue ingestion"),
	)
	m.mcpServer.AddTool(finalizeTool, m.handleFinalize)

	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Ask the memory API a semantic question and return its answer"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question to ask"),
		),
	)
	m.mcpServer.AddTool(queryTool, m.handleQuery)

	retrieveTool := mcp.NewTool("retrieve",
		mcp.WithDescription("Retrieve raw memory entries, most recent first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 100)"),
		),
	)
	m.mcpServer.AddTool(retrieveTool, m.handleRetrieve)

	statsTool := mcp.NewTool("stats",
		mcp.WithDescription("Retrieve memory statistics"),
	)
	m.mcpServer.AddTool(statsTool, m.handleStats)

	clearTool := mcp.NewTool("clear",
		mcp.WithDescription("Clear all memory entries (requires confirmation=true)"),
		mcp.WithBoolean("confirmation",
			mcp.Description("Must be true to actually clear"),
		),
	)
	m.mcpServer.AddTool(clearTool, m.handleClear)
}
