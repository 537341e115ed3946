package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/cli-mcp-go/internal/catalog"
	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
)

const (
	// SchemaURI is the URI of the schema resource.
	SchemaURI = "cli://schema"

	schemaMIMEType = "application/json"
)

// Config configures a Server.
type Config struct {
	// Logger receives local debug output. If nil, the server is silent.
	Logger *slog.Logger

	// Name, Title and Version describe the server in the initialize result.
	Name    string
	Title   string
	Version string

	Catalog *catalog.Catalog

	// Handler executes every tool call.
	Handler mcp.ToolHandler

	// LogChannel, when set, is forwarded to the client and enables the
	// log interpretation instructions.
	LogChannel *logging.Channel
}

// Server wraps the protocol server for one CLI.
type Server struct {
	log        *slog.Logger
	server     *mcp.Server
	logs       *logging.Channel
	schemaJSON []byte
}

// NewServer creates a server exposing every tool in cfg.Catalog.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Catalog == nil || cfg.Handler == nil {
		return nil, fmt.Errorf("mcp: catalog and handler are required")
	}

	log := logging.OrNop(cfg.Logger).With("component", "mcp_server")

	schemaJSON, err := cfg.Catalog.Schema().MarshalIndent()
	if err != nil {
		return nil, err
	}

	opts := &mcp.ServerOptions{}
	if cfg.LogChannel != nil {
		opts.Instructions = logging.Instructions
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Catalog.RootName()
	}

	s := &Server{
		log: log,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Title:   cfg.Title,
			Version: cfg.Version,
		}, opts),
		logs:       cfg.LogChannel,
		schemaJSON: schemaJSON,
	}

	for _, tool := range cfg.Catalog.Tools() {
		if err := checkOutputSchema(tool); err != nil {
			return nil, err
		}

		s.server.AddTool(tool, cfg.Handler)
	}

	s.server.AddResource(&mcp.Resource{
		URI:         SchemaURI,
		Name:        "schema",
		Title:       "CLI schema",
		Description: "JSON schema of the commands and arguments exposed as tools",
		MIMEType:    schemaMIMEType,
	}, s.readSchema)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        logging.PromptName,
		Title:       "climcp Logging Guide",
		Description: "How to interpret log messages from this server",
	}, s.loggingGuide)

	log.Debug("Server configured", "name", name, "tools", len(cfg.Catalog.Tools()))

	return s, nil
}

// checkOutputSchema rejects output schemas that clients cannot use for
// structured content.
func checkOutputSchema(tool *mcp.Tool) error {
	out, ok := tool.OutputSchema.(*jsonschema.Schema)
	if !ok || out == nil {
		return nil
	}

	if out.Type != "object" {
		return &errors.SchemaError{
			Command: tool.Name,
			Reason:  fmt.Sprintf("output schema must have type \"object\", got %q", out.Type),
		}
	}

	return nil
}

// Server returns the underlying protocol server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve runs the server on transport until the client disconnects or ctx
// is done.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	session, err := s.server.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	s.log.Debug("Client session started", "session_id", session.ID())

	g, gctx := errgroup.WithContext(ctx)

	forwardCtx, stopForward := context.WithCancel(gctx)
	defer stopForward()

	g.Go(func() error {
		defer stopForward()

		waitErr := make(chan error, 1)

		go func() { waitErr <- session.Wait() }()

		select {
		case <-ctx.Done():
			_ = session.Close()
			<-waitErr

			return ctx.Err()
		case err := <-waitErr:
			return err
		}
	})

	if s.logs != nil {
		g.Go(func() error {
			return logging.Forward(forwardCtx, s.logs, session, s.log)
		})
	}

	err = g.Wait()

	s.log.Debug("Client session ended", "error", err)

	return err
}

func (s *Server) readSchema(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != SchemaURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      SchemaURI,
			MIMEType: schemaMIMEType,
			Text:     string(s.schemaJSON),
		}},
	}, nil
}

func (s *Server) loggingGuide(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if req.Params.Name != logging.PromptName {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownPrompt, req.Params.Name)
	}

	return &mcp.GetPromptResult{
		Description: "How to interpret log messages from this server",
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: logging.Guide},
		}},
	}, nil
}
