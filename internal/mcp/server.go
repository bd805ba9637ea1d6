package mcp

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flatq/internal/config"
	flqdebug "github.com/standardbeagle/flatq/internal/debug"
	"github.com/standardbeagle/flatq/internal/semantic"
	"github.com/standardbeagle/flatq/internal/version"
)

// Server exposes flatten, inflate and search as MCP tools over stdio.
type Server struct {
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
	splitter         *semantic.WordSplitter
}

// NewServer creates a new MCP server. A nil cfg uses the defaults.
func NewServer(cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewWriterLogger(io.Discard)
	}

	s := &Server{
		cfg:              cfg,
		diagnosticLogger: logger,
		splitter:         semantic.NewWordSplitterWithSize(cfg.Tokenizer.CacheSize),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "flatq-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized (separator %q)", cfg.Codec.Separator)
	return s, nil
}

// documentSchema is shared by every tool that reads a document.
func documentSchema() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"document": {
			Description: "Inline JSON document (object or array)",
		},
		"text": {
			Type:        "string",
			Description: "Document source text, decoded with 'format'",
		},
		"path": {
			Type:        "string",
			Description: "File to load; format comes from the extension unless 'format' is set",
		},
		"format": {
			Type:        "string",
			Description: "json, yaml or toml",
			Enum:        []any{"json", "yaml", "toml"},
		},
		"separator": {
			Type:        "string",
			Description: "Path separator (default from config, usually '.')",
		},
	}
}

func withProps(base map[string]*jsonschema.Schema, extra map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func filterSchema() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"path_glob": {
			Type:        "string",
			Description: "Doublestar glob over path segments joined with '/', e.g. 'users/*/email'",
		},
		"where": {
			Type:        "string",
			Description: "expr-lang boolean over key, value, text, kind, segments, depth",
		},
	}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version and a summary of the available tools.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "flatten",
		Description: getOperationHelp("flatten"),
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: withProps(documentSchema(), map[string]*jsonschema.Schema{
				"preserve_empty": {Type: "boolean", Description: "Keep empty objects and arrays as leaves"},
				"strict":         {Type: "boolean", Description: "Reject keys that contain the separator"},
			}),
		},
	}, s.handleFlatten)

	s.server.AddTool(&mcp.Tool{
		Name:        "inflate",
		Description: getOperationHelp("inflate"),
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"flat"},
			Properties: map[string]*jsonschema.Schema{
				"flat": {
					Type:        "object",
					Description: "Flat object of path -> scalar value",
				},
				"separator": {Type: "string", Description: "Path separator"},
				"strict":    {Type: "boolean", Description: "Fail instead of dropping fields when an object becomes an array"},
			},
		},
	}, s.handleInflate)

	s.server.AddTool(&mcp.Tool{
		Name:        "search_keyword",
		Description: getOperationHelp("search_keyword"),
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"keyword"},
			Properties: withProps(withProps(documentSchema(), filterSchema()), map[string]*jsonschema.Schema{
				"keyword":        {Type: "string", Description: "Text to look for"},
				"case_sensitive": {Type: "boolean", Description: "Default from config (true)"},
				"fuzzy":          {Type: "boolean", Description: "Close matches against path segments or value words"},
				"keys_only":      {Type: "boolean", Description: "Only match paths"},
				"values_only":    {Type: "boolean", Description: "Only match values"},
			}),
		},
	}, s.handleSearchKeyword)

	s.server.AddTool(&mcp.Tool{
		Name:        "search_query",
		Description: getOperationHelp("search_query"),
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"query"},
			Properties: withProps(withProps(documentSchema(), filterSchema()), map[string]*jsonschema.Schema{
				"query":          {Type: "string", Description: "Whitespace separated words"},
				"case_sensitive": {Type: "boolean", Description: "Default from config (true)"},
				"fuzzy":          {Type: "boolean", Description: "Count close matches"},
				"stem":           {Type: "boolean", Description: "Count words sharing a stem"},
				"max_results":    {Type: "integer", Description: "Cap on results, 0 for unlimited"},
			}),
		},
	}, s.handleSearchQuery)

	s.server.AddTool(&mcp.Tool{
		Name:        "tokenize",
		Description: getOperationHelp("tokenize"),
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"words"},
			Properties: map[string]*jsonschema.Schema{
				"words": {
					Type:        "array",
					Description: "Identifiers to split",
					Items:       &jsonschema.Schema{Type: "string"},
				},
			},
		},
	}, s.handleTokenize)

	s.server.AddTool(&mcp.Tool{
		Name:        "roundtrip",
		Description: getOperationHelp("roundtrip"),
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: documentSchema(),
		},
	}, s.handleRoundtrip)
}

// recoverFromPanic runs handler, turning panics and errors into tool error results
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("internal error: %v", r)
			s.diagnosticLogger.LogCall(operation, 0, panicErr)
			s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())
			result, err = createErrorResponse(operation, panicErr)
		}
	}()

	start := time.Now()
	result, err = handler()
	took := time.Since(start)
	s.diagnosticLogger.LogCall(operation, took, err)
	if err != nil {
		return createSmartErrorResponse(operation, err, map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
	flqdebug.LogMCP("%s took %s\n", operation, took)
	return result, nil
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tools := map[string]string{}
	for _, name := range []string{"flatten", "inflate", "search_keyword", "search_query", "tokenize", "roundtrip"} {
		tools[name] = getOperationHelp(name)
	}
	return createJSONResponse(map[string]interface{}{
		"server_name":     "flatq-mcp-server",
		"server_version":  version.FullInfo(),
		"build_id":        version.BuildID(),
		"go_version":      runtime.Version(),
		"platform":        runtime.GOOS + "/" + runtime.GOARCH,
		"separator":       s.cfg.Codec.Separator,
		"tools":           tools,
		"calls":           s.diagnosticLogger.Stats(),
		"tokenizer_cache": s.splitter.CacheStats(),
	})
}

// Start serves MCP over stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	flqdebug.SetMCPMode(true)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown flushes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("MCP server shutdown complete, log at %s", s.diagnosticLogger.Path())
	return s.diagnosticLogger.Close()
}
