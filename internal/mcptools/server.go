package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server exposing the class diagram tools.
func NewMCPServer(svc *ClassService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cppuml",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_project",
		Description: "Parse the C++ headers and sources under a directory and build the class model. Replaces any previously parsed project. Returns class and edge counts plus parse diagnostics.",
	}, svc.ParseProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_classes",
		Description: "Search parsed classes by case-insensitive name substring. Returns declaring file, line and member counts.",
	}, svc.ListClasses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_diagram",
		Description: "Render a PlantUML class diagram of the classes within a number of relationship hops of a start class. Relationships are followed in both directions.",
	}, svc.RenderDiagram)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_selected",
		Description: "Render a PlantUML class diagram of exactly the named classes and the relationships among them.",
	}, svc.RenderSelected)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_hierarchy",
		Description: "Return every direct and indirect base class and subclass of a class, plus the root classes of the inheritance forest.",
	}, svc.GetHierarchy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_relations",
		Description: "List the relationships a class owns (outgoing) or is the target of (incoming).",
	}, svc.GetRelations)

	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, svc *ClassService) error {
	return NewMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunMCPServer starts an HTTP server exposing the class diagram tools.
func RunMCPServer(ctx context.Context, svc *ClassService, addr string) error {
	server := NewMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
