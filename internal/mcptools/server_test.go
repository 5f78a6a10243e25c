package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	svc := newTestService(t, fixtureAbsPath(t))
	server := NewMCPServer(svc)

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() { session.Close() })
	return session
}

// callTool invokes a tool and decodes its structured output into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !result.IsError {
		require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)
		raw, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return result
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"get_hierarchy",
		"get_relations",
		"list_classes",
		"parse_project",
		"render_diagram",
		"render_selected",
	}, names)
}

func TestMCPParseThenRender(t *testing.T) {
	session := setupServerClient(t)

	var parsed ParseProjectOutput
	result := callTool(t, session, "parse_project", ParseProjectInput{}, &parsed)
	require.False(t, result.IsError)
	assert.Equal(t, 11, parsed.Stats.ClassCount)

	var diagram DiagramOutput
	result = callTool(t, session, "render_diagram", map[string]any{"start": "Vehicle", "depth": 1}, &diagram)
	require.False(t, result.IsError)
	assert.Equal(t, graph.StatusOK, diagram.Status)
	assert.Equal(t, []string{"Vehicle", "Engine", "Wheel", "Car", "Garage"}, diagram.Names)
	assert.Contains(t, diagram.Markup, "Vehicle <|-- Car")

	var unknown DiagramOutput
	result = callTool(t, session, "render_diagram", RenderDiagramInput{Start: "Spaceship"}, &unknown)
	require.False(t, result.IsError)
	assert.Equal(t, graph.StatusUnknownStart, unknown.Status)
}

func TestMCPToolErrorBeforeParse(t *testing.T) {
	session := setupServerClient(t)

	result := callTool(t, session, "list_classes", ListClassesInput{Query: "Animal"}, nil)
	assert.True(t, result.IsError, "list_classes before parse_project should fail")
}

func TestMCPCallUnknownTool(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})
	// The SDK may reject the call at the protocol level or set IsError.
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
