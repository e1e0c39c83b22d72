// Package mcptools exposes the element locator, the patch generator and the
// utility-class mapper as MCP tools so coding agents can drive visual edits.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conneroisu/vedit/internal/jsx"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/patch"
	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/conneroisu/vedit/internal/version"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolLocateElement   = "locate_element"
	ToolApplyVisualEdit = "apply_visual_edit"
	ToolMapTailwind     = "map_tailwind_class"
)

// Toolset holds the state the tool handlers share.
type Toolset struct {
	generator *patch.Generator
	logger    logging.Logger
}

// New creates a toolset. A nil logger discards output.
func New(logger logging.Logger) *Toolset {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Toolset{
		generator: patch.NewGenerator(logger),
		logger:    logger.WithComponent("mcp"),
	}
}

// NewServer returns an MCP server with every tool registered.
func NewServer(logger logging.Logger) *server.MCPServer {
	srv := server.NewMCPServer("vedit", version.GetVersion(), server.WithToolCapabilities(true))
	New(logger).Register(srv)
	return srv
}

// ServeStdio runs the MCP server on stdin and stdout until the peer closes.
func ServeStdio(logger logging.Logger) error {
	return server.ServeStdio(NewServer(logger))
}

// Register adds the tools to srv.
func (ts *Toolset) Register(srv *server.MCPServer) {
	srv.AddTool(mcplib.NewTool(ToolLocateElement,
		mcplib.WithDescription(`Locate the JSX element whose opening tag starts on a line of a source file.

Returns the element's opening tag, tag name, the 0-based line span and the
line of its closing tag (-1 when self-closing). When the line holds no
element, up to five preceding lines are tried.`),
		mcplib.WithString("code",
			mcplib.Required(),
			mcplib.Description("Full source text of the file"),
		),
		mcplib.WithNumber("line",
			mcplib.Required(),
			mcplib.Description("1-based line of the element's opening tag"),
		),
	), ts.handleLocate)

	srv.AddTool(mcplib.NewTool(ToolApplyVisualEdit,
		mcplib.WithDescription(`Apply style or text changes to one JSX element and return the updated file.

changes is a JSON array of {"property","oldValue","newValue","useTailwind"}.
Properties are camelCase CSS names, or "textContent" for text. With
useTailwind the change becomes a utility class; otherwise it is written to
the inline style. Bytes outside the element are never modified.`),
		mcplib.WithString("code",
			mcplib.Required(),
			mcplib.Description("Full source text of the file"),
		),
		mcplib.WithNumber("line",
			mcplib.Required(),
			mcplib.Description("1-based line of the element's opening tag"),
		),
		mcplib.WithString("changes",
			mcplib.Required(),
			mcplib.Description("JSON array of style changes"),
		),
		mcplib.WithString("file",
			mcplib.Description("Source file name, used in logs only"),
		),
	), ts.handleApplyVisualEdit)

	srv.AddTool(mcplib.NewTool(ToolMapTailwind,
		mcplib.WithDescription(`Map a CSS property and value to the Tailwind utility class that expresses it.

Known scale values map to scale classes (16px margin-top is mt-4) and
colors use arbitrary values such as text-[#3b82f6]. Values with no utility
equivalent are reported as errors.`),
		mcplib.WithString("property",
			mcplib.Required(),
			mcplib.Description("camelCase CSS property, for example marginTop"),
		),
		mcplib.WithString("value",
			mcplib.Required(),
			mcplib.Description("CSS value, for example 16px"),
		),
	), ts.handleMapTailwind)
}

func (ts *Toolset) handleLocate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	line := request.GetInt("line", 0)
	if line <= 0 {
		return mcplib.NewToolResultError("line must be a positive integer"), nil
	}

	loc := jsx.FindElementInText(code, line)
	if !loc.Found() {
		return mcplib.NewToolResultError(fmt.Sprintf("no element found at line %d", line)), nil
	}
	return jsonResult(loc)
}

func (ts *Toolset) handleApplyVisualEdit(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	line := request.GetInt("line", 0)
	if line <= 0 {
		return mcplib.NewToolResultError("line must be a positive integer"), nil
	}
	rawChanges, err := request.RequireString("changes")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	var changes []types.StyleChange
	if err := json.Unmarshal([]byte(rawChanges), &changes); err != nil {
		return mcplib.NewToolResultError(fmt.Sprintf("changes is not a JSON array of style changes: %v", err)), nil
	}

	result := ts.generator.GenerateSearchReplaceEdit(code, "", changes, request.GetString("file", ""), line)
	ts.logger.Debug(ctx, "Visual edit tool called", "line", line, "changes", len(changes), "success", result.Success)
	if !result.Success {
		return mcplib.NewToolResultError(result.Error), nil
	}
	return jsonResult(result)
}

func (ts *Toolset) handleMapTailwind(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	property, err := request.RequireString("property")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	class, ok := tailwind.MapToUtilityClass(property, value)
	if !ok {
		return mcplib.NewToolResultError(fmt.Sprintf("no utility class for %s: %s", property, value)), nil
	}
	return mcplib.NewToolResultText(class), nil
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcplib.NewToolResultText(string(data)), nil
}
