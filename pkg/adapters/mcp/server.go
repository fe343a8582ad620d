package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Editor defines the interface required by the MCP server to drive the
// editor core.
type Editor interface {
	Snapshot() *domain.ComponentNode
	InsertChild(parentID string, node *domain.ComponentNode) (string, bool)
	UpdateFields(id string, fields domain.Fields) bool
	Remove(id string) bool
	ReorderSibling(id string, dir domain.Direction) bool
	MoveTo(dragID, targetID string, index int) bool
	SetContextValue(key string, value any)
	Context() map[string]any
	Document() *domain.Document
	Trigger(ctx context.Context, nodeID, event string, local map[string]any) error
}

// EditResult reports whether a structural edit applied, aligned with the HTTP
// adapter's response shape.
type EditResult struct {
	Applied bool   `json:"applied" jsonschema_description:"Whether the edit was applied"`
	ID      string `json:"id,omitempty" jsonschema_description:"The id of the affected node"`
}

// TriggerResult carries the runtime context after an event's action list
// settled.
type TriggerResult struct {
	Context map[string]any `json:"context" jsonschema_description:"The runtime data context after the trigger"`
}

// Server wraps the editor and exposes it as an MCP server, so agent hosts can
// drive structural edits and event triggers as tools.
type Server struct {
	editor    Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, version string) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("arbor-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: get_tree
	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the full component tree of the current page."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.editor.Snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: insert_component
	insertTool := mcp.NewTool("insert_component",
		mcp.WithDescription("Insert a component as the last child of a container node. Inserting into a leaf or unknown parent is a no-op."),
		mcp.WithString("parent_id", mcp.Required(), mcp.Description("Id of the container to insert into")),
		mcp.WithString("node", mcp.Required(), mcp.Description("JSON object describing the component (kind, label, props, style, events)")),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(insertTool, mcp.NewStructuredToolHandler(s.handleInsert))

	// TOOL: update_component
	updateTool := mcp.NewTool("update_component",
		mcp.WithDescription("Replace fields of a component wholesale. Absent fields are left untouched; id, kind and children cannot be changed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the component to update")),
		mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object with any of: label, props, style, events")),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdate))

	// TOOL: remove_component
	removeTool := mcp.NewTool("remove_component",
		mcp.WithDescription("Remove a component and its subtree. The page root cannot be removed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the component to remove")),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(removeTool, mcp.NewStructuredToolHandler(s.handleRemove))

	// TOOL: reorder_component
	reorderTool := mcp.NewTool("reorder_component",
		mcp.WithDescription("Swap a component with its previous or next sibling. At either end of the list this is a no-op."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the component to reorder")),
		mcp.WithString("direction", mcp.Required(), mcp.Description("\"up\" or \"down\"")),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(reorderTool, mcp.NewStructuredToolHandler(s.handleReorder))

	// TOOL: move_component
	moveTool := mcp.NewTool("move_component",
		mcp.WithDescription("Move a component under a new container at a clamped position. Moving a node into its own subtree is rejected."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the component to move")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Id of the destination container")),
		mcp.WithNumber("index", mcp.Description("Insertion position, clamped into range (default 0)")),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(moveTool, mcp.NewStructuredToolHandler(s.handleMove))

	// TOOL: set_context
	setContextTool := mcp.NewTool("set_context",
		mcp.WithDescription("Assign a top-level key in the runtime data context."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Target context key, used verbatim")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON value to assign")),
		mcp.WithOutputSchema[TriggerResult](),
	)
	s.mcpServer.AddTool(setContextTool, mcp.NewStructuredToolHandler(s.handleSetContext))

	// TOOL: trigger_event
	triggerTool := mcp.NewTool("trigger_event",
		mcp.WithDescription("Fire a component event, running its action list in declared order."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Id of the component owning the event")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name, e.g. onClick")),
		mcp.WithString("local", mcp.Description("JSON object used as the event-local context (optional)")),
		mcp.WithOutputSchema[TriggerResult](),
	)
	s.mcpServer.AddTool(triggerTool, mcp.NewStructuredToolHandler(s.handleTrigger))

	// TOOL: export_document
	s.mcpServer.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Export the current page as a versioned document."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.editor.Document().Marshal()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleInsert(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	parentID, _ := args["parent_id"].(string)
	nodeJSON, _ := args["node"].(string)

	var node domain.ComponentNode
	if err := json.Unmarshal([]byte(nodeJSON), &node); err != nil {
		return EditResult{}, fmt.Errorf("invalid node JSON: %w", err)
	}

	id, applied := s.editor.InsertChild(parentID, &node)
	return EditResult{Applied: applied, ID: id}, nil
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	id, _ := args["id"].(string)
	fieldsJSON, _ := args["fields"].(string)

	var fields struct {
		Label  *string                    `json:"label"`
		Props  map[string]any             `json:"props"`
		Style  map[string]any             `json:"style"`
		Events map[string][]domain.Action `json:"events"`
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return EditResult{}, fmt.Errorf("invalid fields JSON: %w", err)
	}

	applied := s.editor.UpdateFields(id, domain.Fields{
		Label:  fields.Label,
		Props:  fields.Props,
		Style:  fields.Style,
		Events: fields.Events,
	})
	return EditResult{Applied: applied, ID: id}, nil
}

func (s *Server) handleRemove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	id, _ := args["id"].(string)
	return EditResult{Applied: s.editor.Remove(id), ID: id}, nil
}

func (s *Server) handleReorder(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	id, _ := args["id"].(string)
	direction, _ := args["direction"].(string)

	dir := domain.Direction(direction)
	if dir != domain.DirectionUp && dir != domain.DirectionDown {
		return EditResult{}, fmt.Errorf("direction must be %q or %q", domain.DirectionUp, domain.DirectionDown)
	}
	return EditResult{Applied: s.editor.ReorderSibling(id, dir), ID: id}, nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	id, _ := args["id"].(string)
	targetID, _ := args["target_id"].(string)
	index := 0
	if f, ok := args["index"].(float64); ok {
		index = int(f)
	}
	return EditResult{Applied: s.editor.MoveTo(id, targetID, index), ID: id}, nil
}

func (s *Server) handleSetContext(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TriggerResult, error) {
	key, _ := args["key"].(string)
	valueJSON, _ := args["value"].(string)
	if key == "" {
		return TriggerResult{}, fmt.Errorf("key is required")
	}

	var value any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		// Not JSON: treat the raw string as the value.
		value = valueJSON
	}
	s.editor.SetContextValue(key, value)
	return TriggerResult{Context: s.editor.Context()}, nil
}

func (s *Server) handleTrigger(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TriggerResult, error) {
	nodeID, _ := args["node_id"].(string)
	event, _ := args["event"].(string)

	var local map[string]any
	if localJSON, ok := args["local"].(string); ok && localJSON != "" {
		if err := json.Unmarshal([]byte(localJSON), &local); err != nil {
			return TriggerResult{}, fmt.Errorf("invalid local context JSON: %w", err)
		}
	}

	if err := s.editor.Trigger(ctx, nodeID, event, local); err != nil {
		return TriggerResult{}, fmt.Errorf("trigger failed: %w", err)
	}
	return TriggerResult{Context: s.editor.Context()}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://document
	s.mcpServer.AddResource(mcp.NewResource("arbor://document", "Current Page Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.editor.Document().Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to export document: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://document",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
