package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistoryInput represents the (empty) MCP tool input for undo and redo.
type HistoryInput struct{}

// HistoryResult represents the MCP tool output for undo and redo.
type HistoryResult struct {
	Message string `json:"message" jsonschema:"human-readable confirmation"`
	Applied bool   `json:"applied" jsonschema:"whether a history step existed to apply"`
	Label   string `json:"label,omitempty" jsonschema:"label of the mutation that was reversed or reapplied"`
}

// UndoTool defines the MCP tool schema for undo.
func UndoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_undo",
		Description: "Reverses the most recent scene mutation",
	}
}

// RedoTool defines the MCP tool schema for redo.
func RedoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_redo",
		Description: "Reapplies the most recently undone scene mutation",
	}
}

// UndoHandler executes an undo request.
func UndoHandler(sc Scene) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ HistoryInput) (*mcp.CallToolResult, HistoryResult, error) {
		label, ok := sc.Undo()
		if !ok {
			return nil, HistoryResult{Message: "Nothing to undo."}, nil
		}
		return nil, HistoryResult{
			Message: fmt.Sprintf("Undid %s.", label),
			Applied: true,
			Label:   label,
		}, nil
	}
}

// RedoHandler executes a redo request.
func RedoHandler(sc Scene) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ HistoryInput) (*mcp.CallToolResult, HistoryResult, error) {
		label, ok := sc.Redo()
		if !ok {
			return nil, HistoryResult{Message: "Nothing to redo."}, nil
		}
		return nil, HistoryResult{
			Message: fmt.Sprintf("Redid %s.", label),
			Applied: true,
			Label:   label,
		}, nil
	}
}
