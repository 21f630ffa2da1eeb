package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SnapshotInput represents the (empty) MCP tool input for scene save/load.
type SnapshotInput struct{}

// SnapshotResult represents the MCP tool output for scene save/load.
type SnapshotResult struct {
	Message  string `json:"message" jsonschema:"human-readable confirmation"`
	Entities int    `json:"entities" jsonschema:"number of entities in the snapshot"`
}

// SceneSaveTool defines the MCP tool schema for persisting the scene.
func SceneSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_save",
		Description: "Persists the current scene to the configured snapshot store",
	}
}

// SceneLoadTool defines the MCP tool schema for restoring the scene.
func SceneLoadTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_load",
		Description: "Replaces the current scene with the persisted snapshot; history is cleared",
	}
}

// SceneSaveHandler executes a scene save request.
func SceneSaveHandler(sc Scene, snapshots Snapshots) mcp.ToolHandlerFor[SnapshotInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotInput) (*mcp.CallToolResult, SnapshotResult, error) {
		if snapshots == nil {
			return nil, SnapshotResult{}, fmt.Errorf("no snapshot store is configured; set a scene path at startup")
		}
		entities := sc.List()
		if err := snapshots.Save(ctx, entities); err != nil {
			return nil, SnapshotResult{}, fmt.Errorf("scene save failed: %w", err)
		}
		return nil, SnapshotResult{
			Message:  fmt.Sprintf("Saved %d entities.", len(entities)),
			Entities: len(entities),
		}, nil
	}
}

// SceneLoadHandler executes a scene load request.
func SceneLoadHandler(sc Scene, snapshots Snapshots) mcp.ToolHandlerFor[SnapshotInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotInput) (*mcp.CallToolResult, SnapshotResult, error) {
		if snapshots == nil {
			return nil, SnapshotResult{}, fmt.Errorf("no snapshot store is configured; set a scene path at startup")
		}
		entities, err := snapshots.Load(ctx)
		if err != nil {
			return nil, SnapshotResult{}, fmt.Errorf("scene load failed: %w", err)
		}
		sc.Replace(entities)
		return nil, SnapshotResult{
			Message:  fmt.Sprintf("Loaded %d entities.", len(entities)),
			Entities: len(entities),
		}, nil
	}
}
