package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/platform/geometry"
	"github.com/coplay/scene-mcp/internal/scene"
)

// EntityCreateInput represents the MCP tool input for entity creation.
type EntityCreateInput struct {
	Name   string `json:"name" jsonschema:"display name for the new entity"`
	Parent string `json:"parent,omitempty" jsonschema:"optional parent entity reference; root when omitted"`
}

// EntityCreateResult represents the MCP tool output for entity creation.
type EntityCreateResult struct {
	Message    string `json:"message" jsonschema:"human-readable confirmation"`
	Name       string `json:"name" jsonschema:"entity display name"`
	InstanceID int64  `json:"instanceID" jsonschema:"entity instance identifier"`
	Path       string `json:"path" jsonschema:"hierarchical path of the entity"`
}

// EntityDeleteInput represents the MCP tool input for entity deletion.
type EntityDeleteInput struct {
	Target       string `json:"target" jsonschema:"entity to delete (name, path, or instance id)"`
	SearchMethod string `json:"search_method,omitempty" jsonschema:"resolution strategy (by_id, by_name, by_path)"`
}

// EntityDeleteResult represents the MCP tool output for entity deletion.
type EntityDeleteResult struct {
	Message string `json:"message" jsonschema:"human-readable confirmation"`
	Removed int    `json:"removed" jsonschema:"number of entities removed including descendants"`
}

// EntityFindInput represents the MCP tool input for entity resolution.
type EntityFindInput struct {
	Target       string `json:"target" jsonschema:"entity reference (name, path, or instance id)"`
	SearchMethod string `json:"search_method,omitempty" jsonschema:"resolution strategy (by_id, by_name, by_path)"`
}

// EntityFindResult represents the MCP tool output for entity resolution.
type EntityFindResult struct {
	Name       string     `json:"name" jsonschema:"entity display name"`
	InstanceID int64      `json:"instanceID" jsonschema:"entity instance identifier"`
	Path       string     `json:"path" jsonschema:"hierarchical path of the entity"`
	Position   [3]float64 `json:"position" jsonschema:"world position"`
	Rotation   [3]float64 `json:"rotation" jsonschema:"orientation as Euler angles in degrees"`
	Scale      [3]float64 `json:"scale" jsonschema:"local scale"`
}

// EntityCreateTool defines the MCP tool schema for entity creation.
func EntityCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_create",
		Description: "Creates a new entity in the scene, optionally under a parent entity",
	}
}

// EntityDeleteTool defines the MCP tool schema for entity deletion.
func EntityDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_delete",
		Description: "Deletes an entity and its descendants from the scene as one undoable step",
	}
}

// EntityFindTool defines the MCP tool schema for entity resolution.
func EntityFindTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_find",
		Description: "Resolves an entity reference and returns its identity and transform",
	}
}

// EntityCreateHandler executes an entity creation request.
func EntityCreateHandler(sc Scene) mcp.ToolHandlerFor[EntityCreateInput, EntityCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityCreateInput) (*mcp.CallToolResult, EntityCreateResult, error) {
		var parentID int64
		if parent := strings.TrimSpace(input.Parent); parent != "" {
			ent, ok := sc.Resolve(parent, "")
			if !ok {
				return nil, EntityCreateResult{}, fmt.Errorf("parent entity %q not found", parent)
			}
			parentID = ent.ID
		}

		ent, err := sc.Create(input.Name, parentID)
		if err != nil {
			return nil, EntityCreateResult{}, fmt.Errorf("entity create failed: %w", err)
		}

		path := sc.Path(ent.ID)
		return nil, EntityCreateResult{
			Message:    fmt.Sprintf("Created '%s' (id %d).", ent.Name, ent.ID),
			Name:       ent.Name,
			InstanceID: ent.ID,
			Path:       path,
		}, nil
	}
}

// EntityDeleteHandler executes an entity deletion request.
func EntityDeleteHandler(sc Scene) mcp.ToolHandlerFor[EntityDeleteInput, EntityDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityDeleteInput) (*mcp.CallToolResult, EntityDeleteResult, error) {
		ent, ok := resolveTarget(sc, input.Target, input.SearchMethod)
		if !ok {
			return nil, EntityDeleteResult{}, targetNotFound(input.Target, input.SearchMethod)
		}

		removed, err := sc.Remove(ent.ID)
		if err != nil {
			return nil, EntityDeleteResult{}, fmt.Errorf("entity delete failed: %w", err)
		}
		return nil, EntityDeleteResult{
			Message: fmt.Sprintf("Deleted '%s' (%d entities).", ent.Name, removed),
			Removed: removed,
		}, nil
	}
}

// EntityFindHandler executes an entity resolution request.
func EntityFindHandler(sc Scene) mcp.ToolHandlerFor[EntityFindInput, EntityFindResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityFindInput) (*mcp.CallToolResult, EntityFindResult, error) {
		ent, ok := resolveTarget(sc, input.Target, input.SearchMethod)
		if !ok {
			return nil, EntityFindResult{}, targetNotFound(input.Target, input.SearchMethod)
		}
		return nil, entityFindResult(sc, ent), nil
	}
}

func entityFindResult(sc Scene, ent scene.Entity) EntityFindResult {
	return EntityFindResult{
		Name:       ent.Name,
		InstanceID: ent.ID,
		Path:       sc.Path(ent.ID),
		Position:   [3]float64{ent.Position.X(), ent.Position.Y(), ent.Position.Z()},
		Rotation:   geometry.EulerDegrees(ent.Rotation),
		Scale:      [3]float64{ent.Scale.X(), ent.Scale.Y(), ent.Scale.Z()},
	}
}

// resolveTarget resolves a target reference with a trimmed strategy token.
func resolveTarget(sc Scene, target, method string) (scene.Entity, bool) {
	return sc.Resolve(target, strings.TrimSpace(method))
}

// targetNotFound builds the failure for an unresolvable primary target,
// naming the reference and the strategy that was used.
func targetNotFound(target, method string) error {
	label := strings.TrimSpace(method)
	if label == "" {
		label = "default"
	}
	return fmt.Errorf("target entity %q not found using search method %q", target, label)
}
