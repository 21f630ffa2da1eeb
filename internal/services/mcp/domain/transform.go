package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/platform/geometry"
)

// TransformSetInput represents the MCP tool input for setting transform
// components. Each component is optional; absent components are untouched.
// Rotation is given as Euler angles in degrees.
type TransformSetInput struct {
	Target       string          `json:"target" jsonschema:"entity to modify (name, path, or instance id)"`
	SearchMethod string          `json:"search_method,omitempty" jsonschema:"resolution strategy (by_id, by_name, by_path)"`
	Position     json.RawMessage `json:"position,omitempty" jsonschema:"world position [x,y,z]"`
	Rotation     json.RawMessage `json:"rotation,omitempty" jsonschema:"orientation as Euler angles in degrees [x,y,z]"`
	Scale        json.RawMessage `json:"scale,omitempty" jsonschema:"local scale [x,y,z]"`
}

// TransformTranslateInput represents the MCP tool input for relative movement.
type TransformTranslateInput struct {
	Target       string          `json:"target" jsonschema:"entity to move (name, path, or instance id)"`
	SearchMethod string          `json:"search_method,omitempty" jsonschema:"resolution strategy (by_id, by_name, by_path)"`
	Offset       json.RawMessage `json:"offset" jsonschema:"world-space translation [x,y,z] added to the current position"`
}

// TransformResult represents the MCP tool output for transform changes.
type TransformResult struct {
	Message    string     `json:"message" jsonschema:"human-readable confirmation"`
	Name       string     `json:"name" jsonschema:"entity display name"`
	InstanceID int64      `json:"instanceID" jsonschema:"entity instance identifier"`
	Position   [3]float64 `json:"position" jsonschema:"resulting world position"`
	Rotation   [3]float64 `json:"rotation" jsonschema:"resulting orientation as Euler angles in degrees"`
	Scale      [3]float64 `json:"scale" jsonschema:"resulting local scale"`
}

// TransformSetTool defines the MCP tool schema for setting transform components.
func TransformSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transform_set",
		Description: "Sets an entity's position, rotation (Euler degrees), and/or scale; each component is one undoable step",
	}
}

// TransformTranslateTool defines the MCP tool schema for relative movement.
func TransformTranslateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transform_translate",
		Description: "Moves an entity by a world-space offset",
	}
}

// TransformSetHandler executes a transform set request.
func TransformSetHandler(sc Scene) mcp.ToolHandlerFor[TransformSetInput, TransformResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransformSetInput) (*mcp.CallToolResult, TransformResult, error) {
		ent, ok := resolveTarget(sc, input.Target, input.SearchMethod)
		if !ok {
			return nil, TransformResult{}, targetNotFound(input.Target, input.SearchMethod)
		}

		if !rawAbsent(input.Position) {
			pos, ok := geometry.ParseVector(input.Position)
			if !ok {
				return nil, TransformResult{}, fmt.Errorf("position %s is not a valid vector", compactRaw(input.Position))
			}
			if err := sc.SetPosition(ent.ID, pos); err != nil {
				return nil, TransformResult{}, fmt.Errorf("set position: %w", err)
			}
		}
		if !rawAbsent(input.Rotation) {
			euler, ok := geometry.ParseVector(input.Rotation)
			if !ok {
				return nil, TransformResult{}, fmt.Errorf("rotation %s is not a valid vector", compactRaw(input.Rotation))
			}
			q := geometry.QuatFromEulerDegrees([3]float64{euler.X(), euler.Y(), euler.Z()})
			if err := sc.SetRotation(ent.ID, q); err != nil {
				return nil, TransformResult{}, fmt.Errorf("set rotation: %w", err)
			}
		}
		if !rawAbsent(input.Scale) {
			scale, ok := geometry.ParseVector(input.Scale)
			if !ok {
				return nil, TransformResult{}, fmt.Errorf("scale %s is not a valid vector", compactRaw(input.Scale))
			}
			if err := sc.SetScale(ent.ID, scale); err != nil {
				return nil, TransformResult{}, fmt.Errorf("set scale: %w", err)
			}
		}

		result, err := transformResult(sc, ent.ID, "Updated")
		return nil, result, err
	}
}

// TransformTranslateHandler executes a relative movement request.
func TransformTranslateHandler(sc Scene) mcp.ToolHandlerFor[TransformTranslateInput, TransformResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransformTranslateInput) (*mcp.CallToolResult, TransformResult, error) {
		ent, ok := resolveTarget(sc, input.Target, input.SearchMethod)
		if !ok {
			return nil, TransformResult{}, targetNotFound(input.Target, input.SearchMethod)
		}

		offset, ok := geometry.ParseVector(input.Offset)
		if !ok {
			return nil, TransformResult{}, fmt.Errorf("missing required parameter offset: provide a translation [x,y,z]")
		}
		if err := sc.SetPosition(ent.ID, ent.Position.Add(offset)); err != nil {
			return nil, TransformResult{}, fmt.Errorf("set position: %w", err)
		}

		result, err := transformResult(sc, ent.ID, "Moved")
		return nil, result, err
	}
}

// transformResult re-reads the entity and builds the shared transform payload.
func transformResult(sc Scene, id int64, verb string) (TransformResult, error) {
	ent, ok := sc.Get(id)
	if !ok {
		return TransformResult{}, fmt.Errorf("entity %d vanished during mutation", id)
	}
	return TransformResult{
		Message:    fmt.Sprintf("%s '%s'.", verb, ent.Name),
		Name:       ent.Name,
		InstanceID: ent.ID,
		Position:   [3]float64{ent.Position.X(), ent.Position.Y(), ent.Position.Z()},
		Rotation:   geometry.EulerDegrees(ent.Rotation),
		Scale:      [3]float64{ent.Scale.X(), ent.Scale.Y(), ent.Scale.Z()},
	}, nil
}
