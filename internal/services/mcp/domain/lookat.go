package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/platform/geometry"
)

// LookAtInput represents the MCP tool input for reorienting an entity.
//
// look_at_target is a union: either a world position ([x,y,z] or {x,y,z}) or
// an entity reference whose current position is substituted at resolution
// time. Disambiguation is by successful parse, not by a discriminator field.
// Camel-case aliases are accepted for both look-at fields; the snake-case
// spelling wins when both are present.
type LookAtInput struct {
	Target            string          `json:"target" jsonschema:"entity to reorient (name, hierarchical path, or instance id)"`
	SearchMethod      string          `json:"search_method,omitempty" jsonschema:"resolution strategy (by_id, by_name, by_path); defaults to id, then path, then name"`
	LookAtTarget      json.RawMessage `json:"look_at_target,omitempty" jsonschema:"world position [x,y,z] or entity reference to face"`
	LookAtTargetAlias json.RawMessage `json:"lookAtTarget,omitempty" jsonschema:"alias for look_at_target"`
	LookAtUp          json.RawMessage `json:"look_at_up,omitempty" jsonschema:"up direction [x,y,z] for roll resolution; defaults to world up (0,1,0)"`
	LookAtUpAlias     json.RawMessage `json:"lookAtUp,omitempty" jsonschema:"alias for look_at_up"`
}

// LookAtResult represents the MCP tool output for reorienting an entity.
type LookAtResult struct {
	Message        string     `json:"message" jsonschema:"human-readable confirmation"`
	Name           string     `json:"name" jsonschema:"entity display name"`
	InstanceID     int64      `json:"instanceID" jsonschema:"entity instance identifier"`
	Rotation       [3]float64 `json:"rotation" jsonschema:"resulting orientation as Euler angles in degrees"`
	LookAtPosition [3]float64 `json:"lookAtPosition" jsonschema:"resolved world position the entity now faces"`
}

// LookAtTool defines the MCP tool schema for reorienting an entity.
func LookAtTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_look_at",
		Description: "Rotates an entity so its forward axis points at a world position or at another entity",
	}
}

// LookAtHandler executes a look-at request against the scene.
func LookAtHandler(sc Scene) mcp.ToolHandlerFor[LookAtInput, LookAtResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LookAtInput) (*mcp.CallToolResult, LookAtResult, error) {
		result, err := lookAt(sc, input)
		if err != nil {
			return nil, LookAtResult{}, err
		}
		return nil, result, nil
	}
}

// lookAt resolves the target entity and the look-at specification, computes
// the orientation, and applies the single rotation write.
//
// No mutation happens until every resolution step has succeeded; failures
// surface as errors naming the step that failed. A look-at position equal to
// the entity's own position has no defined orientation, so the rotation is
// left unchanged and the current orientation is reported.
func lookAt(sc Scene, input LookAtInput) (LookAtResult, error) {
	method := strings.TrimSpace(input.SearchMethod)
	target, ok := sc.Resolve(input.Target, method)
	if !ok {
		return LookAtResult{}, targetNotFound(input.Target, method)
	}

	rawLookAt := firstPresent(input.LookAtTarget, input.LookAtTargetAlias)
	if rawAbsent(rawLookAt) {
		return LookAtResult{}, fmt.Errorf("missing required parameter look_at_target: provide a world position [x,y,z] or an entity reference")
	}

	lookAtPos, isPosition := geometry.ParseVector(rawLookAt)
	if !isPosition {
		ref, refOK := referenceFromRaw(rawLookAt)
		if refOK {
			if ent, found := sc.Resolve(ref, method); found {
				lookAtPos = ent.Position
				isPosition = true
			}
		}
		if !isPosition {
			return LookAtResult{}, fmt.Errorf("look_at_target %s is neither a world position nor a resolvable entity", compactRaw(rawLookAt))
		}
	}

	up := geometry.ParseVectorDefault(firstPresent(input.LookAtUp, input.LookAtUpAlias), geometry.WorldUp)

	rotation := target.Rotation
	if q, ok := geometry.LookRotation(lookAtPos.Sub(target.Position), up); ok {
		if err := sc.SetRotation(target.ID, q); err != nil {
			return LookAtResult{}, fmt.Errorf("apply rotation: %w", err)
		}
		rotation = q
	}

	return LookAtResult{
		Message: fmt.Sprintf("'%s' now looking at (%.2f, %.2f, %.2f).",
			target.Name, lookAtPos.X(), lookAtPos.Y(), lookAtPos.Z()),
		Name:           target.Name,
		InstanceID:     target.ID,
		Rotation:       geometry.EulerDegrees(rotation),
		LookAtPosition: [3]float64{lookAtPos.X(), lookAtPos.Y(), lookAtPos.Z()},
	}, nil
}

// firstPresent returns the first value that carries content, implementing the
// snake-case-wins precedence between a field and its camel-case alias.
func firstPresent(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if !rawAbsent(v) {
			return v
		}
	}
	return nil
}

func rawAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// referenceFromRaw extracts an entity reference from a raw JSON value. A
// string is used verbatim; a bare number is treated as an instance id.
func referenceFromRaw(raw json.RawMessage) (string, bool) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(str)
		return str, str != ""
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatInt(int64(num), 10), true
	}
	return "", false
}

// compactRaw renders a raw JSON value for an error message, bounded so giant
// inputs do not flood the failure payload.
func compactRaw(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	const limit = 120
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
