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

// EntityListEntry represents a readable scene entity record.
type EntityListEntry struct {
	InstanceID int64      `json:"instanceID"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	ParentID   int64      `json:"parentID,omitempty"`
	Position   [3]float64 `json:"position"`
	Rotation   [3]float64 `json:"rotation"`
	Scale      [3]float64 `json:"scale"`
}

// EntityListPayload represents the MCP resource payload for scene listings.
type EntityListPayload struct {
	Entities []EntityListEntry `json:"entities"`
}

// EntityPayload represents the MCP resource payload for a single entity.
type EntityPayload struct {
	Entity EntityListEntry `json:"entity"`
}

// EntityListResource defines the readable scene listing resource.
func EntityListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "entity_list",
		Title:       "Scene Entities",
		Description: "Readable listing of all scene entities with their transforms",
		MIMEType:    "application/json",
		URI:         "scene://entities",
	}
}

// EntityResourceTemplate defines the readable per-entity resource.
func EntityResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "entity",
		Title:       "Scene Entity",
		Description: "Readable single-entity record. URI format: scene://entity/{id}",
		MIMEType:    "application/json",
		URITemplate: "scene://entity/{id}",
	}
}

// EntityListResourceHandler returns the readable scene listing.
func EntityListResourceHandler(sc Scene) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if sc == nil {
			return nil, fmt.Errorf("scene is not configured")
		}

		uri := EntityListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		payload := EntityListPayload{}
		for _, ent := range sc.List() {
			payload.Entities = append(payload.Entities, entityListEntry(sc, ent.ID))
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal entity list: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

// EntityResourceHandler returns a readable single-entity record.
func EntityResourceHandler(sc Scene) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if sc == nil {
			return nil, fmt.Errorf("scene is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("resource uri is required")
		}

		id, err := entityIDFromURI(req.Params.URI)
		if err != nil {
			return nil, err
		}
		if _, ok := sc.Get(id); !ok {
			return nil, fmt.Errorf("entity %d not found", id)
		}

		data, err := json.MarshalIndent(EntityPayload{Entity: entityListEntry(sc, id)}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal entity: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      req.Params.URI,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func entityListEntry(sc Scene, id int64) EntityListEntry {
	ent, _ := sc.Get(id)
	return EntityListEntry{
		InstanceID: ent.ID,
		Name:       ent.Name,
		Path:       sc.Path(ent.ID),
		ParentID:   ent.ParentID,
		Position:   [3]float64{ent.Position.X(), ent.Position.Y(), ent.Position.Z()},
		Rotation:   geometry.EulerDegrees(ent.Rotation),
		Scale:      [3]float64{ent.Scale.X(), ent.Scale.Y(), ent.Scale.Z()},
	}
}

// entityIDFromURI extracts the instance id from a scene://entity/{id} URI.
func entityIDFromURI(uri string) (int64, error) {
	const prefix = "scene://entity/"
	if !strings.HasPrefix(uri, prefix) {
		return 0, fmt.Errorf("unsupported entity resource uri %q", uri)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("entity resource uri %q has no numeric id", uri)
	}
	return id, nil
}
