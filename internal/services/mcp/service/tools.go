package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/scene"
	"github.com/coplay/scene-mcp/internal/scene/storage/sqlite"
	"github.com/coplay/scene-mcp/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerSceneTools(registrar mcpRegistrationTarget, store *scene.Store) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.LookAtTool(), handler: domain.LookAtHandler(store)},
		{tool: domain.EntityCreateTool(), handler: domain.EntityCreateHandler(store)},
		{tool: domain.EntityDeleteTool(), handler: domain.EntityDeleteHandler(store)},
		{tool: domain.EntityFindTool(), handler: domain.EntityFindHandler(store)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTransformTools(registrar mcpRegistrationTarget, store *scene.Store) error {
	if err := registerTool(registrar, domain.TransformSetTool(), domain.TransformSetHandler(store)); err != nil {
		return err
	}
	return registerTool(registrar, domain.TransformTranslateTool(), domain.TransformTranslateHandler(store))
}

func registerHistoryTools(registrar mcpRegistrationTarget, store *scene.Store) error {
	if err := registerTool(registrar, domain.UndoTool(), domain.UndoHandler(store)); err != nil {
		return err
	}
	return registerTool(registrar, domain.RedoTool(), domain.RedoHandler(store))
}

func registerSnapshotTools(registrar mcpRegistrationTarget, store *scene.Store, snapshots *sqlite.Store) error {
	// A nil *sqlite.Store must stay a nil interface so the handlers report
	// the unconfigured store instead of panicking on it.
	var snaps domain.Snapshots
	if snapshots != nil {
		snaps = snapshots
	}
	if err := registerTool(registrar, domain.SceneSaveTool(), domain.SceneSaveHandler(store, snaps)); err != nil {
		return err
	}
	return registerTool(registrar, domain.SceneLoadTool(), domain.SceneLoadHandler(store, snaps))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerSceneResources registers readable scene MCP resources.
func registerSceneResources(registrar mcpRegistrationTarget, store *scene.Store) {
	registrar.AddResource(domain.EntityListResource(), domain.EntityListResourceHandler(store))
	registrar.AddResourceTemplate(domain.EntityResourceTemplate(), domain.EntityResourceHandler(store))
}
