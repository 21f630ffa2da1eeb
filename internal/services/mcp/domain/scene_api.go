package domain

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coplay/scene-mcp/internal/scene"
)

// Scene is the capability interface handlers use to read and mutate the host
// scene. Every setter records its write with the reversible-history boundary
// immediately before applying it, so each tool mutation is one undoable unit.
type Scene interface {
	Resolve(reference, method string) (scene.Entity, bool)
	Get(id int64) (scene.Entity, bool)
	Path(id int64) string
	List() []scene.Entity
	Create(name string, parentID int64) (scene.Entity, error)
	Remove(id int64) (int, error)
	SetPosition(id int64, position mgl64.Vec3) error
	SetRotation(id int64, rotation mgl64.Quat) error
	SetScale(id int64, scale mgl64.Vec3) error
	SetParent(id, parentID int64) error
	Undo() (string, bool)
	Redo() (string, bool)
	Replace(entities []scene.Entity)
}

// Snapshots persists and restores whole-scene snapshots.
type Snapshots interface {
	Save(ctx context.Context, entities []scene.Entity) error
	Load(ctx context.Context) ([]scene.Entity, error)
}
