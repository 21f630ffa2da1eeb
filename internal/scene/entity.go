// Package scene hosts the in-process scene graph: addressable entities with
// transforms, reference resolution strategies, and a reversible mutation
// history. Tool handlers operate on the store through a narrow capability
// interface so scene ownership stays here.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Entity is an addressable scene object. Instances handed out by the store
// are value snapshots; mutations go through the store's setters so every
// write is serialized and recorded in history.
type Entity struct {
	ID       int64
	Name     string
	ParentID int64 // 0 means root
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Resolution strategy tokens accepted by Store.Resolve. The empty string
// selects the default chain.
const (
	SearchByID   = "by_id"
	SearchByName = "by_name"
	SearchByPath = "by_path"
)
