// Package geometry provides the 3D vector and rotation primitives used by
// scene tools: loose-input vector parsing, look-at rotation construction, and
// the Euler-degree representation used in tool payloads.
package geometry

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
)

// Canonical world axes. The scene is Y-up with forward along +Z.
var (
	WorldRight   = mgl64.Vec3{1, 0, 0}
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldForward = mgl64.Vec3{0, 0, 1}
)

// ParseVector interprets a loosely-typed JSON value as a 3D vector.
//
// Accepted shapes are a three-element number array [x,y,z] and an object with
// x, y, and z members. Anything else, including arrays of other lengths,
// reports ok=false so callers can fall back to other interpretations.
func ParseVector(raw json.RawMessage) (mgl64.Vec3, bool) {
	if isAbsent(raw) {
		return mgl64.Vec3{}, false
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) != 3 {
			return mgl64.Vec3{}, false
		}
		return mgl64.Vec3{arr[0], arr[1], arr[2]}, true
	}

	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return mgl64.Vec3{}, false
	}
	if obj.X == nil || obj.Y == nil || obj.Z == nil {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{*obj.X, *obj.Y, *obj.Z}, true
}

// ParseVectorDefault parses like ParseVector but substitutes def when the
// value is absent or unparsable. It never fails.
func ParseVectorDefault(raw json.RawMessage, def mgl64.Vec3) mgl64.Vec3 {
	if v, ok := ParseVector(raw); ok {
		return v
	}
	return def
}

// isAbsent reports whether a raw JSON value carries no usable content.
func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
