package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coplay/scene-mcp/internal/scene"
)

func TestEntityCreateHandler(t *testing.T) {
	t.Run("root entity", func(t *testing.T) {
		s := scene.NewStore()
		handler := EntityCreateHandler(s)
		_, result, err := handler(context.Background(), nil, EntityCreateInput{Name: "Camera"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Name != "Camera" || result.Path != "Camera" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("nested entity", func(t *testing.T) {
		s := scene.NewStore()
		if _, err := s.Create("Rig", 0); err != nil {
			t.Fatal(err)
		}
		handler := EntityCreateHandler(s)
		_, result, err := handler(context.Background(), nil, EntityCreateInput{Name: "Arm", Parent: "Rig"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Path != "Rig/Arm" {
			t.Errorf("path = %q", result.Path)
		}
	})

	t.Run("unknown parent", func(t *testing.T) {
		handler := EntityCreateHandler(scene.NewStore())
		_, _, err := handler(context.Background(), nil, EntityCreateInput{Name: "Arm", Parent: "Ghost"})
		if err == nil {
			t.Fatal("expected error for unknown parent")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		handler := EntityCreateHandler(scene.NewStore())
		_, _, err := handler(context.Background(), nil, EntityCreateInput{})
		if err == nil {
			t.Fatal("expected error for empty name")
		}
	})
}

func TestEntityDeleteHandler(t *testing.T) {
	s := scene.NewStore()
	root, _ := s.Create("Rig", 0)
	if _, err := s.Create("Arm", root.ID); err != nil {
		t.Fatal(err)
	}

	handler := EntityDeleteHandler(s)
	_, result, err := handler(context.Background(), nil, EntityDeleteInput{Target: "Rig"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("removed = %d, want 2", result.Removed)
	}

	_, _, err = handler(context.Background(), nil, EntityDeleteInput{Target: "Rig"})
	if err == nil || !strings.Contains(err.Error(), `"Rig"`) {
		t.Errorf("expected not-found error naming the reference, got %v", err)
	}
}

func TestEntityFindHandler(t *testing.T) {
	s := scene.NewStore()
	ent, _ := s.Create("Player", 0)
	if err := s.SetPosition(ent.ID, mgl64.Vec3{3, 0, 4}); err != nil {
		t.Fatal(err)
	}

	handler := EntityFindHandler(s)
	_, result, err := handler(context.Background(), nil, EntityFindInput{
		Target:       fmt.Sprint(ent.ID),
		SearchMethod: scene.SearchByID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Position != [3]float64{3, 0, 4} {
		t.Errorf("position = %v", result.Position)
	}
	if result.Path != "Player" {
		t.Errorf("path = %q", result.Path)
	}
}

func TestTransformSetHandler(t *testing.T) {
	t.Run("sets components independently", func(t *testing.T) {
		s := scene.NewStore()
		if _, err := s.Create("Box", 0); err != nil {
			t.Fatal(err)
		}
		handler := TransformSetHandler(s)

		_, result, err := handler(context.Background(), nil, TransformSetInput{
			Target:   "Box",
			Position: json.RawMessage(`[1, 2, 3]`),
			Rotation: json.RawMessage(`[0, 90, 0]`),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Position != [3]float64{1, 2, 3} {
			t.Errorf("position = %v", result.Position)
		}
		if diff := result.Rotation[1] - 90; diff > tolerance || diff < -tolerance {
			t.Errorf("rotation = %v", result.Rotation)
		}
		if result.Scale != [3]float64{1, 1, 1} {
			t.Errorf("scale must stay untouched, got %v", result.Scale)
		}
	})

	t.Run("rejects malformed components", func(t *testing.T) {
		s := scene.NewStore()
		if _, err := s.Create("Box", 0); err != nil {
			t.Fatal(err)
		}
		handler := TransformSetHandler(s)
		_, _, err := handler(context.Background(), nil, TransformSetInput{
			Target:   "Box",
			Position: json.RawMessage(`"north"`),
		})
		if err == nil {
			t.Fatal("expected error for malformed position")
		}
	})

	t.Run("target not found", func(t *testing.T) {
		handler := TransformSetHandler(scene.NewStore())
		_, _, err := handler(context.Background(), nil, TransformSetInput{Target: "Ghost"})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestTransformTranslateHandler(t *testing.T) {
	s := scene.NewStore()
	ent, _ := s.Create("Box", 0)
	if err := s.SetPosition(ent.ID, mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	handler := TransformTranslateHandler(s)
	_, result, err := handler(context.Background(), nil, TransformTranslateInput{
		Target: "Box",
		Offset: json.RawMessage(`[0, 2, -1]`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Position != [3]float64{1, 2, -1} {
		t.Errorf("position = %v", result.Position)
	}

	_, _, err = handler(context.Background(), nil, TransformTranslateInput{Target: "Box"})
	if err == nil || !strings.Contains(err.Error(), "offset") {
		t.Errorf("expected missing-offset error, got %v", err)
	}
}

func TestUndoRedoHandlers(t *testing.T) {
	s := scene.NewStore()
	ent, _ := s.Create("Box", 0)
	if err := s.SetPosition(ent.ID, mgl64.Vec3{9, 9, 9}); err != nil {
		t.Fatal(err)
	}

	undo := UndoHandler(s)
	redo := RedoHandler(s)

	_, result, err := undo(context.Background(), nil, HistoryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || result.Label != `move "Box"` {
		t.Errorf("undo result = %+v", result)
	}
	if got, _ := s.Get(ent.ID); got.Position != (mgl64.Vec3{}) {
		t.Errorf("position after undo = %v", got.Position)
	}

	_, result, err = redo(context.Background(), nil, HistoryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied {
		t.Errorf("redo result = %+v", result)
	}
	if got, _ := s.Get(ent.ID); got.Position != (mgl64.Vec3{9, 9, 9}) {
		t.Errorf("position after redo = %v", got.Position)
	}

	// Drain history: undo twice more (move, create), then nothing remains.
	if _, result, _ = undo(context.Background(), nil, HistoryInput{}); !result.Applied {
		t.Fatal("expected second undo to apply")
	}
	if _, result, _ = undo(context.Background(), nil, HistoryInput{}); !result.Applied {
		t.Fatal("expected third undo to apply")
	}
	if _, result, _ = undo(context.Background(), nil, HistoryInput{}); result.Applied {
		t.Error("expected empty history to report nothing to undo")
	}
}

// fakeSnapshots records save/load traffic for snapshot handler tests.
type fakeSnapshots struct {
	saved   []scene.Entity
	loaded  []scene.Entity
	saveErr error
	loadErr error
}

func (f *fakeSnapshots) Save(_ context.Context, entities []scene.Entity) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = entities
	return nil
}

func (f *fakeSnapshots) Load(context.Context) ([]scene.Entity, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loaded, nil
}

func TestSceneSaveHandler(t *testing.T) {
	t.Run("saves current entities", func(t *testing.T) {
		s := scene.NewStore()
		if _, err := s.Create("Box", 0); err != nil {
			t.Fatal(err)
		}
		snaps := &fakeSnapshots{}
		_, result, err := SceneSaveHandler(s, snaps)(context.Background(), nil, SnapshotInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Entities != 1 || len(snaps.saved) != 1 {
			t.Errorf("result = %+v, saved = %d", result, len(snaps.saved))
		}
	})

	t.Run("store not configured", func(t *testing.T) {
		_, _, err := SceneSaveHandler(scene.NewStore(), nil)(context.Background(), nil, SnapshotInput{})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		snaps := &fakeSnapshots{saveErr: fmt.Errorf("disk full")}
		_, _, err := SceneSaveHandler(scene.NewStore(), snaps)(context.Background(), nil, SnapshotInput{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSceneLoadHandler(t *testing.T) {
	s := scene.NewStore()
	if _, err := s.Create("Stale", 0); err != nil {
		t.Fatal(err)
	}
	snaps := &fakeSnapshots{loaded: []scene.Entity{
		{ID: 4, Name: "Fresh", Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
	}}

	_, result, err := SceneLoadHandler(s, snaps)(context.Background(), nil, SnapshotInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entities != 1 {
		t.Errorf("result = %+v", result)
	}
	if _, ok := s.Resolve("Stale", ""); ok {
		t.Error("loaded snapshot must replace the previous scene")
	}
	if _, ok := s.Resolve("Fresh", ""); !ok {
		t.Error("loaded entity missing")
	}
}

func TestEntityResources(t *testing.T) {
	s := scene.NewStore()
	ent, _ := s.Create("Box", 0)

	t.Run("listing", func(t *testing.T) {
		result, err := EntityListResourceHandler(s)(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Contents) != 1 || !strings.Contains(result.Contents[0].Text, `"Box"`) {
			t.Errorf("unexpected contents: %+v", result.Contents)
		}
	})

	t.Run("single entity", func(t *testing.T) {
		req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: fmt.Sprintf("scene://entity/%d", ent.ID)}}
		result, err := EntityResourceHandler(s)(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(result.Contents[0].Text, `"Box"`) {
			t.Errorf("unexpected contents: %q", result.Contents[0].Text)
		}
	})

	t.Run("unknown entity", func(t *testing.T) {
		req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "scene://entity/99"}}
		if _, err := EntityResourceHandler(s)(context.Background(), req); err == nil {
			t.Error("expected error for unknown entity")
		}
	})

	t.Run("malformed uri", func(t *testing.T) {
		req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "scene://entity/box"}}
		if _, err := EntityResourceHandler(s)(context.Background(), req); err == nil {
			t.Error("expected error for malformed uri")
		}
	})
}
