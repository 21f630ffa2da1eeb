package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func buildScene(t *testing.T) (*Store, Entity, Entity, Entity) {
	t.Helper()
	s := NewStore()
	root, err := s.Create("Rig", 0)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	arm, err := s.Create("Arm", root.ID)
	if err != nil {
		t.Fatalf("create arm: %v", err)
	}
	hand, err := s.Create("Hand", arm.ID)
	if err != nil {
		t.Fatalf("create hand: %v", err)
	}
	return s, root, arm, hand
}

func TestCreateDefaults(t *testing.T) {
	s := NewStore()
	ent, err := s.Create("Camera", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ent.ID != 1 {
		t.Errorf("expected first id 1, got %d", ent.ID)
	}
	if ent.Rotation != mgl64.QuatIdent() {
		t.Errorf("expected identity rotation, got %v", ent.Rotation)
	}
	if ent.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("expected unit scale, got %v", ent.Scale)
	}

	if _, err := s.Create("", 0); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := s.Create("Orphan", 99); err == nil {
		t.Error("expected error for unknown parent")
	}
}

func TestResolveStrategies(t *testing.T) {
	s, _, arm, hand := buildScene(t)

	t.Run("by_id", func(t *testing.T) {
		ent, ok := s.Resolve("2", SearchByID)
		if !ok || ent.ID != arm.ID {
			t.Fatalf("expected arm, got %+v ok=%v", ent, ok)
		}
		if _, ok := s.Resolve("Arm", SearchByID); ok {
			t.Error("by_id must not match names")
		}
	})

	t.Run("by_name", func(t *testing.T) {
		ent, ok := s.Resolve("Hand", SearchByName)
		if !ok || ent.ID != hand.ID {
			t.Fatalf("expected hand, got %+v ok=%v", ent, ok)
		}
	})

	t.Run("by_path", func(t *testing.T) {
		ent, ok := s.Resolve("Rig/Arm/Hand", SearchByPath)
		if !ok || ent.ID != hand.ID {
			t.Fatalf("expected hand, got %+v ok=%v", ent, ok)
		}
		if _, ok := s.Resolve("Hand", SearchByPath); ok {
			t.Error("by_path must not match bare names of nested entities")
		}
	})

	t.Run("default chain", func(t *testing.T) {
		if ent, ok := s.Resolve("3", ""); !ok || ent.ID != hand.ID {
			t.Errorf("default chain should resolve ids, got %+v ok=%v", ent, ok)
		}
		if ent, ok := s.Resolve("Rig/Arm", ""); !ok || ent.ID != arm.ID {
			t.Errorf("default chain should resolve paths, got %+v ok=%v", ent, ok)
		}
		if ent, ok := s.Resolve("Arm", ""); !ok || ent.ID != arm.ID {
			t.Errorf("default chain should resolve names, got %+v ok=%v", ent, ok)
		}
	})

	t.Run("unknown method falls back to default chain", func(t *testing.T) {
		if ent, ok := s.Resolve("Arm", "by_component"); !ok || ent.ID != arm.ID {
			t.Errorf("unknown method should use default chain, got %+v ok=%v", ent, ok)
		}
	})

	t.Run("misses", func(t *testing.T) {
		if _, ok := s.Resolve("Ghost", ""); ok {
			t.Error("expected miss for unknown name")
		}
		if _, ok := s.Resolve("", ""); ok {
			t.Error("expected miss for empty reference")
		}
	})
}

func TestSettersAndUndo(t *testing.T) {
	s, root, _, _ := buildScene(t)

	if err := s.SetPosition(root.ID, mgl64.Vec3{1, 2, 3}); err != nil {
		t.Fatalf("set position: %v", err)
	}
	q := mgl64.QuatRotate(1.2, mgl64.Vec3{0, 1, 0})
	if err := s.SetRotation(root.ID, q); err != nil {
		t.Fatalf("set rotation: %v", err)
	}

	ent, _ := s.Get(root.ID)
	if ent.Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", ent.Position)
	}
	if ent.Rotation != q {
		t.Errorf("rotation = %v", ent.Rotation)
	}

	label, ok := s.Undo()
	if !ok || label != `rotate "Rig"` {
		t.Fatalf("undo = %q ok=%v", label, ok)
	}
	ent, _ = s.Get(root.ID)
	if ent.Rotation != mgl64.QuatIdent() {
		t.Errorf("expected rotation restored, got %v", ent.Rotation)
	}
	if ent.Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("undo must only revert the rotation write, position = %v", ent.Position)
	}

	label, ok = s.Redo()
	if !ok || label != `rotate "Rig"` {
		t.Fatalf("redo = %q ok=%v", label, ok)
	}
	ent, _ = s.Get(root.ID)
	if ent.Rotation != q {
		t.Errorf("expected rotation reapplied, got %v", ent.Rotation)
	}

	if err := s.SetRotation(99, q); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestRemoveSubtreeUndo(t *testing.T) {
	s, root, arm, hand := buildScene(t)

	count, err := s.Remove(arm.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 removed (arm + hand), got %d", count)
	}
	if _, ok := s.Get(hand.ID); ok {
		t.Error("hand should be gone with its parent")
	}
	if _, ok := s.Get(root.ID); !ok {
		t.Error("root must survive")
	}

	if label, ok := s.Undo(); !ok || label != `delete "Arm"` {
		t.Fatalf("undo = %q ok=%v", label, ok)
	}
	if _, ok := s.Get(hand.ID); !ok {
		t.Error("undo should restore the whole subtree")
	}
	if got := s.Path(hand.ID); got != "Rig/Arm/Hand" {
		t.Errorf("path after undo = %q", got)
	}

	if _, err := s.Remove(42); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestSetParent(t *testing.T) {
	s, root, arm, hand := buildScene(t)

	if err := s.SetParent(hand.ID, root.ID); err != nil {
		t.Fatalf("reparent: %v", err)
	}
	if got := s.Path(hand.ID); got != "Rig/Hand" {
		t.Errorf("path = %q", got)
	}

	if err := s.SetParent(arm.ID, hand.ID); err != nil {
		t.Fatalf("reparent under former child: %v", err)
	}
	if err := s.SetParent(root.ID, hand.ID); err == nil {
		t.Error("expected cycle rejection")
	}

	if label, ok := s.Undo(); !ok || label != `reparent "Arm"` {
		t.Fatalf("undo = %q ok=%v", label, ok)
	}
}

func TestNewMutationClearsRedo(t *testing.T) {
	s, root, _, _ := buildScene(t)

	if err := s.SetPosition(root.ID, mgl64.Vec3{5, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Undo(); !ok {
		t.Fatal("expected undo")
	}
	if err := s.SetPosition(root.ID, mgl64.Vec3{0, 5, 0}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo tail must be discarded after a new mutation")
	}
}

func TestReplace(t *testing.T) {
	s := NewStore()
	s.Replace([]Entity{
		{ID: 7, Name: "Loaded", Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
	})
	if ent, ok := s.Get(7); !ok || ent.Name != "Loaded" {
		t.Fatalf("expected loaded entity, got %+v ok=%v", ent, ok)
	}
	if _, ok := s.Undo(); ok {
		t.Error("loaded scene must start with empty history")
	}
	ent, err := s.Create("Next", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ent.ID != 8 {
		t.Errorf("expected id continuation after load, got %d", ent.ID)
	}
}
