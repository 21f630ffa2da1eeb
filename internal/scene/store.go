package scene

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Store owns the scene graph. All access is serialized by a single mutex so
// tool invocations see and mutate a consistent scene; handlers perform no
// locking of their own.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	entities map[int64]*Entity
	order    []int64 // creation order, keeps listing and name resolution deterministic
	history  history
}

// NewStore returns an empty scene.
func NewStore() *Store {
	return &Store{
		nextID:   1,
		entities: make(map[int64]*Entity),
	}
}

// Create adds a named entity under parentID (0 for root) with an identity
// transform. The creation is one undoable unit.
func (s *Store) Create(name string, parentID int64) (Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entity{}, fmt.Errorf("entity name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != 0 {
		if _, ok := s.entities[parentID]; !ok {
			return Entity{}, fmt.Errorf("parent entity %d not found", parentID)
		}
	}

	id := s.nextID
	s.nextID++
	ent := &Entity{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
	s.entities[id] = ent
	s.order = append(s.order, id)

	snapshot := *ent
	s.record(mutation{
		label: fmt.Sprintf("create %q", name),
		undo: func(st *Store) {
			st.removeLocked([]int64{id})
		},
		redo: func(st *Store) {
			st.insertLocked([]Entity{snapshot})
		},
	})
	return snapshot, nil
}

// Remove deletes the entity and its subtree as one undoable unit. It returns
// the number of entities removed.
func (s *Store) Remove(id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return 0, fmt.Errorf("entity %d not found", id)
	}

	ids := s.subtreeLocked(id)
	removed := make([]Entity, 0, len(ids))
	for _, rid := range ids {
		removed = append(removed, *s.entities[rid])
	}

	s.record(mutation{
		label: fmt.Sprintf("delete %q", removed[0].Name),
		undo: func(st *Store) {
			st.insertLocked(removed)
		},
		redo: func(st *Store) {
			st.removeLocked(ids)
		},
	})
	s.removeLocked(ids)
	return len(ids), nil
}

// Get returns a snapshot of the entity.
func (s *Store) Get(id int64) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *ent, true
}

// List returns snapshots of all entities in creation order.
func (s *Store) List() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entities[id])
	}
	return out
}

// Path returns the hierarchical path of the entity, e.g. "Root/Arm/Hand".
// It returns the empty string for unknown entities.
func (s *Store) Path(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathLocked(id)
}

// Resolve maps a reference and a resolution strategy to an entity snapshot.
//
// Strategies: by_id matches the numeric instance id, by_name the display
// name, by_path the hierarchical path. The empty strategy, and any token the
// store does not recognize, use the default chain id, then path, then name,
// so richer caller-side strategy tokens stay forward compatible.
func (s *Store) Resolve(reference, method string) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Entity{}, false
	}

	switch method {
	case SearchByID:
		return s.byIDLocked(reference)
	case SearchByName:
		return s.byNameLocked(reference)
	case SearchByPath:
		return s.byPathLocked(reference)
	default:
		if ent, ok := s.byIDLocked(reference); ok {
			return ent, true
		}
		if ent, ok := s.byPathLocked(reference); ok {
			return ent, true
		}
		return s.byNameLocked(reference)
	}
}

// SetPosition moves the entity. The write is recorded as one undoable unit
// immediately before it is applied.
func (s *Store) SetPosition(id int64, position mgl64.Vec3) error {
	return s.mutate(id, "move", func(ent *Entity) {
		ent.Position = position
	})
}

// SetRotation reorients the entity. The write is recorded as one undoable
// unit immediately before it is applied.
func (s *Store) SetRotation(id int64, rotation mgl64.Quat) error {
	return s.mutate(id, "rotate", func(ent *Entity) {
		ent.Rotation = rotation
	})
}

// SetScale rescales the entity. The write is recorded as one undoable unit
// immediately before it is applied.
func (s *Store) SetScale(id int64, scale mgl64.Vec3) error {
	return s.mutate(id, "scale", func(ent *Entity) {
		ent.Scale = scale
	})
}

// SetParent reparents the entity under parentID (0 for root). Reparenting
// changes addressing only; world-space transforms are left untouched.
func (s *Store) SetParent(id, parentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %d not found", id)
	}
	if parentID != 0 {
		if _, ok := s.entities[parentID]; !ok {
			return fmt.Errorf("parent entity %d not found", parentID)
		}
		for _, sub := range s.subtreeLocked(id) {
			if sub == parentID {
				return fmt.Errorf("entity %d cannot be parented to its own descendant %d", id, parentID)
			}
		}
	}

	before := *ent
	s.record(mutation{
		label: fmt.Sprintf("reparent %q", ent.Name),
		undo: func(st *Store) {
			if e, ok := st.entities[id]; ok {
				e.ParentID = before.ParentID
			}
		},
		redo: func(st *Store) {
			if e, ok := st.entities[id]; ok {
				e.ParentID = parentID
			}
		},
	})
	ent.ParentID = parentID
	return nil
}

// Replace swaps the whole scene for the given entities, used when loading a
// persisted snapshot. History is cleared: a loaded scene starts fresh.
func (s *Store) Replace(entities []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[int64]*Entity, len(entities))
	s.order = s.order[:0]
	next := int64(1)
	for i := range entities {
		ent := entities[i]
		s.entities[ent.ID] = &ent
		s.order = append(s.order, ent.ID)
		if ent.ID >= next {
			next = ent.ID + 1
		}
	}
	s.nextID = next
	s.history = history{}
}

// mutate applies a single-field write with its history record.
func (s *Store) mutate(id int64, verb string, apply func(*Entity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %d not found", id)
	}

	before := *ent
	applied := *ent
	apply(&applied)
	after := applied

	s.record(mutation{
		label: fmt.Sprintf("%s %q", verb, ent.Name),
		undo: func(st *Store) {
			if e, ok := st.entities[id]; ok {
				*e = before
			}
		},
		redo: func(st *Store) {
			if e, ok := st.entities[id]; ok {
				*e = after
			}
		},
	})
	*ent = after
	return nil
}

// subtreeLocked returns id and all its descendants in creation order.
func (s *Store) subtreeLocked(id int64) []int64 {
	children := make(map[int64][]int64)
	for _, oid := range s.order {
		ent := s.entities[oid]
		if ent.ParentID != 0 {
			children[ent.ParentID] = append(children[ent.ParentID], oid)
		}
	}

	var out []int64
	var walk func(int64)
	walk = func(cur int64) {
		out = append(out, cur)
		for _, child := range children[cur] {
			walk(child)
		}
	}
	walk(id)
	return out
}

// removeLocked drops the given ids from the scene.
func (s *Store) removeLocked(ids []int64) {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(s.entities, id)
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// insertLocked restores entity snapshots, keeping the order slice sorted by
// id so undo of a delete lands entities back in creation order.
func (s *Store) insertLocked(snapshots []Entity) {
	for i := range snapshots {
		ent := snapshots[i]
		s.entities[ent.ID] = &ent
		s.order = append(s.order, ent.ID)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
}

func (s *Store) pathLocked(id int64) string {
	ent, ok := s.entities[id]
	if !ok {
		return ""
	}
	segments := []string{ent.Name}
	for ent.ParentID != 0 {
		parent, ok := s.entities[ent.ParentID]
		if !ok {
			break
		}
		segments = append([]string{parent.Name}, segments...)
		ent = parent
	}
	return strings.Join(segments, "/")
}

func (s *Store) byIDLocked(reference string) (Entity, bool) {
	id, err := strconv.ParseInt(reference, 10, 64)
	if err != nil {
		return Entity{}, false
	}
	ent, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *ent, true
}

func (s *Store) byNameLocked(reference string) (Entity, bool) {
	for _, id := range s.order {
		if s.entities[id].Name == reference {
			return *s.entities[id], true
		}
	}
	return Entity{}, false
}

func (s *Store) byPathLocked(reference string) (Entity, bool) {
	for _, id := range s.order {
		if s.pathLocked(id) == reference {
			return *s.entities[id], true
		}
	}
	return Entity{}, false
}
