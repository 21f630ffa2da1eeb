package scene

// mutation is one undoable unit. The record is registered immediately before
// the write it guards is applied, so a popped record always matches the
// latest scene state.
type mutation struct {
	label string
	undo  func(*Store)
	redo  func(*Store)
}

// history is the reversible-mutation boundary: a linear undo/redo log of
// single-write units.
type history struct {
	undone []mutation
	redone []mutation
}

// record registers a pending mutation. Any redo tail is discarded, matching
// linear-history editor semantics. Caller holds the store lock.
func (s *Store) record(m mutation) {
	s.history.undone = append(s.history.undone, m)
	s.history.redone = nil
}

// Undo reverses the most recent mutation atomically and returns its label.
func (s *Store) Undo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history.undone)
	if n == 0 {
		return "", false
	}
	m := s.history.undone[n-1]
	s.history.undone = s.history.undone[:n-1]
	m.undo(s)
	s.history.redone = append(s.history.redone, m)
	return m.label, true
}

// Redo reapplies the most recently undone mutation and returns its label.
func (s *Store) Redo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history.redone)
	if n == 0 {
		return "", false
	}
	m := s.history.redone[n-1]
	s.history.redone = s.history.redone[:n-1]
	m.redo(s)
	s.history.undone = append(s.history.undone, m)
	return m.label, true
}
