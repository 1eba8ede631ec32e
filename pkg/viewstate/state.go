// Package viewstate holds per-row presentation state for the grid: which
// groups are open, which row is being edited and which row shows a
// validation error.
//
// Row ids are [keytree.Row.ID] values, so state survives re-merges as
// long as the key path survives. Groups start closed and at most one row
// is edited at a time.
package viewstate

import (
	"sort"
	"sync"
)

// Row is the state of one row.
type Row struct {
	Open    bool
	Editing bool
	Error   string
}

// State is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	open    map[string]bool
	editing string
	errors  map[string]string
}

// New returns an empty state: every group closed, nothing edited.
func New() *State {
	return &State{open: make(map[string]bool), errors: make(map[string]string)}
}

// Row returns the state of id.
func (s *State) Row(id string) Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Row{Open: s.open[id], Editing: s.editing == id && id != "", Error: s.errors[id]}
}

// Toggle flips a group and returns its new open state.
func (s *State) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open[id] {
		delete(s.open, id)
		return false
	}
	s.open[id] = true
	return true
}

// SetOpen opens or closes a group.
func (s *State) SetOpen(id string, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.open[id] = true
	} else {
		delete(s.open, id)
	}
}

// IsOpen reports whether a group is open. It has the signature
// keytree.Flatten expects.
func (s *State) IsOpen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open[id]
}

// OpenIDs returns the open groups, sorted.
func (s *State) OpenIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Editing returns the row being edited, or "".
func (s *State) Editing() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// StartEdit makes id the edited row and clears its error. Any other edit
// is abandoned.
func (s *State) StartEdit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = id
	delete(s.errors, id)
}

// FinishEdit ends the current edit after a successful commit.
func (s *State) FinishEdit() {
	s.endEdit()
}

// CancelEdit ends the current edit without committing.
func (s *State) CancelEdit() {
	s.endEdit()
}

func (s *State) endEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing != "" {
		delete(s.errors, s.editing)
	}
	s.editing = ""
}

// SetError attaches a message to id, typically a rejected key.
func (s *State) SetError(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == "" {
		delete(s.errors, id)
		return
	}
	s.errors[id] = msg
}

// ClearError removes the message on id.
func (s *State) ClearError(id string) {
	s.SetError(id, "")
}

// Prune forgets open groups that are not in live. Call it after a merge
// so renamed or removed groups do not accumulate.
func (s *State) Prune(live func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.open {
		if !live(id) {
			delete(s.open, id)
		}
	}
	for id := range s.errors {
		if !live(id) {
			delete(s.errors, id)
		}
	}
	if s.editing != "" && !live(s.editing) {
		s.editing = ""
	}
}
