package reconcile

import (
	"sync"

	"entity-sync/core/mapping"
)

// DropSet collects entities created for the lifetime of a session so they can be
// dropped on teardown. It is safe for concurrent use.
type DropSet struct {
	mu     sync.Mutex
	models []*mapping.EntityModel
	seen   map[*mapping.EntityModel]struct{}
}

// NewDropSet returns an empty set.
func NewDropSet() *DropSet {
	return &DropSet{seen: make(map[*mapping.EntityModel]struct{})}
}

// Track registers m. Registering the same model twice has no effect.
func (s *DropSet) Track(m *mapping.EntityModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[m]; ok {
		return
	}
	s.seen[m] = struct{}{}
	s.models = append(s.models, m)
}

// Forget removes m from the set.
func (s *DropSet) Forget(m *mapping.EntityModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[m]; !ok {
		return
	}
	delete(s.seen, m)
	for i, tracked := range s.models {
		if tracked == m {
			s.models = append(s.models[:i], s.models[i+1:]...)
			break
		}
	}
}

// Models returns the tracked models in registration order.
func (s *DropSet) Models() []*mapping.EntityModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mapping.EntityModel(nil), s.models...)
}

// Len returns the number of tracked models.
func (s *DropSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.models)
}
