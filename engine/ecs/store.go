package ecs

import (
	"sync"

	"golang.org/x/exp/slices"
)

type Entity uint64

/**
 * @brief Holds one component of type T per entity. Each Registry owns its
 * stores, so two registries never share components.
 */
type Store[T any] struct {
	mu         sync.RWMutex
	components map[Entity]*entry[T]
}

type entry[T any] struct {
	component T
	active    bool
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{components: make(map[Entity]*entry[T])}
}

// Add stores c for e, replacing any component e already had.
func (s *Store[T]) Add(e Entity, c T, active bool) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	en := &entry[T]{component: c, active: active}
	s.components[e] = en
	return &en.component
}

// Get returns the component of e, or nil.
func (s *Store[T]) Get(e Entity) *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if en, ok := s.components[e]; ok {
		return &en.component
	}
	return nil
}

func (s *Store[T]) IsActive(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	en, ok := s.components[e]
	return ok && en.active
}

// SetActive reports false when e has no component in the store.
func (s *Store[T]) SetActive(e Entity, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	en, ok := s.components[e]
	if ok {
		en.active = active
	}
	return ok
}

func (s *Store[T]) Remove(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.components, e)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.components)
}

// Entities returns every entity holding a component, in ascending order.
func (s *Store[T]) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0, len(s.components))
	for e := range s.components {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}
