package core

import "sync"

// InvalidID is never handed out by a NameRegistry.
const InvalidID uint64 = 0

/**
 * @brief Maps human-readable names to stable 64-bit identifiers.
 * Identifiers come from a monotonic counter, so they are never reused
 * for the lifetime of the registry.
 */
type NameRegistry struct {
	mu     sync.RWMutex
	ids    map[string]uint64
	names  map[uint64]string
	nextID uint64
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		ids:    make(map[string]uint64),
		names:  make(map[uint64]string),
		nextID: InvalidID + 1,
	}
}

// GenerateID returns the identifier bound to name, binding a fresh one on first use.
func (nr *NameRegistry) GenerateID(name string) uint64 {
	nr.mu.RLock()
	id, ok := nr.ids[name]
	nr.mu.RUnlock()
	if ok {
		return id
	}

	nr.mu.Lock()
	defer nr.mu.Unlock()
	// Someone else may have bound it between the two locks.
	if id, ok := nr.ids[name]; ok {
		return id
	}
	id = nr.nextID
	nr.nextID++
	nr.ids[name] = id
	nr.names[id] = name
	return id
}

func (nr *NameRegistry) Lookup(name string) (uint64, bool) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	id, ok := nr.ids[name]
	return id, ok
}

func (nr *NameRegistry) Name(id uint64) (string, bool) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	name, ok := nr.names[id]
	return name, ok
}

func (nr *NameRegistry) Len() int {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	return len(nr.ids)
}
