package assets

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/smok/engine/core"
)

/**
 * @brief The lifecycle of an asset record. Transitions only move forward:
 * Registered -> SettingsLoaded -> Created -> Destroyed.
 */
type State int

const (
	StateRegistered State = iota
	StateSettingsLoaded
	StateCreated
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateSettingsLoaded:
		return "settings loaded"
	case StateCreated:
		return "created"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State]State{
	StateRegistered:     StateSettingsLoaded,
	StateSettingsLoaded: StateCreated,
	StateCreated:        StateDestroyed,
}

/**
 * @brief The fields every asset record shares. The mutex guards the state and
 * whatever the embedding record loads or creates.
 */
type record struct {
	mu    sync.Mutex
	id    uint64
	name  string
	kind  Kind
	state State
	files []string
}

func (r *record) init(id uint64, name string, kind Kind, files ...string) {
	r.id = id
	r.name = name
	r.kind = kind
	r.state = StateRegistered
	r.files = files
}

// checkTransition must be called with mu held.
func (r *record) checkTransition(to State) error {
	if next, ok := transitions[r.state]; !ok || next != to {
		return fmt.Errorf("%w: %s %q (id %d) cannot go from %s to %s",
			core.ErrInvalidTransition, r.kind, r.name, r.id, r.state, to)
	}
	return nil
}

// requireSettings must be called with mu held.
func (r *record) requireSettings() error {
	if r.state == StateRegistered {
		return fmt.Errorf("%w: %s %q (id %d)", core.ErrSettingsNotLoaded, r.kind, r.name, r.id)
	}
	return r.checkTransition(StateCreated)
}

// alreadyLoaded must be called with mu held. It logs the redundant call.
func (r *record) alreadyLoaded() bool {
	if r.state == StateRegistered {
		return false
	}
	core.LogWarn("Settings for %s %q (id %d) are already loaded, ignoring the request.", r.kind, r.name, r.id)
	return true
}

func (r *record) ID() uint64   { return r.id }
func (r *record) Name() string { return r.name }
func (r *record) Kind() Kind   { return r.kind }

func (r *record) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *record) SettingsLoaded() bool {
	return r.State() != StateRegistered
}

func (r *record) ResourceCreated() bool {
	return r.State() == StateCreated
}

// SourceFiles returns a copy of the files the record was registered with.
func (r *record) SourceFiles() []string {
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

func (r *record) sealed() {}
