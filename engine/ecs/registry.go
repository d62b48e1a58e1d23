package ecs

import (
	"sync"

	"github.com/spaghettifunk/smok/engine/math"
)

/** @brief Position, rotation and scale of an entity. */
type Transform struct {
	Position math.Vec3
	/** @brief Rotation as Euler angles (pitch, yaw, roll). */
	EulerRotation math.Vec3
	/** @brief True when EulerRotation is in radians instead of degrees. */
	RotationInRadians bool
	Scale             math.Vec3
}

func NewTransform() Transform {
	return Transform{Scale: math.NewVec3(1, 1, 1)}
}

/**
 * @brief The component stores of one world. Create one per world; nothing is
 * shared between registries.
 */
type Registry struct {
	Transforms  *Store[Transform]
	MeshRenders *Store[MeshRender]

	mu   sync.Mutex
	next Entity
}

func NewRegistry() *Registry {
	return &Registry{
		Transforms:  NewStore[Transform](),
		MeshRenders: NewStore[MeshRender](),
	}
}

// NewEntity returns an entity never handed out by this registry before. 0 is never used.
func (r *Registry) NewEntity() Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next
}

// RemoveEntity drops every component of e.
func (r *Registry) RemoveEntity(e Entity) {
	r.Transforms.Remove(e)
	r.MeshRenders.Remove(e)
}
