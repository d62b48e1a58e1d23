package assets

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

/**
 * @brief A static mesh asset: a .smeshdecl descriptor, a .smesh vertex blob
 * and once initialized the vertex and index buffers.
 */
type StaticMesh struct {
	record

	declFile   string
	binaryFile string

	geometry *mesh.StaticMesh
}

func newStaticMesh(id uint64, name, declFile, binaryFile string) *StaticMesh {
	sm := &StaticMesh{declFile: declFile, binaryFile: binaryFile}
	sm.init(id, name, KindStaticMesh, declFile, binaryFile)
	return sm
}

/**
 * @brief Reads the geometry through the mesh codec. Calling it again once
 * loaded logs a warning and returns nil.
 */
func (sm *StaticMesh) LoadSettings() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.alreadyLoaded() {
		return nil
	}
	geometry, err := mesh.Read(sm.declFile, sm.binaryFile)
	if err != nil {
		return fmt.Errorf("failed to load static mesh %q: %w", sm.name, err)
	}
	if err := sm.checkTransition(StateSettingsLoaded); err != nil {
		return err
	}
	sm.geometry = geometry
	sm.state = StateSettingsLoaded
	core.LogDebug("Static mesh %q loaded %d vertices in %d sub-mesh(es).",
		sm.name, len(geometry.Vertices), len(geometry.SubMeshes))
	return nil
}

/**
 * @brief Uploads the vertex buffer and one index buffer per sub-mesh.
 */
func (sm *StaticMesh) InitializeGPUBuffers(allocator gpu.Allocator) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.requireSettings(); err != nil {
		return err
	}
	if err := sm.geometry.InitializeGPUBuffers(allocator); err != nil {
		return fmt.Errorf("failed to initialize GPU buffers for static mesh %q: %w", sm.name, err)
	}
	sm.state = StateCreated
	core.LogDebug("Static mesh %q uploaded.", sm.name)
	return nil
}

/**
 * @brief Releases the index buffers, then the vertex buffer. Does nothing
 * unless the buffers were created.
 */
func (sm *StaticMesh) Destroy(allocator gpu.Allocator) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.state != StateCreated {
		return
	}
	sm.geometry.DestroyGPUBuffers(allocator)
	sm.state = StateDestroyed
}

// Mesh returns the loaded geometry, or nil before LoadSettings succeeded.
func (sm *StaticMesh) Mesh() *mesh.StaticMesh {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.geometry
}

/**
 * @brief Writes m to the record's descriptor and binary files. The record's
 * state and loaded geometry are not touched.
 */
func (sm *StaticMesh) Save(m *mesh.StaticMesh) error {
	if _, err := mesh.Write(sm.declFile, sm.binaryFile, m); err != nil {
		return fmt.Errorf("failed to save static mesh %q: %w", sm.name, err)
	}
	return nil
}
