package mesh

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/math"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

/**
 * @brief A drawable index range inside a static mesh's shared vertex buffer.
 */
type SubMesh struct {
	/** @brief The indices into StaticMesh.Vertices. */
	Indices []uint32
	/** @brief The level of detail this sub-mesh belongs to. 0 is the most detailed. */
	LOD uint32
	/** @brief Whether the sub-mesh should be drawn at all. */
	Visible bool
	/** @brief Set once the index buffer exists on the GPU. */
	CanRender bool
	/** @brief The allocated index buffer. */
	IndexBuffer gpu.Buffer
}

/**
 * @brief A static mesh: one vertex list shared by every sub-mesh.
 */
type StaticMesh struct {
	/** @brief The total vertices making up all sub-meshes. */
	Vertices []Vertex
	/** @brief The individual sub-meshes storing the indices. */
	SubMeshes []SubMesh
	/** @brief The allocated vertex buffer. */
	VertexBuffer gpu.Buffer
}

// Validate checks that every index points at an existing vertex.
func (m *StaticMesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, sm := range m.SubMeshes {
		for j, idx := range sm.Indices {
			if idx >= n {
				return fmt.Errorf("%w: sub-mesh %d index %d is %d, vertex count is %d",
					core.ErrMalformedDescriptor, i, j, idx, n)
			}
		}
	}
	return nil
}

// IndexCount returns the number of indices across all sub-meshes.
func (m *StaticMesh) IndexCount() int {
	total := 0
	for _, sm := range m.SubMeshes {
		total += len(sm.Indices)
	}
	return total
}

/**
 * @brief Returns the axis-aligned bounds of every vertex. Zero extents for an empty mesh.
 */
func (m *StaticMesh) Bounds() math.Extents3D {
	if len(m.Vertices) == 0 {
		return math.Extents3D{}
	}
	e := math.Extents3D{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		e = e.Include(v.Position)
	}
	return e
}

/**
 * @brief Creates the shared vertex buffer, then one index buffer per sub-mesh.
 * On failure every buffer created by this call is released again, so the call
 * can be retried.
 */
func (m *StaticMesh) InitializeGPUBuffers(allocator gpu.Allocator) error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("static mesh has no vertices")
	}
	data, err := vertexBytes(m.Vertices)
	if err != nil {
		return err
	}
	vb, err := allocator.CreateVertexBuffer(data, VertexStride, uint32(len(m.Vertices)))
	if err != nil {
		return fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	m.VertexBuffer = vb

	for i := range m.SubMeshes {
		sm := &m.SubMeshes[i]
		if len(sm.Indices) == 0 {
			core.LogDebug("sub-mesh %d has no indices, skipping index buffer", i)
			continue
		}
		ib, err := allocator.CreateIndexBuffer(sm.Indices)
		if err != nil {
			m.DestroyGPUBuffers(allocator)
			return fmt.Errorf("failed to create index buffer for sub-mesh %d: %w", i, err)
		}
		sm.IndexBuffer = ib
		sm.CanRender = true
	}
	return nil
}

/**
 * @brief Destroys every sub-mesh index buffer, then the shared vertex buffer.
 */
func (m *StaticMesh) DestroyGPUBuffers(allocator gpu.Allocator) {
	for i := range m.SubMeshes {
		sm := &m.SubMeshes[i]
		if sm.IndexBuffer.Valid() {
			allocator.DestroyBuffer(sm.IndexBuffer)
		}
		sm.IndexBuffer = gpu.Buffer{}
		sm.CanRender = false
	}
	if m.VertexBuffer.Valid() {
		allocator.DestroyBuffer(m.VertexBuffer)
	}
	m.VertexBuffer = gpu.Buffer{}
}
