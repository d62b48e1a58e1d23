// Package gpu is the boundary between the asset core and a graphics backend.
// Handles are opaque: only the backend that issued one can interpret it.
package gpu

/** @brief An opaque pipeline layout handle. Zero means "none". */
type PipelineLayout uint64

/** @brief An opaque graphics pipeline handle. Zero means "none". */
type Pipeline uint64

/** @brief An opaque shader module handle. Zero means "none". */
type ShaderModule uint64

/** @brief An opaque render pass handle supplied by the rendering layer. */
type RenderPass uint64

/** @brief An opaque descriptor set layout handle supplied by the rendering layer. */
type DescriptorSetLayout uint64

/**
 * @brief A GPU buffer allocated through an Allocator.
 */
type Buffer struct {
	/** @brief The backend handle. Zero means the buffer does not exist. */
	Handle uint64
	/** @brief The size in bytes. */
	Size uint64
	/** @brief The number of elements (vertices or indices) held. */
	Count uint32
}

// Valid reports whether the buffer was created and not yet destroyed.
func (b Buffer) Valid() bool {
	return b.Handle != 0
}

/**
 * @brief Creates and destroys pipeline objects. Calls on one Device must be
 * externally synchronized.
 */
type Device interface {
	CreatePipelineLayout(info PipelineLayoutCreateInfo) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)

	CreateShaderModule(info ShaderModuleCreateInfo) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)

	CreateGraphicsPipeline(info GraphicsPipelineCreateInfo) (Pipeline, error)
	DestroyPipeline(pipeline Pipeline)
}

/**
 * @brief Allocates device memory backed buffers for geometry.
 */
type Allocator interface {
	CreateVertexBuffer(data []byte, stride uint32, count uint32) (Buffer, error)
	CreateIndexBuffer(indices []uint32) (Buffer, error)
	DestroyBuffer(buffer Buffer)
}
