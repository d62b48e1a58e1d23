package gpu

import "fmt"

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

/** @brief Bit flags selecting the shader stages a push constant range is visible to. */
type ShaderStageFlags uint32

const (
	ShaderStageFlagVertex ShaderStageFlags = 1 << iota
	ShaderStageFlagFragment
)

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
)

/**
 * @brief A range of push constant memory visible to a set of stages.
 */
type PushConstantRange struct {
	Stages ShaderStageFlags
	Offset uint32
	Size   uint32
}

type PipelineLayoutCreateInfo struct {
	/** @brief Descriptor set layouts owned by the rendering layer. */
	DescriptorSetLayouts []DescriptorSetLayout
	/** @brief Push constant ranges. The asset record appends its loaded ranges here. */
	PushConstantRanges []PushConstantRange
}

type ShaderModuleCreateInfo struct {
	Stage ShaderStage
	/** @brief SPIR-V words. */
	Code []uint32
}

/**
 * @brief A shader stage referenced by a pipeline while it is being built.
 */
type PipelineShaderStage struct {
	Stage      ShaderStage
	Module     ShaderModule
	EntryPoint string
}

/**
 * @brief A single per-vertex attribute inside the bound vertex buffer.
 */
type VertexAttribute struct {
	Location   uint32
	Offset     uint32
	Components uint32
}

/**
 * @brief Describes where a pipeline renders to. Supplied by the rendering layer.
 */
type RenderTarget struct {
	RenderPass RenderPass
	Width      uint32
	Height     uint32
}

/**
 * @brief Fixed-function state loaded from a pipeline descriptor file.
 */
type PipelineSettings struct {
	CullMode   FaceCullMode
	Wireframe  bool
	DepthTest  bool
	DepthWrite bool
	Blend      bool
	Topology   PrimitiveTopology
}

type GraphicsPipelineCreateInfo struct {
	Settings     PipelineSettings
	Layout       PipelineLayout
	Target       RenderTarget
	Stages       []PipelineShaderStage
	VertexStride uint32
	Attributes   []VertexAttribute
}
