package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

// NOTE: 32 is the max number of ranges we can ever have, since the Vulkan spec only guarantees 128 bytes with 4-byte alignment.
const maxPushConstantRanges = 32

func (d *Device) CreatePipelineLayout(info gpu.PipelineLayoutCreateInfo) (gpu.PipelineLayout, error) {
	if len(info.PushConstantRanges) > maxPushConstantRanges {
		return 0, fmt.Errorf("cannot have more than %d push constant ranges. Passed count: %d",
			maxPushConstantRanges, len(info.PushConstantRanges))
	}

	setLayouts := make([]vk.DescriptorSetLayout, len(info.DescriptorSetLayouts))
	for i, h := range info.DescriptorSetLayouts {
		l, ok := d.descriptorSetLayouts.get(uint64(h))
		if !ok {
			return 0, fmt.Errorf("unknown descriptor set layout %d", h)
		}
		setLayouts[i] = l
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}
	if len(info.PushConstantRanges) > 0 {
		ranges := make([]vk.PushConstantRange, len(info.PushConstantRanges))
		for i, r := range info.PushConstantRanges {
			ranges[i] = vk.PushConstantRange{
				StageFlags: shaderStageFlags(r.Stages),
				Offset:     r.Offset,
				Size:       r.Size,
			}
		}
		createInfo.PushConstantRangeCount = uint32(len(ranges))
		createInfo.PPushConstantRanges = ranges
	}

	var layout vk.PipelineLayout
	if err := d.locks.SafeCall(PipelineManagement, func() error {
		return checkResult("vkCreatePipelineLayout",
			vk.CreatePipelineLayout(d.LogicalDevice, &createInfo, d.Allocator, &layout))
	}); err != nil {
		return 0, err
	}

	h := d.nextHandle()
	d.pipelineLayouts.put(h, layout)
	return gpu.PipelineLayout(h), nil
}

func (d *Device) DestroyPipelineLayout(h gpu.PipelineLayout) {
	layout, ok := d.pipelineLayouts.take(uint64(h))
	if !ok {
		return
	}
	d.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(d.LogicalDevice, layout, d.Allocator)
		return nil
	})
}

func (d *Device) CreateGraphicsPipeline(info gpu.GraphicsPipelineCreateInfo) (gpu.Pipeline, error) {
	layout, ok := d.pipelineLayouts.get(uint64(info.Layout))
	if !ok {
		return 0, fmt.Errorf("unknown pipeline layout %d", info.Layout)
	}
	renderPass, ok := d.renderPasses.get(uint64(info.Target.RenderPass))
	if !ok {
		return 0, fmt.Errorf("unknown render pass %d", info.Target.RenderPass)
	}
	stages, err := d.shaderStages(info.Stages)
	if err != nil {
		return 0, err
	}
	attributes, err := vertexAttributes(info.Attributes)
	if err != nil {
		return 0, err
	}
	settings := info.Settings

	// Viewport state. Viewport and scissor are dynamic, these are the initial values.
	viewport := vk.Viewport{
		X:        0,
		Y:        float32(info.Target.Height),
		Width:    float32(info.Target.Width),
		Height:   -float32(info.Target.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{Width: info.Target.Width, Height: info.Target.Height},
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	// Rasterizer
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		LineWidth:   1.0,
		CullMode:    cullModeFlags(settings.CullMode),
		FrontFace:   vk.FrontFaceCounterClockwise,
	}
	if settings.Wireframe {
		rasterizer.PolygonMode = vk.PolygonModeLine
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  boolToVk(settings.DepthTest),
		DepthWriteEnable: boolToVk(settings.DepthWrite),
		DepthCompareOp:   vk.CompareOpLess,
	}

	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         boolToVk(settings.Blend),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorSrcAlpha,
		DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateLineWidth,
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	// Vertex input: one interleaved binding.
	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    info.VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{binding},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: primitiveTopology(settings.Topology),
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	if err := d.locks.SafeCall(PipelineManagement, func() error {
		return checkResult("vkCreateGraphicsPipelines", vk.CreateGraphicsPipelines(
			d.LogicalDevice,
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			d.Allocator,
			pipelines))
	}); err != nil {
		return 0, err
	}
	if pipelines[0] == vk.NullPipeline {
		return 0, fmt.Errorf("vulkan pipeline handle is nil")
	}

	h := d.nextHandle()
	d.pipelines.put(h, pipelines[0])
	core.LogDebug("Graphics pipeline created!")
	return gpu.Pipeline(h), nil
}

func (d *Device) DestroyPipeline(h gpu.Pipeline) {
	pipeline, ok := d.pipelines.take(uint64(h))
	if !ok {
		return
	}
	d.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(d.LogicalDevice, pipeline, d.Allocator)
		return nil
	})
}
