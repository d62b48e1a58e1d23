package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

func cullModeFlags(mode gpu.FaceCullMode) vk.CullModeFlags {
	switch mode {
	case gpu.FaceCullModeNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case gpu.FaceCullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case gpu.FaceCullModeFrontAndBack:
		return vk.CullModeFlags(vk.CullModeFrontAndBack)
	default:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
}

func primitiveTopology(t gpu.PrimitiveTopology) vk.PrimitiveTopology {
	switch t {
	case gpu.PrimitiveTopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case gpu.PrimitiveTopologyLineList:
		return vk.PrimitiveTopologyLineList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func shaderStageBit(stage gpu.ShaderStage) vk.ShaderStageFlagBits {
	if stage == gpu.ShaderStageFragment {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

func shaderStageFlags(flags gpu.ShaderStageFlags) vk.ShaderStageFlags {
	var out vk.ShaderStageFlags
	if flags&gpu.ShaderStageFlagVertex != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if flags&gpu.ShaderStageFlagFragment != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return out
}

// attributeFormat maps a float attribute of n components to its Vulkan format.
func attributeFormat(components uint32) (vk.Format, error) {
	switch components {
	case 1:
		return vk.FormatR32Sfloat, nil
	case 2:
		return vk.FormatR32g32Sfloat, nil
	case 3:
		return vk.FormatR32g32b32Sfloat, nil
	case 4:
		return vk.FormatR32g32b32a32Sfloat, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("vertex attribute with %d components is not supported", components)
	}
}

func vertexAttributes(attrs []gpu.VertexAttribute) ([]vk.VertexInputAttributeDescription, error) {
	out := make([]vk.VertexInputAttributeDescription, len(attrs))
	for i, a := range attrs {
		format, err := attributeFormat(a.Components)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", a.Location, err)
		}
		out[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   format,
			Offset:   a.Offset,
		}
	}
	return out, nil
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
