package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

func (d *Device) CreateShaderModule(info gpu.ShaderModuleCreateInfo) (gpu.ShaderModule, error) {
	if len(info.Code) == 0 {
		return 0, fmt.Errorf("%w: empty %s shader code", core.ErrInvalidShader, info.Stage)
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(info.Code) * 4),
		PCode:    info.Code,
	}

	var module vk.ShaderModule
	if err := d.locks.SafeCall(ShaderManagement, func() error {
		return checkResult("vkCreateShaderModule",
			vk.CreateShaderModule(d.LogicalDevice, &createInfo, d.Allocator, &module))
	}); err != nil {
		return 0, err
	}

	h := d.nextHandle()
	d.shaderModules.put(h, module)
	return gpu.ShaderModule(h), nil
}

func (d *Device) DestroyShaderModule(h gpu.ShaderModule) {
	module, ok := d.shaderModules.take(uint64(h))
	if !ok {
		return
	}
	d.locks.SafeCall(ShaderManagement, func() error {
		vk.DestroyShaderModule(d.LogicalDevice, module, d.Allocator)
		return nil
	})
}

func (d *Device) shaderStages(stages []gpu.PipelineShaderStage) ([]vk.PipelineShaderStageCreateInfo, error) {
	out := make([]vk.PipelineShaderStageCreateInfo, len(stages))
	for i, s := range stages {
		module, ok := d.shaderModules.get(uint64(s.Module))
		if !ok {
			return nil, fmt.Errorf("%w: unknown %s shader module %d", core.ErrInvalidShader, s.Stage, s.Module)
		}
		out[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageBit(s.Stage),
			Module: module,
			PName:  s.EntryPoint + "\x00",
		}
	}
	return out, nil
}
