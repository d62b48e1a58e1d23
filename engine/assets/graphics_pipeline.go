package assets

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/assets/loaders"
	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

/**
 * @brief A graphics pipeline asset: a pipeline descriptor, a vertex and a
 * fragment shader descriptor, and once created the GPU pipeline.
 */
type GraphicsPipeline struct {
	record

	pipelineFile       string
	vertexShaderFile   string
	fragmentShaderFile string

	settings gpu.PipelineSettings
	vertex   *loaders.Shader
	fragment *loaders.Shader

	handle gpu.Pipeline
}

func newGraphicsPipeline(id uint64, name, pipelineFile, vertexShaderFile, fragmentShaderFile string) *GraphicsPipeline {
	gp := &GraphicsPipeline{
		pipelineFile:       pipelineFile,
		vertexShaderFile:   vertexShaderFile,
		fragmentShaderFile: fragmentShaderFile,
	}
	gp.init(id, name, KindGraphicsPipeline, pipelineFile, vertexShaderFile, fragmentShaderFile)
	return gp
}

/**
 * @brief Loads the pipeline descriptor and both shaders. Either all three are
 * kept or none are: the record only changes state once every file parsed.
 */
func (gp *GraphicsPipeline) LoadSettingsAndShaders() error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.alreadyLoaded() {
		return nil
	}

	settings, err := loaders.LoadPipelineSettings(gp.pipelineFile)
	if err != nil {
		return fmt.Errorf("failed to load settings for graphics pipeline %q: %w", gp.name, err)
	}
	vertex, err := loadStage(gp.vertexShaderFile, gpu.ShaderStageVertex)
	if err != nil {
		return fmt.Errorf("failed to load vertex shader for graphics pipeline %q: %w", gp.name, err)
	}
	fragment, err := loadStage(gp.fragmentShaderFile, gpu.ShaderStageFragment)
	if err != nil {
		return fmt.Errorf("failed to load fragment shader for graphics pipeline %q: %w", gp.name, err)
	}

	if err := gp.checkTransition(StateSettingsLoaded); err != nil {
		return err
	}
	gp.settings = settings
	gp.vertex = vertex
	gp.fragment = fragment
	gp.state = StateSettingsLoaded
	core.LogDebug("Graphics pipeline %q loaded settings and shaders.", gp.name)
	return nil
}

func loadStage(path string, stage gpu.ShaderStage) (*loaders.Shader, error) {
	shader, err := loaders.LoadShader(path)
	if err != nil {
		return nil, err
	}
	if shader.Stage != stage {
		return nil, fmt.Errorf("%w: %q is a %s shader, want %s", core.ErrMalformedDescriptor, path, shader.Stage, stage)
	}
	return shader, nil
}

/**
 * @brief Builds the GPU pipeline against a created layout. The shader modules
 * only live for the duration of this call; they are destroyed whether or not
 * the pipeline could be created.
 */
func (gp *GraphicsPipeline) Create(device gpu.Device, layout *PipelineLayout, target gpu.RenderTarget) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if err := gp.requireSettings(); err != nil {
		return err
	}
	if layout == nil {
		return fmt.Errorf("%w: graphics pipeline %q has no pipeline layout", core.ErrDependencyNotCreated, gp.name)
	}
	layoutHandle, ok := layout.createdHandle()
	if !ok {
		return fmt.Errorf("%w: graphics pipeline %q needs pipeline layout %q to be created first",
			core.ErrDependencyNotCreated, gp.name, layout.Name())
	}

	vert, err := device.CreateShaderModule(gpu.ShaderModuleCreateInfo{Stage: gpu.ShaderStageVertex, Code: gp.vertex.Code})
	if err != nil {
		return fmt.Errorf("failed to create vertex shader module for %q: %w", gp.name, err)
	}
	defer device.DestroyShaderModule(vert)

	frag, err := device.CreateShaderModule(gpu.ShaderModuleCreateInfo{Stage: gpu.ShaderStageFragment, Code: gp.fragment.Code})
	if err != nil {
		return fmt.Errorf("failed to create fragment shader module for %q: %w", gp.name, err)
	}
	defer device.DestroyShaderModule(frag)

	handle, err := device.CreateGraphicsPipeline(gpu.GraphicsPipelineCreateInfo{
		Settings: gp.settings,
		Layout:   layoutHandle,
		Target:   target,
		Stages: []gpu.PipelineShaderStage{
			{Stage: gpu.ShaderStageVertex, Module: vert, EntryPoint: gp.vertex.EntryPoint},
			{Stage: gpu.ShaderStageFragment, Module: frag, EntryPoint: gp.fragment.EntryPoint},
		},
		VertexStride: mesh.VertexStride,
		Attributes:   mesh.VertexAttributes(),
	})
	if err != nil {
		return fmt.Errorf("failed to create graphics pipeline %q: %w", gp.name, err)
	}

	gp.handle = handle
	gp.state = StateCreated
	core.LogDebug("Graphics pipeline %q created.", gp.name)
	return nil
}

/**
 * @brief Releases the GPU pipeline. Does nothing unless the pipeline was created.
 */
func (gp *GraphicsPipeline) Destroy(device gpu.Device) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.state != StateCreated {
		return
	}
	device.DestroyPipeline(gp.handle)
	gp.handle = 0
	gp.state = StateDestroyed
}

// Handle returns the GPU pipeline, or 0 when it does not exist.
func (gp *GraphicsPipeline) Handle() gpu.Pipeline {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.handle
}

func (gp *GraphicsPipeline) Settings() gpu.PipelineSettings {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.settings
}
