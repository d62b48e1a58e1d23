package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

type pipelineFile struct {
	CullMode   string `toml:"cullMode"`
	Wireframe  bool   `toml:"wireframe"`
	DepthTest  *bool  `toml:"depthTest"`
	DepthWrite *bool  `toml:"depthWrite"`
	Blend      bool   `toml:"blend"`
	Topology   string `toml:"topology"`
}

/**
 * @brief Loads the fixed-function state of a graphics pipeline.
 * Missing fields default to back-face culling, depth test and write on,
 * blending off and a triangle list.
 */
func LoadPipelineSettings(path string) (gpu.PipelineSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gpu.PipelineSettings{}, err
	}
	var pf pipelineFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return gpu.PipelineSettings{}, fmt.Errorf("%w: %q: %v", core.ErrMalformedDescriptor, path, err)
	}

	settings := gpu.PipelineSettings{
		Wireframe:  pf.Wireframe,
		DepthTest:  true,
		DepthWrite: true,
		Blend:      pf.Blend,
	}
	if pf.DepthTest != nil {
		settings.DepthTest = *pf.DepthTest
	}
	if pf.DepthWrite != nil {
		settings.DepthWrite = *pf.DepthWrite
	}

	switch pf.CullMode {
	case "none":
		settings.CullMode = gpu.FaceCullModeNone
	case "front":
		settings.CullMode = gpu.FaceCullModeFront
	case "front_and_back":
		settings.CullMode = gpu.FaceCullModeFrontAndBack
	case "", "back":
		settings.CullMode = gpu.FaceCullModeBack
	default:
		return gpu.PipelineSettings{}, fmt.Errorf("%w: %q has unknown cullMode %q", core.ErrMalformedDescriptor, path, pf.CullMode)
	}

	switch pf.Topology {
	case "", "triangle_list":
		settings.Topology = gpu.PrimitiveTopologyTriangleList
	case "triangle_strip":
		settings.Topology = gpu.PrimitiveTopologyTriangleStrip
	case "line_list":
		settings.Topology = gpu.PrimitiveTopologyLineList
	default:
		return gpu.PipelineSettings{}, fmt.Errorf("%w: %q has unknown topology %q", core.ErrMalformedDescriptor, path, pf.Topology)
	}

	return settings, nil
}
