package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

type shaderFile struct {
	Stage      string `toml:"stage"`
	EntryPoint string `toml:"entryPoint"`
	Binary     string `toml:"binary"`
}

/**
 * @brief A shader descriptor plus the SPIR-V it points at.
 */
type Shader struct {
	Stage      gpu.ShaderStage
	EntryPoint string
	/** @brief The resolved path of the SPIR-V binary. */
	BinaryPath string
	Code       []uint32
}

/**
 * @brief Loads a shader descriptor and its binary. The binary path is relative
 * to the descriptor's directory unless absolute.
 */
func LoadShader(path string) (*Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf shaderFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", core.ErrMalformedDescriptor, path, err)
	}

	var stage gpu.ShaderStage
	switch sf.Stage {
	case "vertex":
		stage = gpu.ShaderStageVertex
	case "fragment":
		stage = gpu.ShaderStageFragment
	default:
		return nil, fmt.Errorf("%w: %q has unknown shader stage %q", core.ErrMalformedDescriptor, path, sf.Stage)
	}
	if sf.Binary == "" {
		return nil, fmt.Errorf("%w: %q has no binary", core.ErrMalformedDescriptor, path)
	}
	if sf.EntryPoint == "" {
		sf.EntryPoint = "main"
	}

	binPath := sf.Binary
	if !filepath.IsAbs(binPath) {
		binPath = filepath.Join(filepath.Dir(path), binPath)
	}
	code, err := LoadSPIRV(binPath)
	if err != nil {
		return nil, err
	}

	return &Shader{
		Stage:      stage,
		EntryPoint: sf.EntryPoint,
		BinaryPath: binPath,
		Code:       code,
	}, nil
}
