package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

const (
	// NOTE: 32 is the max number of ranges we can ever have, since the Vulkan spec
	// only guarantees 128 bytes with 4-byte alignment.
	MaxPushConstantRanges = 32
	MaxPushConstantBytes  = 128
)

type pushConstantFile struct {
	Ranges []struct {
		Offset uint32   `toml:"offset"`
		Size   uint32   `toml:"size"`
		Stages []string `toml:"stages"`
	} `toml:"ranges"`
}

/**
 * @brief Loads the push constant ranges of a pipeline layout. A range without
 * stages is visible to both the vertex and fragment stage.
 */
func LoadPushConstants(path string) ([]gpu.PushConstantRange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf pushConstantFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", core.ErrMalformedDescriptor, path, err)
	}
	if len(pf.Ranges) > MaxPushConstantRanges {
		return nil, fmt.Errorf("%w: %q has %d push constant ranges, max is %d",
			core.ErrMalformedDescriptor, path, len(pf.Ranges), MaxPushConstantRanges)
	}

	ranges := make([]gpu.PushConstantRange, 0, len(pf.Ranges))
	for i, r := range pf.Ranges {
		if r.Size == 0 || r.Offset%4 != 0 || r.Size%4 != 0 {
			return nil, fmt.Errorf("%w: %q range %d (offset %d, size %d) must be non-empty and 4-byte aligned",
				core.ErrMalformedDescriptor, path, i, r.Offset, r.Size)
		}
		if end := uint64(r.Offset) + uint64(r.Size); end > MaxPushConstantBytes {
			return nil, fmt.Errorf("%w: %q range %d ends at byte %d, max is %d",
				core.ErrMalformedDescriptor, path, i, end, MaxPushConstantBytes)
		}

		var stages gpu.ShaderStageFlags
		for _, s := range r.Stages {
			switch s {
			case "vertex":
				stages |= gpu.ShaderStageFlagVertex
			case "fragment":
				stages |= gpu.ShaderStageFlagFragment
			default:
				return nil, fmt.Errorf("%w: %q range %d has unknown stage %q", core.ErrMalformedDescriptor, path, i, s)
			}
		}
		if stages == 0 {
			stages = gpu.ShaderStageFlagVertex | gpu.ShaderStageFlagFragment
		}
		ranges = append(ranges, gpu.PushConstantRange{Stages: stages, Offset: r.Offset, Size: r.Size})
	}
	return ranges, nil
}
