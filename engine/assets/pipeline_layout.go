package assets

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/assets/loaders"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

/**
 * @brief A pipeline layout asset: a push constant descriptor file and, once
 * created, the GPU layout object.
 */
type PipelineLayout struct {
	record

	pushConstantFile string
	pushConstants    []gpu.PushConstantRange

	handle gpu.PipelineLayout
}

func newPipelineLayout(id uint64, name, pushConstantFile string) *PipelineLayout {
	pl := &PipelineLayout{pushConstantFile: pushConstantFile}
	pl.init(id, name, KindPipelineLayout, pushConstantFile)
	return pl
}

/**
 * @brief Parses the push constant descriptor. Calling it again once loaded
 * logs a warning and returns nil without touching the file.
 */
func (pl *PipelineLayout) LoadSettings() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.alreadyLoaded() {
		return nil
	}
	ranges, err := loaders.LoadPushConstants(pl.pushConstantFile)
	if err != nil {
		return fmt.Errorf("failed to load push constants for pipeline layout %q: %w", pl.name, err)
	}
	if err := pl.checkTransition(StateSettingsLoaded); err != nil {
		return err
	}
	pl.pushConstants = ranges
	pl.state = StateSettingsLoaded
	core.LogDebug("Pipeline layout %q loaded %d push constant range(s).", pl.name, len(ranges))
	return nil
}

/**
 * @brief Creates the GPU layout from info plus the loaded push constant ranges.
 * On failure the record stays in StateSettingsLoaded so the call can be retried.
 */
func (pl *PipelineLayout) Create(info gpu.PipelineLayoutCreateInfo, device gpu.Device) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if err := pl.requireSettings(); err != nil {
		return err
	}

	ranges := make([]gpu.PushConstantRange, 0, len(info.PushConstantRanges)+len(pl.pushConstants))
	ranges = append(ranges, info.PushConstantRanges...)
	ranges = append(ranges, pl.pushConstants...)
	if len(ranges) > loaders.MaxPushConstantRanges {
		return fmt.Errorf("pipeline layout %q: cannot have more than %d push constant ranges. Passed count: %d",
			pl.name, loaders.MaxPushConstantRanges, len(ranges))
	}
	info.PushConstantRanges = ranges

	handle, err := device.CreatePipelineLayout(info)
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout %q: %w", pl.name, err)
	}
	pl.handle = handle
	pl.state = StateCreated
	core.LogDebug("Pipeline layout %q created.", pl.name)
	return nil
}

/**
 * @brief Releases the GPU layout. Does nothing unless the layout was created.
 */
func (pl *PipelineLayout) Destroy(device gpu.Device) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.state != StateCreated {
		return
	}
	device.DestroyPipelineLayout(pl.handle)
	pl.handle = 0
	pl.state = StateDestroyed
}

// Handle returns the GPU layout, or 0 when it does not exist.
func (pl *PipelineLayout) Handle() gpu.PipelineLayout {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.handle
}

func (pl *PipelineLayout) PushConstants() []gpu.PushConstantRange {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	out := make([]gpu.PushConstantRange, len(pl.pushConstants))
	copy(out, pl.pushConstants)
	return out
}

func (pl *PipelineLayout) createdHandle() (gpu.PipelineLayout, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.handle, pl.state == StateCreated
}
