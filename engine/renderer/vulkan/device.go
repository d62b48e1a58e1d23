package vulkan

import (
	"sync"
	"sync/atomic"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

/**
 * @brief Maps the opaque handles handed to the asset layer to Vulkan objects.
 */
type handleTable[T any] struct {
	mu    sync.Mutex
	items map[uint64]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{items: make(map[uint64]T)}
}

func (t *handleTable[T]) put(h uint64, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[h] = v
}

func (t *handleTable[T]) get(h uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	return v, ok
}

// take removes and returns the object behind h.
func (t *handleTable[T]) take(h uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	delete(t.items, h)
	return v, ok
}

func (t *handleTable[T]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

type buffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
}

/**
 * @brief Implements gpu.Device and gpu.Allocator on a logical device owned by
 * the rendering layer. Render passes and descriptor set layouts are owned
 * there too and are registered here to get a handle.
 */
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Allocator      *vk.AllocationCallbacks

	locks *LockPool
	next  atomic.Uint64

	renderPasses         *handleTable[vk.RenderPass]
	descriptorSetLayouts *handleTable[vk.DescriptorSetLayout]
	pipelineLayouts      *handleTable[vk.PipelineLayout]
	shaderModules        *handleTable[vk.ShaderModule]
	pipelines            *handleTable[vk.Pipeline]
	buffers              *handleTable[buffer]
}

func NewDevice(physical vk.PhysicalDevice, logical vk.Device, allocator *vk.AllocationCallbacks) *Device {
	return &Device{
		PhysicalDevice:       physical,
		LogicalDevice:        logical,
		Allocator:            allocator,
		locks:                NewLockPool(),
		renderPasses:         newHandleTable[vk.RenderPass](),
		descriptorSetLayouts: newHandleTable[vk.DescriptorSetLayout](),
		pipelineLayouts:      newHandleTable[vk.PipelineLayout](),
		shaderModules:        newHandleTable[vk.ShaderModule](),
		pipelines:            newHandleTable[vk.Pipeline](),
		buffers:              newHandleTable[buffer](),
	}
}

func (d *Device) nextHandle() uint64 {
	return d.next.Add(1)
}

// RegisterRenderPass makes a render pass owned by the rendering layer usable in a gpu.RenderTarget.
func (d *Device) RegisterRenderPass(rp vk.RenderPass) gpu.RenderPass {
	h := d.nextHandle()
	d.renderPasses.put(h, rp)
	return gpu.RenderPass(h)
}

func (d *Device) RegisterDescriptorSetLayout(l vk.DescriptorSetLayout) gpu.DescriptorSetLayout {
	h := d.nextHandle()
	d.descriptorSetLayouts.put(h, l)
	return gpu.DescriptorSetLayout(h)
}

// PipelineLayout returns the Vulkan object behind h, for binding descriptor sets.
func (d *Device) PipelineLayout(h gpu.PipelineLayout) (vk.PipelineLayout, bool) {
	return d.pipelineLayouts.get(uint64(h))
}

func (d *Device) Pipeline(h gpu.Pipeline) (vk.Pipeline, bool) {
	return d.pipelines.get(uint64(h))
}

// Buffer returns the Vulkan buffer behind b, for binding at draw time.
func (d *Device) Buffer(b gpu.Buffer) (vk.Buffer, bool) {
	buf, ok := d.buffers.get(b.Handle)
	return buf.handle, ok
}

func (d *Device) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

var (
	_ gpu.Device    = (*Device)(nil)
	_ gpu.Allocator = (*Device)(nil)
)
