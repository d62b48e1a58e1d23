package vulkan

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

func (d *Device) CreateVertexBuffer(data []byte, stride uint32, count uint32) (gpu.Buffer, error) {
	if uint64(len(data)) != uint64(stride)*uint64(count) {
		return gpu.Buffer{}, fmt.Errorf("vertex data is %d bytes, want %d vertices of %d bytes", len(data), count, stride)
	}
	return d.createBuffer(data, count, vk.BufferUsageVertexBufferBit)
}

func (d *Device) CreateIndexBuffer(indices []uint32) (gpu.Buffer, error) {
	data := make([]byte, 0, len(indices)*4)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint32(data, i)
	}
	return d.createBuffer(data, uint32(len(indices)), vk.BufferUsageIndexBufferBit)
}

/**
 * @brief Creates a host visible, host coherent buffer and uploads data into it.
 * Anything created before a failing step is released again.
 */
func (d *Device) createBuffer(data []byte, count uint32, usage vk.BufferUsageFlagBits) (gpu.Buffer, error) {
	if len(data) == 0 {
		return gpu.Buffer{}, fmt.Errorf("cannot create an empty buffer")
	}
	size := vk.DeviceSize(len(data))

	var buf buffer
	err := d.locks.SafeCall(BufferManagement, func() error {
		createInfo := vk.BufferCreateInfo{
			SType:       vk.StructureTypeBufferCreateInfo,
			Size:        size,
			Usage:       vk.BufferUsageFlags(usage),
			SharingMode: vk.SharingModeExclusive,
		}
		return checkResult("vkCreateBuffer", vk.CreateBuffer(d.LogicalDevice, &createInfo, d.Allocator, &buf.handle))
	})
	if err != nil {
		return gpu.Buffer{}, err
	}

	if err := d.allocateAndUpload(&buf, data); err != nil {
		d.releaseBuffer(buf)
		return gpu.Buffer{}, err
	}

	h := d.nextHandle()
	d.buffers.put(h, buf)
	return gpu.Buffer{Handle: h, Size: uint64(size), Count: count}, nil
}

func (d *Device) allocateAndUpload(buf *buffer, data []byte) error {
	return d.locks.SafeCall(MemoryManagement, func() error {
		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(d.LogicalDevice, buf.handle, &requirements)
		requirements.Deref()

		flags := uint32(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
		index := d.FindMemoryIndex(requirements.MemoryTypeBits, flags)
		if index == -1 {
			return fmt.Errorf("no host visible memory type for a %d byte buffer", len(data))
		}

		allocateInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: uint32(index),
		}
		if err := checkResult("vkAllocateMemory",
			vk.AllocateMemory(d.LogicalDevice, &allocateInfo, d.Allocator, &buf.memory)); err != nil {
			return err
		}
		if err := checkResult("vkBindBufferMemory",
			vk.BindBufferMemory(d.LogicalDevice, buf.handle, buf.memory, 0)); err != nil {
			return err
		}

		var mapped unsafe.Pointer
		if err := checkResult("vkMapMemory",
			vk.MapMemory(d.LogicalDevice, buf.memory, 0, vk.DeviceSize(len(data)), 0, &mapped)); err != nil {
			return err
		}
		vk.Memcopy(mapped, data)
		vk.UnmapMemory(d.LogicalDevice, buf.memory)
		return nil
	})
}

func (d *Device) releaseBuffer(buf buffer) {
	d.locks.SafeCall(BufferManagement, func() error {
		if buf.handle != vk.NullBuffer {
			vk.DestroyBuffer(d.LogicalDevice, buf.handle, d.Allocator)
		}
		if buf.memory != vk.NullDeviceMemory {
			vk.FreeMemory(d.LogicalDevice, buf.memory, d.Allocator)
		}
		return nil
	})
}

func (d *Device) DestroyBuffer(b gpu.Buffer) {
	buf, ok := d.buffers.take(b.Handle)
	if !ok {
		return
	}
	d.releaseBuffer(buf)
}

// LiveBuffers returns how many buffers were created and not yet destroyed.
func (d *Device) LiveBuffers() int {
	return d.buffers.len()
}
