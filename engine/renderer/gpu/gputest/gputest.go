// Package gputest provides an in-memory gpu.Device and gpu.Allocator that
// record every call, for tests and dry runs without a graphics driver.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

var ErrInjected = errors.New("gputest: injected failure")

// Event is one recorded backend call, e.g. "create pipeline 3" or "destroy buffer 7".
type Event string

// Backend implements both gpu.Device and gpu.Allocator.
type Backend struct {
	mu     sync.Mutex
	next   uint64
	live   map[uint64]string
	events []Event

	// Failure injection. Each flag makes the matching create call fail.
	FailPipelineLayout bool
	FailShaderStage    map[gpu.ShaderStage]bool
	FailPipeline       bool
	FailVertexBuffer   bool
	// FailIndexBufferAt makes the n-th index buffer creation fail (1-based); 0 disables it.
	FailIndexBufferAt int

	indexBuffers int

	// Last creation parameters, kept for assertions.
	LastLayoutInfo   gpu.PipelineLayoutCreateInfo
	LastPipelineInfo gpu.GraphicsPipelineCreateInfo
}

func NewBackend() *Backend {
	return &Backend{
		live:            make(map[uint64]string),
		FailShaderStage: make(map[gpu.ShaderStage]bool),
	}
}

func (b *Backend) create(kind string) uint64 {
	b.next++
	b.live[b.next] = kind
	b.events = append(b.events, Event(fmt.Sprintf("create %s %d", kind, b.next)))
	return b.next
}

func (b *Backend) destroy(kind string, h uint64) {
	if h == 0 {
		return
	}
	if got, ok := b.live[h]; !ok || got != kind {
		b.events = append(b.events, Event(fmt.Sprintf("invalid destroy %s %d", kind, h)))
		return
	}
	delete(b.live, h)
	b.events = append(b.events, Event(fmt.Sprintf("destroy %s %d", kind, h)))
}

func (b *Backend) CreatePipelineLayout(info gpu.PipelineLayoutCreateInfo) (gpu.PipelineLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailPipelineLayout {
		return 0, ErrInjected
	}
	b.LastLayoutInfo = info
	return gpu.PipelineLayout(b.create("layout")), nil
}

func (b *Backend) DestroyPipelineLayout(layout gpu.PipelineLayout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroy("layout", uint64(layout))
}

func (b *Backend) CreateShaderModule(info gpu.ShaderModuleCreateInfo) (gpu.ShaderModule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailShaderStage[info.Stage] {
		return 0, ErrInjected
	}
	return gpu.ShaderModule(b.create("shader")), nil
}

func (b *Backend) DestroyShaderModule(module gpu.ShaderModule) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroy("shader", uint64(module))
}

func (b *Backend) CreateGraphicsPipeline(info gpu.GraphicsPipelineCreateInfo) (gpu.Pipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailPipeline {
		return 0, ErrInjected
	}
	b.LastPipelineInfo = info
	return gpu.Pipeline(b.create("pipeline")), nil
}

func (b *Backend) DestroyPipeline(pipeline gpu.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroy("pipeline", uint64(pipeline))
}

func (b *Backend) CreateVertexBuffer(data []byte, stride uint32, count uint32) (gpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailVertexBuffer {
		return gpu.Buffer{}, ErrInjected
	}
	if uint64(len(data)) != uint64(stride)*uint64(count) {
		return gpu.Buffer{}, fmt.Errorf("gputest: vertex data is %d bytes, want %d", len(data), stride*count)
	}
	return gpu.Buffer{Handle: b.create("buffer"), Size: uint64(len(data)), Count: count}, nil
}

func (b *Backend) CreateIndexBuffer(indices []uint32) (gpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.indexBuffers++
	if b.FailIndexBufferAt > 0 && b.indexBuffers == b.FailIndexBufferAt {
		return gpu.Buffer{}, ErrInjected
	}
	return gpu.Buffer{Handle: b.create("buffer"), Size: uint64(len(indices)) * 4, Count: uint32(len(indices))}, nil
}

func (b *Backend) DestroyBuffer(buffer gpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroy("buffer", buffer.Handle)
}

// Live returns how many objects of kind ("layout", "shader", "pipeline", "buffer") are alive.
func (b *Backend) Live(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, k := range b.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Events returns a copy of every recorded call in order.
func (b *Backend) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

var (
	_ gpu.Device    = (*Backend)(nil)
	_ gpu.Allocator = (*Backend)(nil)
)
