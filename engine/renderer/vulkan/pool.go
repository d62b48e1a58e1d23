package vulkan

import "sync"

type LockGroup string

const (
	PipelineManagement LockGroup = "pipeline_management"
	ShaderManagement   LockGroup = "shader_management"
	BufferManagement   LockGroup = "buffer_management"
	MemoryManagement   LockGroup = "memory_management"
)

/**
 * @brief Serializes Vulkan calls per group of objects. Calls in different
 * groups may run at the same time; calls in the same group never do.
 */
type LockPool struct {
	mu    sync.Mutex // Protects access to the locks map
	locks map[LockGroup]*sync.Mutex
}

func NewLockPool() *LockPool {
	return &LockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create the mutex of a group.
func (lp *LockPool) lock(group LockGroup) *sync.Mutex {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	l, ok := lp.locks[group]
	if !ok {
		l = &sync.Mutex{}
		lp.locks[group] = l
	}
	return l
}

func (lp *LockPool) SafeCall(group LockGroup, fn func() error) error {
	l := lp.lock(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}
