package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
	"golang.org/x/exp/slices"
)

const defaultLoadWorkers = 4

type Option func(*Manager)

// WithBasePath makes relative source paths resolve against dir.
func WithBasePath(dir string) Option {
	return func(m *Manager) {
		m.basePath = dir
	}
}

// WithLoadWorkers bounds how many records LoadAll reads at once.
func WithLoadWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.loadWorkers = n
		}
	}
}

/**
 * @brief Owns every asset record and the GPU resources behind them. Callers get
 * identifiers or borrowed record pointers, never ownership.
 */
type Manager struct {
	names *core.NameRegistry

	mu              sync.RWMutex
	pipelineLayouts map[uint64]*PipelineLayout
	pipelines       map[uint64]*GraphicsPipeline
	staticMeshes    map[uint64]*StaticMesh

	// Serializes every create and destroy call against the device.
	deviceMu sync.Mutex

	basePath    string
	loadWorkers int
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		names:           core.NewNameRegistry(),
		pipelineLayouts: make(map[uint64]*PipelineLayout),
		pipelines:       make(map[uint64]*GraphicsPipeline),
		staticMeshes:    make(map[uint64]*StaticMesh),
		loadWorkers:     defaultLoadWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) resolve(path string) string {
	if m.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.basePath, path)
}

// allocateID must be called with mu held for writing.
func (m *Manager) allocateID(name string) (uint64, error) {
	if name == "" {
		return core.InvalidID, core.ErrInvalidName
	}
	if id, ok := m.names.Lookup(name); ok {
		return core.InvalidID, fmt.Errorf("%w: %q (id %d)", core.ErrDuplicateName, name, id)
	}
	return m.names.GenerateID(name), nil
}

/**
 * @brief Registers a graphics pipeline. No file is read until its settings are loaded.
 */
func (m *Manager) RegisterGraphicsPipeline(name, pipelineFile, vertexShaderFile, fragmentShaderFile string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.allocateID(name)
	if err != nil {
		return core.InvalidID, err
	}
	m.pipelines[id] = newGraphicsPipeline(id, name,
		m.resolve(pipelineFile), m.resolve(vertexShaderFile), m.resolve(fragmentShaderFile))
	core.LogDebug("Registered graphics pipeline %q with id %d.", name, id)
	return id, nil
}

/**
 * @brief Registers a pipeline layout described by a push constant file.
 */
func (m *Manager) RegisterPipelineLayout(name, pushConstantFile string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.allocateID(name)
	if err != nil {
		return core.InvalidID, err
	}
	m.pipelineLayouts[id] = newPipelineLayout(id, name, m.resolve(pushConstantFile))
	core.LogDebug("Registered pipeline layout %q with id %d.", name, id)
	return id, nil
}

/**
 * @brief Registers a static mesh. Paths missing the .smeshdecl or .smesh
 * extension get it appended, with a warning.
 */
func (m *Manager) RegisterStaticMesh(name, declFile, binaryFile string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.allocateID(name)
	if err != nil {
		return core.InvalidID, err
	}
	paths := mesh.NormalizePaths(m.resolve(declFile), m.resolve(binaryFile))
	m.staticMeshes[id] = newStaticMesh(id, name, paths.Decl, paths.Binary)
	core.LogDebug("Registered static mesh %q with id %d.", name, id)
	return id, nil
}

func (m *Manager) IsRegistered(kind Kind, id uint64) bool {
	_, ok := m.Lookup(kind, id)
	return ok
}

// Lookup returns the record of the given kind, or false.
func (m *Manager) Lookup(kind Kind, id uint64) (Asset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch kind {
	case KindPipelineLayout:
		if a, ok := m.pipelineLayouts[id]; ok {
			return a, true
		}
	case KindGraphicsPipeline:
		if a, ok := m.pipelines[id]; ok {
			return a, true
		}
	case KindStaticMesh:
		if a, ok := m.staticMeshes[id]; ok {
			return a, true
		}
	}
	return nil, false
}

func (m *Manager) PipelineLayout(id uint64) (*PipelineLayout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pl, ok := m.pipelineLayouts[id]
	return pl, ok
}

func (m *Manager) GraphicsPipeline(id uint64) (*GraphicsPipeline, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gp, ok := m.pipelines[id]
	return gp, ok
}

func (m *Manager) StaticMesh(id uint64) (*StaticMesh, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sm, ok := m.staticMeshes[id]
	return sm, ok
}

// IDOf returns the identifier registered for name.
func (m *Manager) IDOf(name string) (uint64, bool) {
	return m.names.Lookup(name)
}

func (m *Manager) Len(kind Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch kind {
	case KindPipelineLayout:
		return len(m.pipelineLayouts)
	case KindGraphicsPipeline:
		return len(m.pipelines)
	case KindStaticMesh:
		return len(m.staticMeshes)
	default:
		return 0
	}
}

/**
 * @brief Returns every record: pipeline layouts, then graphics pipelines, then
 * static meshes, each in ascending id order.
 */
func (m *Manager) Assets() []Asset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Asset, 0, len(m.pipelineLayouts)+len(m.pipelines)+len(m.staticMeshes))
	for _, id := range sortedIDs(m.pipelineLayouts) {
		out = append(out, m.pipelineLayouts[id])
	}
	for _, id := range sortedIDs(m.pipelines) {
		out = append(out, m.pipelines[id])
	}
	for _, id := range sortedIDs(m.staticMeshes) {
		out = append(out, m.staticMeshes[id])
	}
	return out
}

func sortedIDs[T any](records map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func notFound(kind Kind, id uint64) error {
	return fmt.Errorf("%w: %s with id %d", core.ErrAssetNotFound, kind, id)
}

// LoadSettings loads the source files of one record.
func (m *Manager) LoadSettings(kind Kind, id uint64) error {
	a, ok := m.Lookup(kind, id)
	if !ok {
		return notFound(kind, id)
	}
	return loadSettings(a)
}

func loadSettings(a Asset) error {
	switch r := a.(type) {
	case *PipelineLayout:
		return r.LoadSettings()
	case *GraphicsPipeline:
		return r.LoadSettingsAndShaders()
	case *StaticMesh:
		return r.LoadSettings()
	default:
		return fmt.Errorf("unknown asset type %T", a)
	}
}

func (m *Manager) CreatePipelineLayout(id uint64, info gpu.PipelineLayoutCreateInfo, device gpu.Device) error {
	pl, ok := m.PipelineLayout(id)
	if !ok {
		return notFound(KindPipelineLayout, id)
	}
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	return pl.Create(info, device)
}

func (m *Manager) CreateGraphicsPipeline(id, layoutID uint64, device gpu.Device, target gpu.RenderTarget) error {
	gp, ok := m.GraphicsPipeline(id)
	if !ok {
		return notFound(KindGraphicsPipeline, id)
	}
	pl, ok := m.PipelineLayout(layoutID)
	if !ok {
		return notFound(KindPipelineLayout, layoutID)
	}
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	return gp.Create(device, pl, target)
}

func (m *Manager) InitializeStaticMesh(id uint64, allocator gpu.Allocator) error {
	sm, ok := m.StaticMesh(id)
	if !ok {
		return notFound(KindStaticMesh, id)
	}
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	return sm.InitializeGPUBuffers(allocator)
}

/**
 * @brief Releases every created GPU resource: static mesh buffers first, then
 * graphics pipelines, then pipeline layouts. Records that never reached
 * StateCreated are skipped, so calling it again is a no-op. Waits for any
 * in-flight creation through the manager to finish first.
 */
func (m *Manager) DestroyAll(device gpu.Device, allocator gpu.Allocator) {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	m.mu.RLock()
	defer m.mu.RUnlock()

	destroyed := 0
	for _, id := range sortedIDs(m.staticMeshes) {
		if sm := m.staticMeshes[id]; sm.ResourceCreated() {
			sm.Destroy(allocator)
			destroyed++
		}
	}
	for _, id := range sortedIDs(m.pipelines) {
		if gp := m.pipelines[id]; gp.ResourceCreated() {
			gp.Destroy(device)
			destroyed++
		}
	}
	for _, id := range sortedIDs(m.pipelineLayouts) {
		if pl := m.pipelineLayouts[id]; pl.ResourceCreated() {
			pl.Destroy(device)
			destroyed++
		}
	}

	if destroyed == 0 {
		core.LogDebug("DestroyAll: no GPU resources to release.")
		return
	}
	core.LogInfo("DestroyAll: released %d GPU resource(s).", destroyed)
}
