package assets

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
	"github.com/spaghettifunk/smok/engine/renderer/gpu/gputest"
)

func TestRegisterPerformsNoIO(t *testing.T) {
	m := NewManager()
	id, err := m.RegisterPipelineLayout("ghost", "/does/not/exist.toml")
	if err != nil {
		t.Fatalf("RegisterPipelineLayout: %v", err)
	}
	if !m.IsRegistered(KindPipelineLayout, id) {
		t.Fatalf("IsRegistered(layout, %d) = false", id)
	}
	a, _ := m.Lookup(KindPipelineLayout, id)
	if a.State() != StateRegistered || a.SettingsLoaded() || a.ResourceCreated() {
		t.Fatalf("fresh record state = %s", a.State())
	}
	if err := m.LoadSettings(KindPipelineLayout, id); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadSettings error = %v, want os.ErrNotExist", err)
	}
	if a.State() != StateRegistered {
		t.Fatalf("state after failed load = %s, want registered", a.State())
	}
}

func TestRegisterRejectsDuplicateAndEmptyNames(t *testing.T) {
	m := NewManager()
	first, err := m.RegisterStaticMesh("crate", "crate.smeshdecl", "crate.smesh")
	if err != nil {
		t.Fatalf("RegisterStaticMesh: %v", err)
	}

	_, err = m.RegisterPipelineLayout("crate", "other.toml")
	if !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("duplicate register error = %v, want ErrDuplicateName", err)
	}
	if got := m.Len(KindPipelineLayout); got != 0 {
		t.Fatalf("duplicate registration stored a record")
	}
	sm, _ := m.StaticMesh(first)
	if files := sm.SourceFiles(); files[0] != "crate.smeshdecl" {
		t.Fatalf("original record was replaced: %v", files)
	}

	if _, err := m.RegisterGraphicsPipeline("", "p", "v", "f"); !errors.Is(err, core.ErrInvalidName) {
		t.Fatalf("empty name error = %v, want ErrInvalidName", err)
	}
}

func TestIsRegisteredIsPerKind(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, meshID := f.register(t)

	if layoutID == pipelineID || pipelineID == meshID || layoutID == meshID {
		t.Fatalf("ids collide: %d %d %d", layoutID, pipelineID, meshID)
	}
	if !m.IsRegistered(KindStaticMesh, meshID) || m.IsRegistered(KindPipelineLayout, meshID) {
		t.Fatalf("IsRegistered does not discriminate kinds")
	}
	if m.IsRegistered(KindGraphicsPipeline, 9999) {
		t.Fatalf("IsRegistered reported an unknown id")
	}
	if id, ok := m.IDOf("mesh"); !ok || id != pipelineID {
		t.Fatalf("IDOf(mesh) = %d, %v; want %d", id, ok, pipelineID)
	}
	if _, ok := m.Lookup(Kind(42), layoutID); ok {
		t.Fatalf("Lookup with an unknown kind succeeded")
	}
}

func TestRegisterStaticMeshAppendsExtension(t *testing.T) {
	logs := captureLog(t)
	dir := t.TempDir()
	m := NewManager(WithBasePath(dir))

	id, err := m.RegisterStaticMesh("crate", "crate.smeshdecl", "crate")
	if err != nil {
		t.Fatalf("RegisterStaticMesh: %v", err)
	}
	if !strings.Contains(logs.String(), "does not end in .smesh") {
		t.Fatalf("expected an extension warning, log was %q", logs.String())
	}

	sm, _ := m.StaticMesh(id)
	want := []string{filepath.Join(dir, "crate.smeshdecl"), filepath.Join(dir, "crate.smesh")}
	if got := sm.SourceFiles(); !slices.Equal(got, want) {
		t.Fatalf("SourceFiles() = %v, want %v", got, want)
	}

	cube := mesh.Cube()
	if err := sm.Save(cube); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := mesh.Read(want[0], want[1])
	if err != nil {
		t.Fatalf("mesh.Read: %v", err)
	}
	if len(got.Vertices) != 8 || len(got.SubMeshes) != 2 {
		t.Fatalf("read back %d vertices and %d sub-meshes, want 8 and 2", len(got.Vertices), len(got.SubMeshes))
	}
	if !slices.Equal(got.Vertices, cube.Vertices) {
		t.Fatalf("vertices changed after round trip")
	}
	for i := range cube.SubMeshes {
		if !slices.Equal(got.SubMeshes[i].Indices, cube.SubMeshes[i].Indices) {
			t.Fatalf("sub-mesh %d indices changed after round trip", i)
		}
	}
	if sm.State() != StateRegistered {
		t.Fatalf("Save changed the record state to %s", sm.State())
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, meshID := f.register(t)
	backend := gputest.NewBackend()

	for _, a := range m.Assets() {
		if err := m.LoadSettings(a.Kind(), a.ID()); err != nil {
			t.Fatalf("LoadSettings(%s %d): %v", a.Kind(), a.ID(), err)
		}
	}

	info := gpu.PipelineLayoutCreateInfo{DescriptorSetLayouts: []gpu.DescriptorSetLayout{7}}
	if err := m.CreatePipelineLayout(layoutID, info, backend); err != nil {
		t.Fatalf("CreatePipelineLayout: %v", err)
	}
	if got := backend.LastLayoutInfo.PushConstantRanges; len(got) != 1 || got[0].Size != 64 {
		t.Fatalf("layout push constants = %+v, want the loaded 64 byte range", got)
	}

	target := gpu.RenderTarget{RenderPass: 3, Width: 1280, Height: 720}
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, target); err != nil {
		t.Fatalf("CreateGraphicsPipeline: %v", err)
	}
	if err := m.InitializeStaticMesh(meshID, backend); err != nil {
		t.Fatalf("InitializeStaticMesh: %v", err)
	}

	pl, _ := m.PipelineLayout(layoutID)
	gp, _ := m.GraphicsPipeline(pipelineID)
	sm, _ := m.StaticMesh(meshID)

	pi := backend.LastPipelineInfo
	if pi.Layout != pl.Handle() || pi.Target != target || pi.VertexStride != mesh.VertexStride {
		t.Fatalf("pipeline create info = %+v", pi)
	}
	if len(pi.Stages) != 2 || pi.Stages[1].EntryPoint != "fs_main" {
		t.Fatalf("pipeline stages = %+v", pi.Stages)
	}
	if got := backend.Live("shader"); got != 0 {
		t.Fatalf("%d shader modules outlived pipeline creation", got)
	}
	for _, a := range []Asset{pl, gp, sm} {
		if !a.ResourceCreated() {
			t.Fatalf("%s not created", a.Kind())
		}
	}
	for i, sub := range sm.Mesh().SubMeshes {
		if !sub.CanRender {
			t.Fatalf("sub-mesh %d not renderable", i)
		}
	}

	m.DestroyAll(backend, backend)

	for _, kind := range []string{"layout", "pipeline", "buffer", "shader"} {
		if got := backend.Live(kind); got != 0 {
			t.Errorf("%d %s object(s) alive after DestroyAll", got, kind)
		}
	}
	for _, a := range m.Assets() {
		if a.ResourceCreated() || a.State() != StateDestroyed {
			t.Errorf("%s %q state = %s after DestroyAll", a.Kind(), a.Name(), a.State())
		}
	}
	if pl.Handle() != 0 || gp.Handle() != 0 {
		t.Errorf("handles kept after DestroyAll")
	}

	// Buffers go first, the layout last.
	var order []string
	for _, e := range backend.Events() {
		if strings.HasPrefix(string(e), "destroy ") && !strings.HasPrefix(string(e), "destroy shader") {
			order = append(order, strings.Fields(string(e))[1])
		}
	}
	want := []string{"buffer", "buffer", "buffer", "pipeline", "layout"}
	if !slices.Equal(order, want) {
		t.Fatalf("destroy order = %v, want %v", order, want)
	}

	before := len(backend.Events())
	m.DestroyAll(backend, backend)
	if after := len(backend.Events()); after != before {
		t.Fatalf("second DestroyAll issued %d backend call(s)", after-before)
	}

	if err := m.CreatePipelineLayout(layoutID, info, backend); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("create after destroy error = %v, want ErrInvalidTransition", err)
	}
}

func TestDestroyAllWithNothingCreated(t *testing.T) {
	f := newFixture(t)
	m, _, _, _ := f.register(t)
	backend := gputest.NewBackend()

	m.DestroyAll(backend, backend)
	if got := len(backend.Events()); got != 0 {
		t.Fatalf("DestroyAll issued %d backend call(s) with nothing created", got)
	}
	for _, a := range m.Assets() {
		if a.State() != StateRegistered {
			t.Fatalf("%s state = %s, want registered", a.Kind(), a.State())
		}
	}
}

func TestCreateRefusedWithoutSettings(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, meshID := f.register(t)
	backend := gputest.NewBackend()

	if err := m.CreatePipelineLayout(layoutID, gpu.PipelineLayoutCreateInfo{}, backend); !errors.Is(err, core.ErrSettingsNotLoaded) {
		t.Fatalf("CreatePipelineLayout error = %v, want ErrSettingsNotLoaded", err)
	}
	if err := m.InitializeStaticMesh(meshID, backend); !errors.Is(err, core.ErrSettingsNotLoaded) {
		t.Fatalf("InitializeStaticMesh error = %v, want ErrSettingsNotLoaded", err)
	}
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{}); !errors.Is(err, core.ErrSettingsNotLoaded) {
		t.Fatalf("CreateGraphicsPipeline error = %v, want ErrSettingsNotLoaded", err)
	}
	if got := len(backend.Events()); got != 0 {
		t.Fatalf("refused creates reached the backend %d time(s)", got)
	}
	for _, a := range m.Assets() {
		if a.State() != StateRegistered {
			t.Fatalf("%s state = %s, want registered", a.Kind(), a.State())
		}
	}
}

func TestGraphicsPipelineNeedsCreatedLayout(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, _ := f.register(t)
	backend := gputest.NewBackend()

	if err := m.LoadSettings(KindPipelineLayout, layoutID); err != nil {
		t.Fatalf("LoadSettings(layout): %v", err)
	}
	if err := m.LoadSettings(KindGraphicsPipeline, pipelineID); err != nil {
		t.Fatalf("LoadSettings(pipeline): %v", err)
	}

	err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{})
	if !errors.Is(err, core.ErrDependencyNotCreated) {
		t.Fatalf("CreateGraphicsPipeline error = %v, want ErrDependencyNotCreated", err)
	}
	gp, _ := m.GraphicsPipeline(pipelineID)
	if gp.ResourceCreated() || gp.State() != StateSettingsLoaded {
		t.Fatalf("pipeline state = %s after refused create", gp.State())
	}
	if err := m.CreateGraphicsPipeline(pipelineID, 9999, backend, gpu.RenderTarget{}); !errors.Is(err, core.ErrAssetNotFound) {
		t.Fatalf("unknown layout error = %v, want ErrAssetNotFound", err)
	}
}

func TestGPUFailureLeavesRecordRetryable(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, _ := f.register(t)
	backend := gputest.NewBackend()
	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	backend.FailPipelineLayout = true
	if err := m.CreatePipelineLayout(layoutID, gpu.PipelineLayoutCreateInfo{}, backend); !errors.Is(err, gputest.ErrInjected) {
		t.Fatalf("CreatePipelineLayout error = %v, want ErrInjected", err)
	}
	pl, _ := m.PipelineLayout(layoutID)
	if pl.ResourceCreated() {
		t.Fatalf("layout marked created after a failed create")
	}
	backend.FailPipelineLayout = false
	if err := m.CreatePipelineLayout(layoutID, gpu.PipelineLayoutCreateInfo{}, backend); err != nil {
		t.Fatalf("retry CreatePipelineLayout: %v", err)
	}

	backend.FailShaderStage[gpu.ShaderStageFragment] = true
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{}); !errors.Is(err, gputest.ErrInjected) {
		t.Fatalf("CreateGraphicsPipeline error = %v, want ErrInjected", err)
	}
	if got := backend.Live("shader"); got != 0 {
		t.Fatalf("%d shader module(s) leaked after a failed fragment module", got)
	}
	backend.FailShaderStage[gpu.ShaderStageFragment] = false

	backend.FailPipeline = true
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{}); !errors.Is(err, gputest.ErrInjected) {
		t.Fatalf("CreateGraphicsPipeline error = %v, want ErrInjected", err)
	}
	if got := backend.Live("shader"); got != 0 {
		t.Fatalf("%d shader module(s) leaked after a failed pipeline", got)
	}
	gp, _ := m.GraphicsPipeline(pipelineID)
	if gp.ResourceCreated() {
		t.Fatalf("pipeline marked created after a failed create")
	}

	backend.FailPipeline = false
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{}); err != nil {
		t.Fatalf("retry CreateGraphicsPipeline: %v", err)
	}
	if err := m.CreateGraphicsPipeline(pipelineID, layoutID, backend, gpu.RenderTarget{}); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("second create error = %v, want ErrInvalidTransition", err)
	}
	if got := backend.Live("pipeline"); got != 1 {
		t.Fatalf("%d pipelines alive, want exactly 1", got)
	}
}

func TestLoadSettingsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	m, layoutID, pipelineID, meshID := f.register(t)

	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	pl, _ := m.PipelineLayout(layoutID)
	gp, _ := m.GraphicsPipeline(pipelineID)
	sm, _ := m.StaticMesh(meshID)
	ranges := pl.PushConstants()
	settings := gp.Settings()
	geometry := sm.Mesh()

	// Changing the files must not leak into loaded settings.
	writeTestFile(t, f.pushConstants, "[[ranges]]\noffset = 0\nsize = 4\n")
	writeTestFile(t, f.pipeline, "cullMode = 'none'\n")

	logs := captureLog(t)
	for _, a := range m.Assets() {
		if err := m.LoadSettings(a.Kind(), a.ID()); err != nil {
			t.Fatalf("second LoadSettings(%s): %v", a.Kind(), err)
		}
	}
	if !strings.Contains(logs.String(), "already loaded") {
		t.Fatalf("expected a redundant load warning, log was %q", logs.String())
	}
	if !slices.Equal(pl.PushConstants(), ranges) {
		t.Fatalf("push constants changed on reload")
	}
	if gp.Settings() != settings {
		t.Fatalf("pipeline settings changed on reload")
	}
	if sm.Mesh() != geometry {
		t.Fatalf("mesh geometry replaced on reload")
	}
}

func TestGraphicsPipelineLoadIsAtomic(t *testing.T) {
	f := newFixture(t)
	m, _, pipelineID, _ := f.register(t)

	writeTestFile(t, f.fragmentShader, "stage = 'vertex'\nbinary = 'mesh.frag.spv'\n")
	err := m.LoadSettings(KindGraphicsPipeline, pipelineID)
	if !errors.Is(err, core.ErrMalformedDescriptor) {
		t.Fatalf("LoadSettings error = %v, want ErrMalformedDescriptor", err)
	}
	gp, _ := m.GraphicsPipeline(pipelineID)
	if gp.SettingsLoaded() || gp.Settings() != (gpu.PipelineSettings{}) {
		t.Fatalf("partial load observable: state %s settings %+v", gp.State(), gp.Settings())
	}

	writeTestFile(t, f.fragmentShader, "stage = 'fragment'\nbinary = 'mesh.frag.spv'\n")
	if err := m.LoadSettings(KindGraphicsPipeline, pipelineID); err != nil {
		t.Fatalf("LoadSettings after fix: %v", err)
	}
	if gp.Settings().CullMode != gpu.FaceCullModeBack {
		t.Fatalf("settings = %+v", gp.Settings())
	}
}

func TestDriversReportMissingAssets(t *testing.T) {
	m := NewManager()
	backend := gputest.NewBackend()
	checks := map[string]error{
		"load":   m.LoadSettings(KindStaticMesh, 1),
		"layout": m.CreatePipelineLayout(1, gpu.PipelineLayoutCreateInfo{}, backend),
		"pipe":   m.CreateGraphicsPipeline(1, 2, backend, gpu.RenderTarget{}),
		"mesh":   m.InitializeStaticMesh(1, backend),
	}
	for name, err := range checks {
		if !errors.Is(err, core.ErrAssetNotFound) {
			t.Errorf("%s error = %v, want ErrAssetNotFound", name, err)
		}
	}
}
