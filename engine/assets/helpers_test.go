package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
)

var spirvHeader = []byte{
	0x03, 0x02, 0x23, 0x07,
	0x00, 0x00, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// fixture is a directory holding one of every source file the records read.
type fixture struct {
	dir            string
	pushConstants  string
	pipeline       string
	vertexShader   string
	fragmentShader string
	meshDecl       string
	meshBinary     string
}

func writeTestFile(t *testing.T, path string, data string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{dir: dir}

	f.pushConstants = writeTestFile(t, filepath.Join(dir, "mesh.pushconst.toml"),
		"[[ranges]]\noffset = 0\nsize = 64\nstages = ['vertex']\n")
	f.pipeline = writeTestFile(t, filepath.Join(dir, "mesh.pipeline.toml"),
		"cullMode = 'back'\ndepthTest = true\n")

	writeTestFile(t, filepath.Join(dir, "mesh.vert.spv"), string(spirvHeader))
	writeTestFile(t, filepath.Join(dir, "mesh.frag.spv"), string(spirvHeader))
	f.vertexShader = writeTestFile(t, filepath.Join(dir, "mesh.vert.toml"),
		"stage = 'vertex'\nbinary = 'mesh.vert.spv'\n")
	f.fragmentShader = writeTestFile(t, filepath.Join(dir, "mesh.frag.toml"),
		"stage = 'fragment'\nentryPoint = 'fs_main'\nbinary = 'mesh.frag.spv'\n")

	paths, err := mesh.Write(filepath.Join(dir, "crate.smeshdecl"), filepath.Join(dir, "crate.smesh"), mesh.Cube())
	if err != nil {
		t.Fatalf("mesh.Write: %v", err)
	}
	f.meshDecl = paths.Decl
	f.meshBinary = paths.Binary
	return f
}

// register adds one asset of each kind to a fresh manager.
func (f *fixture) register(t *testing.T) (m *Manager, layoutID, pipelineID, meshID uint64) {
	t.Helper()
	m = NewManager()
	var err error
	if layoutID, err = m.RegisterPipelineLayout("mesh_layout", f.pushConstants); err != nil {
		t.Fatalf("RegisterPipelineLayout: %v", err)
	}
	if pipelineID, err = m.RegisterGraphicsPipeline("mesh", f.pipeline, f.vertexShader, f.fragmentShader); err != nil {
		t.Fatalf("RegisterGraphicsPipeline: %v", err)
	}
	if meshID, err = m.RegisterStaticMesh("crate", f.meshDecl, f.meshBinary); err != nil {
		t.Fatalf("RegisterStaticMesh: %v", err)
	}
	return m, layoutID, pipelineID, meshID
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}
