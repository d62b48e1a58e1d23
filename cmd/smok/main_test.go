package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runSmok(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSmokFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runSmok(t, "version")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out, "smok "+version) {
		t.Fatalf("output = %q", out)
	}
}

func TestCubeAndInspect(t *testing.T) {
	dir := t.TempDir()
	decl := filepath.Join(dir, "cube.smeshdecl")

	out, err := runSmok(t, "cube", decl, filepath.Join(dir, "cube"))
	if err != nil {
		t.Fatalf("cube: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "cube.smesh")+"\n") {
		t.Fatalf("cube output = %q, want the fixed binary path", out)
	}

	out, err = runSmok(t, "inspect", decl)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{
		"vertices: 8\n",
		"indices: 48\n",
		"bounds: (-0.5, -0.5, -0.5) - (0.5, 0.5, 0.5)\n",
		"sub-meshes: 2\n",
		"  [0] lod 0, 36 indices\n",
		"  [1] lod 1, 12 indices\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectMissingMesh(t *testing.T) {
	_, err := runSmok(t, "inspect", filepath.Join(t.TempDir(), "nope.smeshdecl"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("inspect error = %v, want a not found error", err)
	}
}

var spirvHeader = string([]byte{
	0x03, 0x02, 0x23, 0x07,
	0x00, 0x00, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
})

func writeCheckFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSmokFile(t, filepath.Join(dir, "layout.toml"), "[[ranges]]\noffset = 0\nsize = 64\n")
	writeSmokFile(t, filepath.Join(dir, "pipeline.toml"), "cullMode = 'back'\n")
	writeSmokFile(t, filepath.Join(dir, "shader.vert.spv"), spirvHeader)
	writeSmokFile(t, filepath.Join(dir, "shader.frag.spv"), spirvHeader)
	writeSmokFile(t, filepath.Join(dir, "shader.vert.toml"), "stage = 'vertex'\nbinary = 'shader.vert.spv'\n")
	writeSmokFile(t, filepath.Join(dir, "shader.frag.toml"), "stage = 'fragment'\nbinary = 'shader.frag.spv'\n")
	if _, err := runSmok(t, "cube", filepath.Join(dir, "cube.smeshdecl"), filepath.Join(dir, "cube.smesh")); err != nil {
		t.Fatalf("cube: %v", err)
	}

	manifest := filepath.Join(dir, "assets.yaml")
	writeSmokFile(t, manifest, `
settings:
  base_path: `+dir+`
  log_level: error
pipeline_layouts:
  - name: world
    push_constants: layout.toml
graphics_pipelines:
  - name: world
    pipeline: pipeline.toml
    vertex_shader: shader.vert.toml
    fragment_shader: shader.frag.toml
    layout: world
static_meshes:
  - name: cube
    decl: cube.smeshdecl
    binary: cube.smesh
`)
	return manifest
}

func TestCheckCmd(t *testing.T) {
	manifest := writeCheckFixture(t)
	_, err := runSmok(t, "check", manifest)
	if err == nil {
		t.Fatal("check accepted a manifest reusing a name across kinds")
	}
	if !strings.Contains(err.Error(), "already registered") && !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("check error = %v, want a duplicate name error", err)
	}
}

func TestCheckCmdCreate(t *testing.T) {
	manifest := writeCheckFixture(t)
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	fixed := strings.Replace(string(data), "  - name: world\n    push_constants", "  - name: world_layout\n    push_constants", 1)
	fixed = strings.Replace(fixed, "layout: world\n", "layout: world_layout\n", 1)
	writeSmokFile(t, manifest, fixed)

	out, err := runSmok(t, "check", "--create", manifest)
	if err != nil {
		t.Fatalf("check --create: %v", err)
	}
	for _, want := range []string{"no leaks", "destroyed", "static mesh"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}

	out, err = runSmok(t, "check", manifest)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "settings loaded") || strings.Contains(out, "dry run") {
		t.Fatalf("check output = %q", out)
	}
}

func TestCheckCmdCreateUnnamedPipeline(t *testing.T) {
	manifest := writeCheckFixture(t)
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	fixed := strings.Replace(string(data), "  - name: world\n    push_constants", "  - name: world_layout\n    push_constants", 1)
	fixed = strings.Replace(fixed, "  - name: world\n    pipeline:", "  - pipeline:", 1)
	fixed = strings.Replace(fixed, "layout: world\n", "layout: world_layout\n", 1)
	writeSmokFile(t, manifest, fixed)

	out, err := runSmok(t, "check", "--create", manifest)
	if err != nil {
		t.Fatalf("check --create: %v", err)
	}
	if !strings.Contains(out, "no leaks") || strings.Contains(out, "skipping") {
		t.Fatalf("check output = %q", out)
	}
}
