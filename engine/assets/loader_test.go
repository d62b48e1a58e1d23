package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/spaghettifunk/smok/engine/core"
)

func TestLoadAll(t *testing.T) {
	f := newFixture(t)
	m, _, _, _ := f.register(t)

	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, a := range m.Assets() {
		if a.State() != StateSettingsLoaded {
			t.Fatalf("%s %q state = %s, want settings loaded", a.Kind(), a.Name(), a.State())
		}
	}

	// Nothing left to load.
	logs := captureLog(t)
	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("second LoadAll: %v", err)
	}
	if logs.Len() != 0 {
		t.Fatalf("second LoadAll logged %q", logs.String())
	}
}

func TestLoadAllReturnsFirstError(t *testing.T) {
	f := newFixture(t)
	writeTestFile(t, f.pipeline, "cullMode = 'sideways'\n")
	m, layoutID, pipelineID, _ := f.register(t)

	err := m.LoadAll(t.Context())
	if !errors.Is(err, core.ErrMalformedDescriptor) {
		t.Fatalf("LoadAll error = %v, want ErrMalformedDescriptor", err)
	}
	gp, _ := m.GraphicsPipeline(pipelineID)
	if gp.State() != StateRegistered {
		t.Fatalf("broken pipeline state = %s, want registered", gp.State())
	}

	// Fixing the file and loading again picks up whatever was left behind.
	writeTestFile(t, f.pipeline, "cullMode = 'none'\n")
	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("LoadAll after fix: %v", err)
	}
	pl, _ := m.PipelineLayout(layoutID)
	if !pl.SettingsLoaded() || !gp.SettingsLoaded() {
		t.Fatalf("records not loaded after retry")
	}
}

func TestLoadAllHonoursCancelledContext(t *testing.T) {
	f := newFixture(t)
	m, _, _, _ := f.register(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := m.LoadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadAll error = %v, want context.Canceled", err)
	}
	for _, a := range m.Assets() {
		if a.State() != StateRegistered {
			t.Fatalf("%s loaded despite a cancelled context", a.Kind())
		}
	}
}

func TestLoadAllSingleWorker(t *testing.T) {
	f := newFixture(t)
	m := NewManager(WithLoadWorkers(1), WithBasePath(f.dir))
	if _, err := m.RegisterPipelineLayout("a", "mesh.pushconst.toml"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RegisterPipelineLayout("b", "mesh.pushconst.toml"); err != nil {
		t.Fatal(err)
	}
	if err := m.LoadAll(t.Context()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got := m.Len(KindPipelineLayout); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}
