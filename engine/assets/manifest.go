package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/math"
	"gopkg.in/yaml.v3"
)

const maxLoadWorkers = 64

// Manifest lists the assets to register in bulk, plus the settings of the manager holding them.
type Manifest struct {
	Settings          ManifestSettings        `yaml:"settings"`
	PipelineLayouts   []PipelineLayoutEntry   `yaml:"pipeline_layouts"`
	GraphicsPipelines []GraphicsPipelineEntry `yaml:"graphics_pipelines"`
	StaticMeshes      []StaticMeshEntry       `yaml:"static_meshes"`
}

// ManifestSettings configures the manager and logging.
type ManifestSettings struct {
	BasePath    string `yaml:"base_path"`
	LogLevel    string `yaml:"log_level"`
	LoadWorkers int    `yaml:"load_workers"`
}

type PipelineLayoutEntry struct {
	Name          string `yaml:"name"`
	PushConstants string `yaml:"push_constants"`
}

type GraphicsPipelineEntry struct {
	Name           string `yaml:"name"`
	Pipeline       string `yaml:"pipeline"`
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
	// Layout names the pipeline layout the pipeline is created against. Optional.
	Layout string `yaml:"layout"`
}

type StaticMeshEntry struct {
	Name   string `yaml:"name"`
	Decl   string `yaml:"decl"`
	Binary string `yaml:"binary"`
}

// LoadManifest reads a YAML manifest, applies environment overrides and validates it.
// A relative or empty settings.base_path resolves against the manifest's directory.
//
// Environment overrides:
//   - SMOK_ASSET_BASE_PATH
//   - SMOK_LOG_LEVEL
//   - SMOK_LOAD_WORKERS
func LoadManifest(path string) (*Manifest, error) {
	mf := defaultManifest()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, mf); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	// Relative base paths in the file are relative to the manifest itself.
	if !filepath.IsAbs(mf.Settings.BasePath) {
		mf.Settings.BasePath = filepath.Join(filepath.Dir(path), mf.Settings.BasePath)
	}

	if err := applyEnvOverrides(mf); err != nil {
		return nil, err
	}
	if err := mf.Validate(); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	return mf, nil
}

func defaultManifest() *Manifest {
	return &Manifest{
		Settings: ManifestSettings{
			LogLevel:    "info",
			LoadWorkers: defaultLoadWorkers,
		},
	}
}

func applyEnvOverrides(mf *Manifest) error {
	if v := os.Getenv("SMOK_ASSET_BASE_PATH"); v != "" {
		mf.Settings.BasePath = v
	}
	if v := os.Getenv("SMOK_LOG_LEVEL"); v != "" {
		mf.Settings.LogLevel = v
	}
	if v := os.Getenv("SMOK_LOAD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMOK_LOAD_WORKERS: %w", err)
		}
		mf.Settings.LoadWorkers = n
	}
	return nil
}

// Validate checks required fields and clamps the worker count.
func (mf *Manifest) Validate() error {
	var errs []error

	switch mf.Settings.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("settings.log_level: %w: %q", core.ErrInvalidLogLevel, mf.Settings.LogLevel))
	}
	mf.Settings.LoadWorkers = math.Clamp(mf.Settings.LoadWorkers, 1, maxLoadWorkers)

	seen := make(map[string]string)
	checkName := func(section string, i int, name string) {
		if name == "" {
			return
		}
		if other, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%s[%d]: %w: %q is also used by %s", section, i, core.ErrDuplicateName, name, other))
			return
		}
		seen[name] = fmt.Sprintf("%s[%d]", section, i)
	}
	required := func(section string, i int, field, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s[%d].%s is required", section, i, field))
		}
	}

	for i, e := range mf.PipelineLayouts {
		checkName("pipeline_layouts", i, e.Name)
		required("pipeline_layouts", i, "push_constants", e.PushConstants)
	}
	layouts := make(map[string]bool)
	for _, e := range mf.PipelineLayouts {
		layouts[e.Name] = true
	}
	for i, e := range mf.GraphicsPipelines {
		checkName("graphics_pipelines", i, e.Name)
		if e.Layout != "" && !layouts[e.Layout] {
			errs = append(errs, fmt.Errorf("graphics_pipelines[%d].layout: %w: no pipeline layout named %q", i, core.ErrAssetNotFound, e.Layout))
		}
		required("graphics_pipelines", i, "pipeline", e.Pipeline)
		required("graphics_pipelines", i, "vertex_shader", e.VertexShader)
		required("graphics_pipelines", i, "fragment_shader", e.FragmentShader)
	}
	for i, e := range mf.StaticMeshes {
		checkName("static_meshes", i, e.Name)
		required("static_meshes", i, "decl", e.Decl)
		required("static_meshes", i, "binary", e.Binary)
	}

	return errors.Join(errs...)
}

// NewManager builds a manager configured from the manifest settings.
func (mf *Manifest) NewManager() *Manager {
	return NewManager(WithBasePath(mf.Settings.BasePath), WithLoadWorkers(mf.Settings.LoadWorkers))
}

/**
 * @brief Registers every entry with m: pipeline layouts, then graphics
 * pipelines, then static meshes. Entries without a name get a generated one,
 * written back into the entry so later lookups by name find it.
 * Returns the identifier of every registered name.
 */
func (mf *Manifest) Apply(m *Manager) (map[string]uint64, error) {
	ids := make(map[string]uint64)
	register := func(name *string, fn func(string) (uint64, error)) error {
		if *name == "" {
			*name = uuid.NewString()
			core.LogWarn("Manifest entry has no name, registering it as %q.", *name)
		}
		id, err := fn(*name)
		if err != nil {
			return err
		}
		ids[*name] = id
		return nil
	}

	for i := range mf.PipelineLayouts {
		e := &mf.PipelineLayouts[i]
		if err := register(&e.Name, func(name string) (uint64, error) {
			return m.RegisterPipelineLayout(name, e.PushConstants)
		}); err != nil {
			return ids, err
		}
	}
	for i := range mf.GraphicsPipelines {
		e := &mf.GraphicsPipelines[i]
		if err := register(&e.Name, func(name string) (uint64, error) {
			return m.RegisterGraphicsPipeline(name, e.Pipeline, e.VertexShader, e.FragmentShader)
		}); err != nil {
			return ids, err
		}
	}
	for i := range mf.StaticMeshes {
		e := &mf.StaticMeshes[i]
		if err := register(&e.Name, func(name string) (uint64, error) {
			return m.RegisterStaticMesh(name, e.Decl, e.Binary)
		}); err != nil {
			return ids, err
		}
	}
	return ids, nil
}
