package assets

/**
 * @brief An asset record owned by a Manager. The set of implementations is
 * closed: *PipelineLayout, *GraphicsPipeline and *StaticMesh.
 */
type Asset interface {
	ID() uint64
	Name() string
	Kind() Kind
	State() State
	SettingsLoaded() bool
	ResourceCreated() bool
	SourceFiles() []string

	sealed()
}

var (
	_ Asset = (*PipelineLayout)(nil)
	_ Asset = (*GraphicsPipeline)(nil)
	_ Asset = (*StaticMesh)(nil)
)
