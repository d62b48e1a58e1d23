package assets

import "fmt"

/** @brief The closed set of asset kinds the manager knows about. */
type Kind int

const (
	KindPipelineLayout Kind = iota
	KindGraphicsPipeline
	KindStaticMesh
)

func (k Kind) String() string {
	switch k {
	case KindPipelineLayout:
		return "pipeline layout"
	case KindGraphicsPipeline:
		return "graphics pipeline"
	case KindStaticMesh:
		return "static mesh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
