package ecs

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/assets"
	"github.com/spaghettifunk/smok/engine/core"
)

/**
 * @brief Renders a static mesh with a graphics pipeline. Assets are referenced
 * by identifier; the asset manager keeps ownership.
 */
type MeshRender struct {
	PipelineLayoutID uint64
	PipelineID       uint64
	StaticMeshID     uint64

	/** @brief When set only the sub-meshes listed in MeshIndexes are rendered. */
	RenderSpecificSubMeshes bool
	MeshIndexes             []uint32
}

/**
 * @brief The records a MeshRender points at, looked up in one go.
 */
type ResolvedMeshRender struct {
	Layout    *assets.PipelineLayout
	Pipeline  *assets.GraphicsPipeline
	Mesh      *assets.StaticMesh
	SubMeshes []uint32
}

/**
 * @brief Looks up every referenced asset. Fails with core.ErrAssetNotFound when
 * an id is not registered, and when a requested sub-mesh index is out of range
 * of the loaded mesh. Sub-mesh indexes can only be checked once the mesh
 * settings are loaded; before that they are returned unchecked.
 */
func (mr MeshRender) Resolve(m *assets.Manager) (ResolvedMeshRender, error) {
	var out ResolvedMeshRender
	var ok bool

	if out.Layout, ok = m.PipelineLayout(mr.PipelineLayoutID); !ok {
		return out, fmt.Errorf("%w: pipeline layout with id %d", core.ErrAssetNotFound, mr.PipelineLayoutID)
	}
	if out.Pipeline, ok = m.GraphicsPipeline(mr.PipelineID); !ok {
		return out, fmt.Errorf("%w: graphics pipeline with id %d", core.ErrAssetNotFound, mr.PipelineID)
	}
	if out.Mesh, ok = m.StaticMesh(mr.StaticMeshID); !ok {
		return out, fmt.Errorf("%w: static mesh with id %d", core.ErrAssetNotFound, mr.StaticMeshID)
	}

	geometry := out.Mesh.Mesh()
	if !mr.RenderSpecificSubMeshes {
		if geometry != nil {
			out.SubMeshes = make([]uint32, len(geometry.SubMeshes))
			for i := range out.SubMeshes {
				out.SubMeshes[i] = uint32(i)
			}
		}
		return out, nil
	}

	out.SubMeshes = append([]uint32(nil), mr.MeshIndexes...)
	if geometry == nil {
		return out, nil
	}
	for _, idx := range mr.MeshIndexes {
		if int(idx) >= len(geometry.SubMeshes) {
			return out, fmt.Errorf("%w: static mesh %q has %d sub-mesh(es), no index %d",
				core.ErrAssetNotFound, out.Mesh.Name(), len(geometry.SubMeshes), idx)
		}
	}
	return out, nil
}
