package mesh

import "github.com/spaghettifunk/smok/engine/math"

/**
 * @brief Builds a unit cube with 8 shared vertices and two sub-meshes: LOD 0
 * holds all six faces, LOD 1 only the front and back faces.
 */
func Cube() *StaticMesh {
	corners := [8]math.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: -0.5, Y: 0.5, Z: 0.5},
	}

	vertices := make([]Vertex, len(corners))
	for i, p := range corners {
		vertices[i] = Vertex{
			Position: p,
			Normal:   p.Normalized(),
			Color:    math.NewVec3(p.X+0.5, p.Y+0.5, p.Z+0.5),
			TexCoord: math.NewVec2(p.X+0.5, p.Y+0.5),
		}
	}

	back := []uint32{0, 2, 1, 0, 3, 2}
	front := []uint32{4, 5, 6, 4, 6, 7}
	left := []uint32{0, 4, 7, 0, 7, 3}
	right := []uint32{1, 2, 6, 1, 6, 5}
	bottom := []uint32{0, 1, 5, 0, 5, 4}
	top := []uint32{3, 7, 6, 3, 6, 2}

	full := make([]uint32, 0, 36)
	for _, face := range [][]uint32{back, front, left, right, bottom, top} {
		full = append(full, face...)
	}
	reduced := append(append([]uint32{}, back...), front...)

	return &StaticMesh{
		Vertices: vertices,
		SubMeshes: []SubMesh{
			{Indices: full, LOD: 0, Visible: true},
			{Indices: reduced, LOD: 1, Visible: true},
		},
	}
}
