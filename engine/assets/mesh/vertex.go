package mesh

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/spaghettifunk/smok/engine/math"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
)

// VertexStride is the size of one encoded Vertex: 11 little-endian float32 values.
const VertexStride = 44

/**
 * @brief A single vertex of a static mesh. Encoded tightly packed in field order:
 *
 *	position: vec3
 *	normal:   vec3
 *	color:    vec3
 *	texCoord: vec2
 */
type Vertex struct {
	/** @brief The position of the vertex */
	Position math.Vec3
	/** @brief The normal of the vertex. */
	Normal math.Vec3
	/** @brief The colour of the vertex. */
	Color math.Vec3
	/** @brief The texture coordinate of the vertex. */
	TexCoord math.Vec2
}

/**
 * @brief The vertex input layout matching VertexStride, one attribute per field.
 */
func VertexAttributes() []gpu.VertexAttribute {
	return []gpu.VertexAttribute{
		{Location: 0, Offset: 0, Components: 3},
		{Location: 1, Offset: 12, Components: 3},
		{Location: 2, Offset: 24, Components: 3},
		{Location: 3, Offset: 36, Components: 2},
	}
}

func encodeVertices(w io.Writer, vertices []Vertex) error {
	return binary.Write(w, binary.LittleEndian, vertices)
}

func decodeVertices(r io.Reader, count int) ([]Vertex, error) {
	vertices := make([]Vertex, count)
	if count == 0 {
		return vertices, nil
	}
	if err := binary.Read(r, binary.LittleEndian, vertices); err != nil {
		return nil, err
	}
	return vertices, nil
}

func vertexBytes(vertices []Vertex) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(vertices) * VertexStride)
	if err := encodeVertices(&buf, vertices); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
