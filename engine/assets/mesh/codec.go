package mesh

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/smok/engine/core"
)

const (
	// Version is the descriptor format version written by this codec.
	Version = "1"
	// DeclExtension is the extension of the text descriptor file.
	DeclExtension = ".smeshdecl"
	// BinaryExtension is the extension of the vertex blob file.
	BinaryExtension = ".smesh"
)

/**
 * @brief The descriptor document stored next to the vertex blob. Fields are
 * named so older or newer descriptors can still be read with best effort.
 */
type Descriptor struct {
	Version     string     `toml:"version"`
	VertexCount int        `toml:"vertexCount"`
	MeshCount   int        `toml:"meshCount"`
	Meshes      [][]uint32 `toml:"meshes"`
	LODs        []uint32   `toml:"lods,omitempty"`
}

// Paths are the files a Write actually produced.
type Paths struct {
	Decl   string
	Binary string
}

/**
 * @brief Appends ext to path unless it already ends with it. A different
 * extension is kept and ext is appended after it. Reports whether path changed.
 */
func NormalizePath(path, ext string) (string, bool) {
	if filepath.Ext(path) == ext {
		return path, false
	}
	if strings.HasSuffix(path, ".") {
		return path + strings.TrimPrefix(ext, "."), true
	}
	return path + ext, true
}

// NormalizePaths applies NormalizePath to a descriptor and binary pair, warning for every fix-up.
func NormalizePaths(declFile, binaryFile string) Paths {
	decl, changed := NormalizePath(declFile, DeclExtension)
	if changed {
		core.LogWarn("%q does not end in %s, the extension for static mesh descriptor files. It has been appended: %q",
			declFile, DeclExtension, decl)
	}
	bin, changed := NormalizePath(binaryFile, BinaryExtension)
	if changed {
		core.LogWarn("%q does not end in %s, the extension for static mesh binary files. It has been appended: %q",
			binaryFile, BinaryExtension, bin)
	}
	return Paths{Decl: decl, Binary: bin}
}

/**
 * @brief Writes m as a vertex blob plus a descriptor. Missing extensions are
 * appended with a warning. A failure part way leaves the files in an undefined
 * state; calling Write again fixes them.
 */
func Write(declFile, binaryFile string, m *StaticMesh) (Paths, error) {
	paths := NormalizePaths(declFile, binaryFile)
	if err := m.Validate(); err != nil {
		return paths, err
	}

	if err := writeBinary(paths.Binary, m.Vertices); err != nil {
		return paths, fmt.Errorf("failed to write static mesh binary %q: %w", paths.Binary, err)
	}

	desc := Descriptor{
		Version:     Version,
		VertexCount: len(m.Vertices),
		MeshCount:   len(m.SubMeshes),
		Meshes:      make([][]uint32, len(m.SubMeshes)),
		LODs:        make([]uint32, len(m.SubMeshes)),
	}
	hasLOD := false
	for i, sm := range m.SubMeshes {
		desc.Meshes[i] = sm.Indices
		if desc.Meshes[i] == nil {
			desc.Meshes[i] = []uint32{}
		}
		desc.LODs[i] = sm.LOD
		hasLOD = hasLOD || sm.LOD != 0
	}
	if !hasLOD {
		desc.LODs = nil
	}

	data, err := toml.Marshal(desc)
	if err != nil {
		return paths, fmt.Errorf("failed to encode static mesh descriptor: %w", err)
	}
	if err := os.WriteFile(paths.Decl, data, 0o644); err != nil {
		return paths, fmt.Errorf("failed to write static mesh descriptor %q: %w", paths.Decl, err)
	}

	core.LogDebug("Static mesh written to %q and %q (%d vertices, %d sub-meshes).",
		paths.Decl, paths.Binary, desc.VertexCount, desc.MeshCount)
	return paths, nil
}

func writeBinary(path string, vertices []Vertex) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := encodeVertices(w, vertices); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

/**
 * @brief Reads a static mesh back from a descriptor and vertex blob. Unlike Write,
 * the extensions are not corrected. A descriptor version other than Version
 * only produces a warning.
 */
func Read(declFile, binaryFile string) (*StaticMesh, error) {
	if filepath.Ext(declFile) != DeclExtension {
		return nil, fmt.Errorf("%w: %q must end in %s", core.ErrInvalidExtension, declFile, DeclExtension)
	}
	if filepath.Ext(binaryFile) != BinaryExtension {
		return nil, fmt.Errorf("%w: %q must end in %s", core.ErrInvalidExtension, binaryFile, BinaryExtension)
	}
	for _, p := range []string{declFile, binaryFile} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %q", core.ErrFileNotFound, p)
			}
			return nil, err
		}
	}

	desc, err := ReadDescriptor(declFile)
	if err != nil {
		return nil, err
	}
	if desc.Version != Version {
		core.LogWarn("%q has format version %q but the codec writes version %q, reading it with best effort",
			declFile, desc.Version, Version)
	}

	vertices, err := readBinary(binaryFile, desc.VertexCount)
	if err != nil {
		return nil, err
	}

	m := &StaticMesh{
		Vertices:  vertices,
		SubMeshes: make([]SubMesh, desc.MeshCount),
	}
	for i := range m.SubMeshes {
		indices := make([]uint32, len(desc.Meshes[i]))
		copy(indices, desc.Meshes[i])
		m.SubMeshes[i] = SubMesh{Indices: indices, Visible: true}
		if len(desc.LODs) == desc.MeshCount {
			m.SubMeshes[i].LOD = desc.LODs[i]
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", declFile, err)
	}
	return m, nil
}

/**
 * @brief Parses and sanity checks a descriptor document.
 */
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc := &Descriptor{}
	if err := toml.Unmarshal(data, desc); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", core.ErrMalformedDescriptor, path, err)
	}
	if desc.VertexCount < 0 || desc.MeshCount < 0 {
		return nil, fmt.Errorf("%w: %q has negative counts", core.ErrMalformedDescriptor, path)
	}
	if desc.VertexCount > math.MaxInt/VertexStride {
		return nil, fmt.Errorf("%w: %q declares %d vertices, more than a binary can address",
			core.ErrMalformedDescriptor, path, desc.VertexCount)
	}
	if desc.MeshCount != len(desc.Meshes) {
		return nil, fmt.Errorf("%w: %q declares %d meshes but lists %d",
			core.ErrMalformedDescriptor, path, desc.MeshCount, len(desc.Meshes))
	}
	if len(desc.LODs) != 0 && len(desc.LODs) != desc.MeshCount {
		core.LogWarn("%q lists %d LOD tags for %d meshes, ignoring them", path, len(desc.LODs), desc.MeshCount)
	}
	return desc, nil
}

func readBinary(path string, count int) ([]Vertex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)/VertexStride < count {
		return nil, fmt.Errorf("static mesh binary %q holds %d bytes, want %d vertices of %d bytes: %w",
			path, len(data), count, VertexStride, io.ErrUnexpectedEOF)
	}
	want := count * VertexStride
	if len(data) > want {
		core.LogWarn("%q has %d trailing bytes after %d vertices", path, len(data)-want, count)
	}
	return decodeVertices(bytes.NewReader(data[:want]), count)
}
