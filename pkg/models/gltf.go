package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softras/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into TriangleMesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	GenerateTangents bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		GenerateTangents: true,
	}
}

// LoadGLTF loads a GLTF or GLB file with the default loader.
func LoadGLTF(path string) (*TriangleMesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and merges every triangle primitive into one
// triangle list mesh. glTF front faces are counter-clockwise, which is what
// the pipeline expects, so winding is kept as authored.
func (l *GLTFLoader) Load(path string) (*TriangleMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.fromDocument(doc, filepath.Base(path))
}

func (l *GLTFLoader) fromDocument(doc *gltf.Document, name string) (*TriangleMesh, error) {
	mesh := NewTriangleMesh(name)

	hasNormals, hasTangents := true, true
	for _, m := range doc.Meshes {
		n, t, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && n
		hasTangents = hasTangents && t
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	if l.GenerateTangents && !hasTangents {
		mesh.GenerateTangents()
	} else {
		mesh.OrthonormalizeTangents()
	}

	mesh.Materials = readMaterials(doc)
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the geometry of every triangle primitive of m.
// It reports whether all primitives carried normals and tangents.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *TriangleMesh) (bool, bool, error) {
	allNormals, allTangents := true, true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != gltf.PrimitiveTriangleStrip {
			// Skip non-triangle primitives (lines, points, fans)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, false, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return false, false, fmt.Errorf("read normals: %w", err)
			}
		}

		var tangents []math3d.Vec3
		if tanIdx, ok := prim.Attributes[gltf.TANGENT]; ok {
			tangents, err = readTangentAccessor(doc, tanIdx)
			if err != nil {
				return false, false, fmt.Errorf("read tangents: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return false, false, fmt.Errorf("read uvs: %w", err)
			}
		}

		allNormals = allNormals && len(normals) == len(positions)
		allTangents = allTangents && len(tangents) == len(positions)

		baseVertex := uint32(len(mesh.Vertices))

		for i := range positions {
			v := Vertex{
				Position: positions[i],
				Color:    math3d.V3(1, 1, 1),
			}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(tangents) {
				v.Tangent = tangents[i]
			}
			if i < len(uvs) {
				// GLTF already puts V=0 at the top row of the image
				v.UV = uvs[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return false, false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		// Strips are unrolled so primitives from different sources can share
		// one list index buffer.
		part := &TriangleMesh{Indices: indices, Topology: TopologyTriangleList}
		if prim.Mode == gltf.PrimitiveTriangleStrip {
			part.Topology = TopologyTriangleStrip
			part.ToTriangleList()
		}
		for _, idx := range part.Indices {
			mesh.Indices = append(mesh.Indices, baseVertex+idx)
		}
	}

	return allNormals, allTangents, nil
}

// readMaterials converts the document's PBR materials into loader hints.
func readMaterials(doc *gltf.Document) []Material {
	out := make([]Material, 0, len(doc.Materials))
	for _, m := range doc.Materials {
		mat := Material{
			Name:      m.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = pbr.BaseColorFactorOrDefault()
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
			if pbr.BaseColorTexture != nil {
				if img, err := decodeTextureImage(doc, pbr.BaseColorTexture.Index); err == nil {
					mat.BaseMap = img
					mat.HasTexture = true
				}
			}
		}
		out = append(out, mat)
	}
	return out
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readTangentAccessor reads VEC4 tangents. The w handedness sign is folded
// into the direction, since the bitangent is rebuilt as cross(T, N).
func readTangentAccessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec4, 4)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		t := math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
		if f[3] < 0 {
			t = t.Negate()
		}
		result[i] = t
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

// readFloatAccessor reads count tuples of n float32 components.
func readFloatAccessor(doc *gltf.Document, accessorIdx int, want gltf.AccessorType, n int) ([][4]float32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrInvalidIndex)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != want {
		return nil, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([][4]float32, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+n*4 > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		for j := range n {
			result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrInvalidIndex)
	}
	accessor := doc.Accessors[accessorIdx]

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("index accessor %d overruns its buffer", accessorIdx)
		}
		switch size {
		case 1:
			result[i] = uint32(data[offset])
		case 2:
			result[i] = uint32(binary.LittleEndian.Uint16(data[offset:]))
		default:
			result[i] = binary.LittleEndian.Uint32(data[offset:])
		}
	}
	return result, nil
}

// accessorBytes returns the backing buffer, the first element offset and the
// element stride of an accessor.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open resolves both embedded (GLB) and external buffers into Data
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}

// imageBytes returns the encoded bytes of image i, from a buffer view or a
// file next to the document.
func imageBytes(doc *gltf.Document, i int, dir string) ([]byte, error) {
	if i < 0 || i >= len(doc.Images) {
		return nil, fmt.Errorf("image %d: %w", i, ErrInvalidIndex)
	}
	img := doc.Images[i]
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("image %d buffer has no data", i)
		}
		start := bv.ByteOffset
		end := start + bv.ByteLength
		return buf.Data[start:end], nil
	}
	if img.URI != "" && dir != "" {
		return os.ReadFile(filepath.Join(dir, img.URI))
	}
	return nil, fmt.Errorf("image %d has no data", i)
}

// decodeTextureImage decodes the image behind texture index ti.
func decodeTextureImage(doc *gltf.Document, ti int) (image.Image, error) {
	if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return nil, fmt.Errorf("texture %d: %w", ti, ErrInvalidIndex)
	}
	data, err := imageBytes(doc, *doc.Textures[ti].Source, "")
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture %d: %w", ti, err)
	}
	return img, nil
}

// LoadGLTFWithTexture loads a GLTF file and returns the mesh plus its
// base-color texture, or the first decodable image when no material
// references one. The texture may be nil.
func LoadGLTFWithTexture(path string) (*TriangleMesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().fromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	for _, m := range mesh.Materials {
		if m.HasTexture {
			return mesh, m.BaseMap, nil
		}
	}

	dir := filepath.Dir(path)
	for i := range doc.Images {
		data, err := imageBytes(doc, i, dir)
		if err != nil || len(data) == 0 {
			continue
		}
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return mesh, img, nil
		}
	}

	return mesh, nil, nil
}
