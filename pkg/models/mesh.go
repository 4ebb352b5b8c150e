// Package models provides triangle meshes and the loaders that build them.
package models

import (
	"errors"
	"fmt"
	"image"
	"iter"

	"github.com/taigrr/softras/pkg/math3d"
)

var (
	// ErrNoGeometry is returned when a mesh or file contains no triangles.
	ErrNoGeometry = errors.New("no geometry")
	// ErrInvalidIndex is returned when an index points past the vertex buffer.
	ErrInvalidIndex = errors.New("invalid index")
)

// Vertex holds all input vertex attributes in local space.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2
	Color    math3d.Vec3 // Linear RGB in 0-1 range
}

// Material is the material description a loader found next to the geometry.
// It is a hint for scene setup, not a shading material.
type Material struct {
	Name       string
	BaseColor  [4]float64  // RGBA in 0-1 range
	Metallic   float64     // 0 = dielectric, 1 = metal
	Roughness  float64     // 0 = smooth, 1 = rough
	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// TriangleMesh is a static vertex/index buffer pair plus the per-mesh state
// the rasterizer needs to draw it.
type TriangleMesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32 // Empty means the vertices are consumed in order
	Topology Topology

	// Transform places the mesh in the world before animation is applied.
	Transform math3d.Mat4
	// World is the current model matrix: Transform * RotateY(angle).
	World math3d.Mat4

	Sampler    SamplerState
	Cull       CullMode
	Blend      BlendState
	MaterialID int
	Valid      bool
	LeftHanded bool

	RotateSpeed float64 // Radians per second
	angle       float64

	Materials []Material // Loader hints, may be empty

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewTriangleMesh creates an empty, valid triangle list mesh.
func NewTriangleMesh(name string) *TriangleMesh {
	return &TriangleMesh{
		Name:        name,
		Vertices:    make([]Vertex, 0),
		Indices:     make([]uint32, 0),
		Topology:    TopologyTriangleList,
		Transform:   math3d.Identity(),
		World:       math3d.Identity(),
		Sampler:     SamplerPoint,
		Cull:        CullBack,
		Blend:       BlendNone,
		Valid:       true,
		RotateSpeed: 1,
	}
}

// indexCount returns the number of entries the topology walks over.
func (m *TriangleMesh) indexCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

func (m *TriangleMesh) index(i int) uint32 {
	if len(m.Indices) > 0 {
		return m.Indices[i]
	}
	return uint32(i)
}

// TriangleCount returns the number of primitives the topology produces.
func (m *TriangleMesh) TriangleCount() int {
	n := m.indexCount()
	switch m.Topology {
	case TopologyTriangleStrip:
		if n < 3 {
			return 0
		}
		return n - 2
	default:
		return n / 3
	}
}

// VertexCount returns the number of vertices.
func (m *TriangleMesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the vertex indices of primitive i.
// Odd strip triangles have their last two indices swapped so every
// primitive keeps the winding of the first.
func (m *TriangleMesh) Triangle(i int) [3]uint32 {
	if m.Topology == TopologyTriangleStrip {
		a, b, c := m.index(i), m.index(i+1), m.index(i+2)
		if i%2 == 1 {
			b, c = c, b
		}
		return [3]uint32{a, b, c}
	}
	return [3]uint32{m.index(i * 3), m.index(i*3 + 1), m.index(i*3 + 2)}
}

// Triangles iterates over every primitive's vertex indices in draw order.
func (m *TriangleMesh) Triangles() iter.Seq2[int, [3]uint32] {
	return func(yield func(int, [3]uint32) bool) {
		for i := range m.TriangleCount() {
			if !yield(i, m.Triangle(i)) {
				return
			}
		}
	}
}

// Validate checks that the mesh has geometry and that every index is in range.
func (m *TriangleMesh) Validate() error {
	if len(m.Vertices) == 0 || m.TriangleCount() == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrNoGeometry)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: index %d = %d, %d vertices: %w",
				m.Name, i, idx, len(m.Vertices), ErrInvalidIndex)
		}
	}
	return nil
}

// ToTriangleList rewrites a strip mesh as an equivalent triangle list.
func (m *TriangleMesh) ToTriangleList() {
	if m.Topology == TopologyTriangleList {
		return
	}
	indices := make([]uint32, 0, m.TriangleCount()*3)
	for _, tri := range m.Triangles() {
		indices = append(indices, tri[0], tri[1], tri[2])
	}
	m.Indices = indices
	m.Topology = TopologyTriangleList
}

// Update advances the mesh rotation about world up by dt seconds and
// rebuilds the model matrix.
func (m *TriangleMesh) Update(dt float64) {
	m.angle -= m.RotateSpeed * dt
	m.World = m.Transform.Mul(math3d.RotateY(m.angle))
}

// Angle returns the current rotation about world up.
func (m *TriangleMesh) Angle() float64 {
	return m.angle
}

// SetAngle sets the rotation about world up and rebuilds the model matrix.
func (m *TriangleMesh) SetAngle(angle float64) {
	m.angle = angle
	m.World = m.Transform.Mul(math3d.RotateY(m.angle))
}

// SetTransform sets the placement transform and rebuilds the model matrix.
func (m *TriangleMesh) SetTransform(t math3d.Mat4) {
	m.Transform = t
	m.World = m.Transform.Mul(math3d.RotateY(m.angle))
}

// CalculateBounds computes the local-space axis-aligned bounding box.
func (m *TriangleMesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *TriangleMesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Center returns the center of the bounding box.
func (m *TriangleMesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *TriangleMesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *TriangleMesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for _, tri := range m.Triangles() {
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		// Unnormalized, so larger faces weigh more
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for _, idx := range tri {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// MirrorZ negates the z component of every position, normal and tangent,
// converting the mesh between left- and right-handed coordinates. Winding
// is kept, since mirrored data drawn through a mirrored camera lands on the
// same screen positions.
func (m *TriangleMesh) MirrorZ() {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = v.Position.MirrorZ()
		v.Normal = v.Normal.MirrorZ()
		v.Tangent = v.Tangent.MirrorZ()
	}
	m.LeftHanded = !m.LeftHanded
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *TriangleMesh) Clone() *TriangleMesh {
	clone := *m
	clone.Vertices = make([]Vertex, len(m.Vertices))
	clone.Indices = make([]uint32, len(m.Indices))
	clone.Materials = make([]Material, len(m.Materials))
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	copy(clone.Materials, m.Materials)
	return &clone
}

// SetColor sets every vertex color.
func (m *TriangleMesh) SetColor(c math3d.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}
