package models

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// GenerateTangents computes per-vertex tangents from positions and UVs.
// Each triangle's UV-space x direction is accumulated onto its vertices, then
// every tangent is made orthogonal to its normal and normalized.
func (m *TriangleMesh) GenerateTangents() {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Vec3{}
	}

	for _, tri := range m.Triangles() {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]

		e0 := b.Position.Sub(a.Position)
		e1 := c.Position.Sub(a.Position)
		d0 := b.UV.Sub(a.UV)
		d1 := c.UV.Sub(a.UV)

		det := d0.X*d1.Y - d1.X*d0.Y
		if det == 0 || math.IsNaN(det) {
			continue
		}
		r := 1 / det

		tangent := e0.Scale(d1.Y).Sub(e1.Scale(d0.Y)).Scale(r)
		for _, idx := range tri {
			m.Vertices[idx].Tangent = m.Vertices[idx].Tangent.Add(tangent)
		}
	}

	m.OrthonormalizeTangents()
}

// OrthonormalizeTangents normalizes every normal and makes every tangent a
// unit vector orthogonal to it (Gram-Schmidt). Vertices whose tangent is
// missing or parallel to the normal get an arbitrary perpendicular.
func (m *TriangleMesh) OrthonormalizeTangents() {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Normal = v.Normal.Normalize()

		t := v.Tangent.Reject(v.Normal).Normalize()
		if t.LenSq() == 0 {
			t = perpendicular(v.Normal)
		}
		v.Tangent = t
	}
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n math3d.Vec3) math3d.Vec3 {
	if n.LenSq() == 0 {
		return math3d.V3(1, 0, 0)
	}
	axis := math3d.V3(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		axis = math3d.V3(0, 1, 0)
	}
	return axis.Reject(n).Normalize()
}
