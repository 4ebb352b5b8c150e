package assets

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Quad returns a 2x2 quad in the z=0 plane facing +z.
func Quad() *models.TriangleMesh {
	m := models.NewTriangleMesh("quad")
	addFace(m, math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))
	m.CalculateBounds()
	return m
}

// Cube returns a 2x2x2 cube centered on the origin with outward faces.
func Cube() *models.TriangleMesh {
	m := models.NewTriangleMesh("cube")
	// Each face is (tangent, up) with tangent x up = outward normal
	faces := [][2]math3d.Vec3{
		{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}
	for _, f := range faces {
		addFace(m, f[0].Cross(f[1]), f[0], f[1])
	}
	m.CalculateBounds()
	return m
}

// addFace appends a unit-half-size square centered at center, spanned by
// t and u, wound counter-clockwise around t x u.
func addFace(m *models.TriangleMesh, center, t, u math3d.Vec3) {
	n := t.Cross(u)
	base := uint32(len(m.Vertices))
	corners := [4]struct {
		s, v float64
		uv   math3d.Vec2
	}{
		{-1, -1, math3d.V2(0, 1)},
		{1, -1, math3d.V2(1, 1)},
		{1, 1, math3d.V2(1, 0)},
		{-1, 1, math3d.V2(0, 0)},
	}
	for _, c := range corners {
		m.Vertices = append(m.Vertices, models.Vertex{
			Position: center.Add(t.Scale(c.s)).Add(u.Scale(c.v)),
			Normal:   n,
			Tangent:  t,
			UV:       c.uv,
			Color:    math3d.V3(1, 1, 1),
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}
