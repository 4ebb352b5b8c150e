package render

import (
	"github.com/taigrr/softras/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive is on the normal side.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six planes of a view volume with inward normals, ordered
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a view-projection matrix whose
// clip volume is -w <= x, y <= w and 0 <= z <= w (Gribb/Hartmann).
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	// Row i of the column-major matrix is m[i], m[i+4], m[i+8], m[i+12].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	f.Planes[FrustumLeft] = Plane{r3.Add(r0), d3 + d0}
	f.Planes[FrustumRight] = Plane{r3.Sub(r0), d3 - d0}
	f.Planes[FrustumBottom] = Plane{r3.Add(r1), d3 + d1}
	f.Planes[FrustumTop] = Plane{r3.Sub(r1), d3 - d1}
	// Depth range starts at 0, so the near plane is row 2 alone
	f.Planes[FrustumNear] = Plane{r2, d2}
	f.Planes[FrustumFar] = Plane{r3.Sub(r2), d3 - d2}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// MirrorZ returns the box with z negated.
func (b AABB) MirrorZ() AABB {
	return AABB{
		Min: math3d.V3(b.Min.X, b.Min.Y, -b.Max.Z),
		Max: math3d.V3(b.Max.X, b.Max.Y, -b.Min.Z),
	}
}

// Transform returns the box bounding all 8 transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	p := m.MulVec3(corners[0])
	out := AABB{Min: p, Max: p}
	for i := 1; i < 8; i++ {
		p = m.MulVec3(corners[i])
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB reports whether any part of the box may be inside the
// frustum. It tests the corner furthest along each plane normal, so boxes
// near a frustum corner can pass without being visible.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]
		p := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether the box is completely inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]
		n := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Min.X, box.Max.X),
			selectComponent(plane.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			selectComponent(plane.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if plane.DistanceToPoint(n) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// Frustum returns the camera's world-space view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}
