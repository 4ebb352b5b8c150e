package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Vertex is a vertex after the transform stage. Position holds clip space
// coordinates until the triangle is projected, then screen x, screen y, NDC
// depth and the untouched view-space w.
type Vertex struct {
	Position math3d.Vec4
	World    math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2
	Color    RGBColor
	ViewDir  math3d.Vec3 // normalize(World - eye)
}

// TransformOptions selects per-draw behavior of the transform stage.
type TransformOptions struct {
	// SimpleFrustumCulling drops any triangle with a vertex outside the x/y
	// range of the view volume instead of clipping it.
	SimpleFrustumCulling bool
	// MirrorZ converts input data to the opposite handedness before
	// transforming it.
	MirrorZ bool
}

// HitRecord is the result of a successful coverage test.
type HitRecord struct {
	MaterialID int
	Depth      float64 // Screen-space (NDC) depth
	W          float64 // View-space depth
	Color      RGBColor
	UV         math3d.Vec2
	Normal     math3d.Vec3
	Tangent    math3d.Vec3
	ViewDir    math3d.Vec3
}

// Triangle carries one source triangle through transform, clipping and
// coverage testing. A Triangle can be reused across draws with Set.
type Triangle struct {
	Input      [3]models.Vertex
	V          [3]Vertex
	MaterialID int
	Cull       models.CullMode

	// InFrustum is false when the whole triangle was rejected.
	InFrustum bool
	// Clipped is true when a clip plane cut the triangle. Sub then holds the
	// pieces to draw instead of V.
	Clipped bool
	Sub     []Triangle

	side  models.CullMode // Cull with CullNone resolved to a side
	area  float64         // Signed screen-space area, x2
	invW  [3]float64
	invZ  [3]float64
	clipA [][3]Vertex
	clipB [][3]Vertex
}

// NewTriangle creates a triangle from three mesh vertices.
func NewTriangle(v0, v1, v2 models.Vertex, materialID int, cull models.CullMode) *Triangle {
	t := &Triangle{}
	t.Set([3]models.Vertex{v0, v1, v2}, materialID, cull)
	return t
}

// Set resets the triangle for a new source triangle, keeping buffers.
func (t *Triangle) Set(in [3]models.Vertex, materialID int, cull models.CullMode) {
	t.Input = in
	t.MaterialID = materialID
	t.Cull = cull
	t.side = cull
	t.InFrustum = false
	t.Clipped = false
	t.Sub = t.Sub[:0]
}

// TransformVertices moves the input vertices to clip space, applies the
// view-volume test and maps the surviving triangle (or its clipped pieces)
// to a width x height screen.
func (t *Triangle) TransformVertices(width, height int, model math3d.Mat4, cam *Camera, opts TransformOptions) {
	if opts.MirrorZ {
		model = model.MirrorZ()
	}
	mvp := cam.ViewProjectionMatrix().Mul(model)
	eye := cam.Eye()

	for i := range 3 {
		in := t.Input[i]
		pos, normal, tangent := in.Position, in.Normal, in.Tangent
		if opts.MirrorZ {
			pos, normal, tangent = pos.MirrorZ(), normal.MirrorZ(), tangent.MirrorZ()
		}

		out := &t.V[i]
		out.Color = FromVec3(in.Color)
		out.UV = in.UV
		out.Normal = model.MulVec3Dir(normal).Normalize()
		out.Tangent = model.MulVec3Dir(tangent).Normalize()
		out.World = model.MulVec3(pos)
		out.ViewDir = out.World.Sub(eye).Normalize()
		out.Position = mvp.MulPoint(pos)
	}

	t.resolveSide(cam.LeftHanded())

	if opts.SimpleFrustumCulling {
		t.InFrustum = !t.anyVertexOutsideXY()
		t.Clipped = false
		t.Sub = t.Sub[:0]
	} else {
		t.clip(eye)
	}

	if !t.InFrustum {
		return
	}

	w, h := float64(width), float64(height)
	if !t.Clipped {
		t.project(w, h)
		return
	}
	for i := range t.Sub {
		t.Sub[i].project(w, h)
	}
}

// resolveSide picks the cull side for CullNone so that only the face turned
// toward the camera is drawn.
func (t *Triangle) resolveSide(leftHanded bool) {
	if t.Cull != models.CullNone {
		t.side = t.Cull
		return
	}

	p0, p1, p2 := t.V[0].World, t.V[1].World, t.V[2].World
	normal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	if leftHanded {
		// The cross product flips with the coordinate system
		normal = normal.Negate()
	}
	view := t.V[0].ViewDir.Add(t.V[1].ViewDir).Add(t.V[2].ViewDir)

	if normal.Dot(view) > 0 {
		// Looking along the normal: the back face is visible
		t.side = models.CullFront
	} else {
		t.side = models.CullBack
	}
}

// anyVertexOutsideXY reports whether a clip-space vertex lies outside
// [-w, w] in x or y.
func (t *Triangle) anyVertexOutsideXY() bool {
	for i := range 3 {
		p := t.V[i].Position
		if p.X < -p.W || p.X > p.W || p.Y < -p.W || p.Y > p.W {
			return true
		}
	}
	return false
}

// project performs the perspective divide and viewport mapping, then caches
// what the coverage test needs.
func (t *Triangle) project(width, height float64) {
	for i := range 3 {
		p := t.V[i].Position.PerspectiveDivide()
		p.X = (p.X + 1) * 0.5 * width
		p.Y = (1 - p.Y) * 0.5 * height
		t.V[i].Position = p
	}
	t.prepare()
}

// prepare caches the reciprocal depths and the total signed area of a
// triangle already in screen space.
func (t *Triangle) prepare() {
	for i := range 3 {
		t.invW[i] = 1 / t.V[i].Position.W
		t.invZ[i] = 1 / t.V[i].Position.Z
	}
	v0, v1, v2 := t.V[0].Position.XY(), t.V[1].Position.XY(), t.V[2].Position.XY()
	t.area = v2.Sub(v0).Cross(v1.Sub(v0))
}

// Bounds returns the screen-space bounding box of a projected triangle.
func (t *Triangle) Bounds() (minX, minY, maxX, maxY float64) {
	p0, p1, p2 := t.V[0].Position, t.V[1].Position, t.V[2].Position
	return min(p0.X, p1.X, p2.X), min(p0.Y, p1.Y, p2.Y),
		max(p0.X, p1.X, p2.X), max(p0.Y, p1.Y, p2.Y)
}

// Hit tests whether the screen-space point p is covered and, if so, fills
// rec with perspective-correct attributes.
//
// Each edge's signed area is the weight of the vertex opposite to it. Back
// culling rejects a negative edge area, front culling a positive one. The
// total area is not guarded: a degenerate triangle produces NaN weights and
// fails the depth test.
func (t *Triangle) Hit(p math3d.Vec2, rec *HitRecord) bool {
	v0, v1, v2 := t.V[0].Position.XY(), t.V[1].Position.XY(), t.V[2].Position.XY()

	e2 := p.Sub(v0).Cross(v1.Sub(v0))
	if t.rejects(e2) {
		return false
	}
	e0 := p.Sub(v1).Cross(v2.Sub(v1))
	if t.rejects(e0) {
		return false
	}
	e1 := p.Sub(v2).Cross(v0.Sub(v2))
	if t.rejects(e1) {
		return false
	}

	b0, b1, b2 := e0/t.area, e1/t.area, e2/t.area

	// Both depths are interpolated through their reciprocals
	w := 1 / (b0*t.invW[0] + b1*t.invW[1] + b2*t.invW[2])
	z := 1 / (b0*t.invZ[0] + b1*t.invZ[1] + b2*t.invZ[2])

	// Perspective-correct weights
	k0, k1, k2 := b0*t.invW[0]*w, b1*t.invW[1]*w, b2*t.invW[2]*w
	a, b, c := &t.V[0], &t.V[1], &t.V[2]

	rec.MaterialID = t.MaterialID
	rec.Depth = z
	rec.W = w
	rec.Color = a.Color.Scale(k0).Add(b.Color.Scale(k1)).Add(c.Color.Scale(k2))
	rec.UV = a.UV.Scale(k0).Add(b.UV.Scale(k1)).Add(c.UV.Scale(k2))
	rec.Normal = a.Normal.Scale(k0).Add(b.Normal.Scale(k1)).Add(c.Normal.Scale(k2)).Normalize()
	rec.Tangent = a.Tangent.Scale(k0).Add(b.Tangent.Scale(k1)).Add(c.Tangent.Scale(k2)).Normalize()
	rec.ViewDir = a.ViewDir.Scale(k0).Add(b.ViewDir.Scale(k1)).Add(c.ViewDir.Scale(k2)).Normalize()

	return true
}

func (t *Triangle) rejects(edgeArea float64) bool {
	switch t.side {
	case models.CullBack:
		return edgeArea < 0
	case models.CullFront:
		return edgeArea > 0
	}
	return false
}
