package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// testQuad is a 2x2 quad in the z=0 plane facing +z.
func testQuad() *models.TriangleMesh {
	m := models.NewTriangleMesh("quad")
	m.Vertices = []models.Vertex{
		{Position: math3d.V3(-1, -1, 0), UV: math3d.V2(0, 1)},
		{Position: math3d.V3(1, -1, 0), UV: math3d.V2(1, 1)},
		{Position: math3d.V3(1, 1, 0), UV: math3d.V2(1, 0)},
		{Position: math3d.V3(-1, 1, 0), UV: math3d.V2(0, 0)},
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.V3(0, 0, 1)
		m.Vertices[i].Tangent = math3d.V3(1, 0, 0)
		m.Vertices[i].Color = math3d.V3(1, 1, 1)
	}
	m.Indices = []uint32{0, 1, 2, 0, 2, 3}
	m.CalculateBounds()
	return m
}

// testScene lights testQuad head on with a diffuse-only grey material.
func testScene(tb testing.TB, leftHanded bool) *Scene {
	tb.Helper()
	s := NewScene(testCamera(leftHanded))

	mat := NewMaterial(0, WorkflowSpecularGlossiness)
	mat.DiffuseColor = RGBf(0.8, 0.8, 0.8)
	mat.SpecGloss.SpecularReflectance = 0
	s.Materials.Add(mat)

	if _, err := s.Lights.Add(NewDirectionalLight(math3d.V3(0, 0, -1), White(), 1)); err != nil {
		tb.Fatal(err)
	}
	s.AddMesh(testQuad())
	return s
}

func renderScene(s *Scene) *Rasterizer {
	r := NewRasterizer(NewFramebuffer(64, 64), nil)
	r.Render(s)
	return r
}

func TestRasterizerClearDepth(t *testing.T) {
	r := NewRasterizer(NewFramebuffer(10, 10), nil)
	r.depth[42] = 0.5
	r.ClearDepth()

	for i, d := range r.depth {
		if !math.IsInf(d, 1) {
			t.Fatalf("depth[%d] = %v after clear, want +Inf", i, d)
		}
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r := NewRasterizer(NewFramebuffer(10, 10), nil)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if d := r.Depth(p[0], p[1]); !math.IsInf(d, 1) {
			t.Errorf("Depth(%d, %d) = %v, want +Inf", p[0], p[1], d)
		}
	}
}

func TestRenderQuadUniformDiffuse(t *testing.T) {
	r := renderScene(testScene(t, false))
	fb := r.Framebuffer()

	// irradiance 1 * 0.8 / pi
	v := toByte(0.8 / math.Pi)
	want := color.RGBA{v, v, v, 255}

	if got := fb.GetPixel(32, 32); got != want {
		t.Fatalf("center = %v, want %v", got, want)
	}

	covered := 0
	for i, p := range fb.Pixels {
		switch p {
		case want:
			covered++
		case ColorClear:
		default:
			t.Fatalf("pixel %d = %v, want %v or the clear color", i, p, want)
		}
	}
	// Quad spans 25.6..38.4 in both axes: 12x12 pixel centers. Centers on
	// the shared diagonal may fall to either triangle or, by rounding, to
	// neither.
	if covered < 144-12 || covered > 144 {
		t.Errorf("covered %d pixels, want about 144", covered)
	}
	if got := fb.GetPixel(0, 0); got != ColorClear {
		t.Errorf("corner = %v, want clear color", got)
	}
}

func TestRenderTiltedQuadDepthMonotonic(t *testing.T) {
	s := testScene(t, false)
	// Top edge leans toward the camera
	s.Meshes[0].SetTransform(math3d.RotateX(math.Pi / 4))
	r := renderScene(s)

	prev := math.Inf(-1)
	rows := 0
	for y := range 64 {
		d := r.Depth(32, y)
		if math.IsInf(d, 1) {
			continue
		}
		if d <= prev {
			t.Fatalf("depth at row %d = %v, not greater than %v above it", y, d, prev)
		}
		prev = d
		rows++
	}
	if rows < 5 {
		t.Fatalf("only %d rows covered", rows)
	}
}

func TestDepthTestKeepsNearest(t *testing.T) {
	pts := [3]math3d.Vec2{{X: -1, Y: -1}, {X: -1, Y: 20}, {X: 20, Y: -1}}
	colors := map[float64]RGBColor{
		0.9: RGBf(0.5, 0, 0),
		0.5: RGBf(0, 0.5, 0),
		0.7: RGBf(0, 0, 0.5),
	}
	orders := [][]float64{
		{0.9, 0.5, 0.7},
		{0.5, 0.9, 0.7},
		{0.7, 0.9, 0.5},
		{0.5, 0.7, 0.9},
	}
	mesh := models.NewTriangleMesh("depth")
	opts := Options{}

	for _, order := range orders {
		r := NewRasterizer(NewFramebuffer(8, 8), nil)
		r.Clear()
		for _, z := range order {
			tri := screenTriangle(models.CullBack, pts, [3]float64{z, z, z}, [3]float64{1, 1, 1})
			for i := range 3 {
				tri.V[i].Color = colors[z]
			}
			r.rasterize(tri, nil, nil, mesh, opts)
		}

		want := RGBf(0, 0.5, 0).ToRGBA()
		if got := r.Framebuffer().GetPixel(4, 4); got != want {
			t.Errorf("order %v: pixel = %v, want %v", order, got, want)
		}
		if d := r.Depth(4, 4); math.Abs(d-0.5) > 1e-12 {
			t.Errorf("order %v: depth = %v, want 0.5", order, d)
		}
	}
}

func TestDepthOutsideUnitRangeRejected(t *testing.T) {
	pts := [3]math3d.Vec2{{X: -1, Y: -1}, {X: -1, Y: 20}, {X: 20, Y: -1}}
	mesh := models.NewTriangleMesh("range")

	for _, z := range []float64{-0.1, 0, 1, 1.5} {
		r := NewRasterizer(NewFramebuffer(8, 8), nil)
		r.Clear()
		tri := screenTriangle(models.CullBack, pts, [3]float64{z, z, z}, [3]float64{1, 1, 1})
		r.rasterize(tri, nil, nil, mesh, Options{})
		if got := r.Framebuffer().GetPixel(4, 4); got != ColorClear {
			t.Errorf("depth %v drew %v", z, got)
		}
	}
}

func TestRenderHandednessEquivalent(t *testing.T) {
	rh := renderScene(testScene(t, false))
	lh := renderScene(testScene(t, true))

	for _, p := range [][2]int{{32, 32}, {28, 30}, {36, 35}} {
		a := rh.Framebuffer().GetPixel(p[0], p[1])
		b := lh.Framebuffer().GetPixel(p[0], p[1])
		if a != b {
			t.Errorf("pixel %v: right-handed %v, left-handed %v", p, a, b)
		}
		if math.Abs(rh.Depth(p[0], p[1])-lh.Depth(p[0], p[1])) > 1e-9 {
			t.Errorf("pixel %v: depth differs", p)
		}
	}
}

func TestRenderLeftHandedMesh(t *testing.T) {
	s := testScene(t, false)
	s.Meshes[0].MirrorZ() // Same quad stored left-handed
	r := renderScene(s)

	want := renderScene(testScene(t, false)).Framebuffer().GetPixel(32, 32)
	if got := r.Framebuffer().GetPixel(32, 32); got != want {
		t.Errorf("left-handed mesh center = %v, want %v", got, want)
	}
}

func TestRenderClipsLargeQuad(t *testing.T) {
	tests := []struct {
		name   string
		simple bool
		drawn  bool
	}{
		{"exact clipping", false, true},
		{"simple culling", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := testScene(t, false)
			s.Meshes[0].SetTransform(math3d.Scale(math3d.V3(100, 100, 1)))
			s.Options.UseSimpleFrustumCulling = tc.simple
			r := renderScene(s)

			drawn := r.Framebuffer().GetPixel(32, 32) != ColorClear
			if drawn != tc.drawn {
				t.Errorf("center drawn = %v, want %v", drawn, tc.drawn)
			}
			st := r.Stats()
			if tc.simple && st.TrianglesOut != 2 {
				t.Errorf("TrianglesOut = %d, want 2", st.TrianglesOut)
			}
			if !tc.simple && (st.TrianglesCut != 2 || st.SubTriangles < 2) {
				t.Errorf("TrianglesCut = %d, SubTriangles = %d", st.TrianglesCut, st.SubTriangles)
			}
		})
	}
}

func TestRenderSkipsMeshes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Scene)
	}{
		{"missing material", func(s *Scene) { s.Meshes[0].MaterialID = 7 }},
		{"invalid mesh", func(s *Scene) { s.Meshes[0].Valid = false }},
		{"index out of range", func(s *Scene) { s.Meshes[0].Indices = []uint32{0, 1, 7} }},
		{"no geometry", func(s *Scene) { s.Meshes[0].Vertices = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := testScene(t, false)
			tc.setup(s)
			r := renderScene(s)

			if got := r.Framebuffer().GetPixel(32, 32); got != ColorClear {
				t.Errorf("center = %v, want clear color", got)
			}
			if r.Stats().MeshesSkipped != 1 {
				t.Errorf("MeshesSkipped = %d, want 1", r.Stats().MeshesSkipped)
			}
		})
	}
}

func TestRenderVertexColorWithoutMaterial(t *testing.T) {
	s := testScene(t, false)
	s.Meshes[0].MaterialID = 7 // Ignored without materials
	s.Meshes[0].SetColor(math3d.V3(0, 0.5, 0))
	s.Options.UseMaterial = false
	r := renderScene(s)

	want := RGBf(0, 0.5, 0).ToRGBA()
	if got := r.Framebuffer().GetPixel(32, 32); got != want {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func TestRenderFrustumEarlyOut(t *testing.T) {
	s := testScene(t, false)
	s.Meshes[0].SetTransform(math3d.Translate(math3d.V3(0, 0, 20))) // Behind the camera
	r := renderScene(s)

	st := r.Stats()
	if st.MeshesTested != 1 || st.MeshesCulled != 1 {
		t.Errorf("tested %d, culled %d; want 1, 1", st.MeshesTested, st.MeshesCulled)
	}
	if st.Triangles != 0 {
		t.Errorf("transformed %d triangles of a culled mesh", st.Triangles)
	}
}

func TestRenderBlendAdd(t *testing.T) {
	s := testScene(t, false)
	s.Meshes[0].Blend = models.BlendAdd
	r := renderScene(s)

	v := toByte(0.8 / math.Pi)
	want := ColorClear.R + v
	if got := r.Framebuffer().GetPixel(32, 32); got.R != want {
		t.Errorf("center red = %d, want %d", got.R, want)
	}
}

func TestRenderCullFrontHidesQuad(t *testing.T) {
	s := testScene(t, false)
	s.Meshes[0].Cull = models.CullFront
	r := renderScene(s)

	if got := r.Framebuffer().GetPixel(32, 32); got != ColorClear {
		t.Errorf("front-culled quad drew %v", got)
	}
}

func TestRenderDepthAsColor(t *testing.T) {
	s := testScene(t, false)
	s.Options.UseDepthBufferAsColor = true
	r := renderScene(s)

	d := Remap(r.Depth(32, 32), 0.985, 1)
	want := RGBColor{d, d, d}.ToRGBA()
	if got := r.Framebuffer().GetPixel(32, 32); got != want {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func BenchmarkRasterizeQuad(b *testing.B) {
	s := testScene(b, false)
	r := NewRasterizer(NewFramebuffer(320, 240), nil)
	s.Camera.SetViewport(320, 240)

	for b.Loop() {
		r.Render(s)
	}
}
