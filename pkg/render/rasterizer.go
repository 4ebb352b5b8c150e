package render

import (
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Stats counts the work done in the last frame.
type Stats struct {
	MeshesTested   int // Meshes tested against the frustum
	MeshesCulled   int // Meshes rejected by the frustum test
	MeshesSkipped  int // Invalid meshes or meshes without a material
	Triangles      int // Triangles transformed
	TrianglesOut   int // Triangles rejected by the view volume
	TrianglesCut   int // Triangles cut by a clip plane
	SubTriangles   int // Pieces produced by clipping
	PixelsTested   int // Coverage tests run
	PixelsCovered  int // Coverage tests that hit
	PixelsRejected int // Covered pixels that failed the depth test
}

// Rasterizer draws meshes into a framebuffer one pixel at a time.
type Rasterizer struct {
	fb     *Framebuffer
	depth  []float64 // Depth buffer (row-major, same size as fb)
	logger *zap.Logger

	tri   Triangle // Reused for every primitive
	rec   HitRecord
	stats Stats
}

// NewRasterizer creates a rasterizer drawing into fb. A nil logger discards
// log output.
func NewRasterizer(fb *Framebuffer, logger *zap.Logger) *Rasterizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Rasterizer{
		fb:     fb,
		logger: logger,
	}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.depth = nil
		return
	}
	r.depth = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets every depth to +Inf.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.depth)
	if n == 0 {
		return
	}
	r.depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(r.depth[i:], r.depth[:i])
	}
}

// Clear resets the color buffer to ColorClear and the depth buffer to +Inf.
func (r *Rasterizer) Clear() {
	r.fb.Clear(ColorClear)
	r.ClearDepth()
}

// Depth returns the stored depth at (x, y), +Inf outside the buffer.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.Inf(1)
	}
	return r.depth[y*r.Width()+x]
}

// Stats returns the counters of the last frame.
func (r *Rasterizer) Stats() Stats {
	return r.stats
}

// Render clears the buffers and draws every mesh of the scene.
func (r *Rasterizer) Render(s *Scene) {
	r.stats = Stats{}
	r.Clear()

	lights := s.Lights.Active()
	if s.Camera.LeftHanded() {
		// Lights are authored right-handed
		mirrored := make([]*Light, len(lights))
		for i, l := range lights {
			m := l.Mirrored()
			mirrored[i] = &m
		}
		lights = mirrored
	}

	frustum := s.Camera.Frustum()
	for _, mesh := range s.Meshes {
		r.DrawMesh(mesh, s.Materials, lights, s.Camera, frustum, s.Options)
	}

	r.logger.Debug("frame rendered",
		zap.Int("triangles", r.stats.Triangles),
		zap.Int("clipped", r.stats.TrianglesCut),
		zap.Int("pixels", r.stats.PixelsCovered),
	)
}

// DrawMesh draws one mesh. lights must already be expressed in the camera's
// handedness.
func (r *Rasterizer) DrawMesh(mesh *models.TriangleMesh, materials *MaterialSet, lights []*Light, cam *Camera, frustum Frustum, opts Options) {
	if !mesh.Valid {
		r.stats.MeshesSkipped++
		r.logger.Debug("skipping invalid mesh", zap.String("mesh", mesh.Name))
		return
	}
	// Buffers may have been edited since the mesh was loaded
	if err := mesh.Validate(); err != nil {
		r.stats.MeshesSkipped++
		r.logger.Debug("skipping invalid mesh", zap.String("mesh", mesh.Name), zap.Error(err))
		return
	}

	var mat *Material
	if opts.UseMaterial {
		var ok bool
		mat, ok = materials.Get(mesh.MaterialID)
		if !ok {
			r.stats.MeshesSkipped++
			r.logger.Warn("mesh material not found",
				zap.String("mesh", mesh.Name),
				zap.Int("material", mesh.MaterialID),
			)
			return
		}
	}

	mirror := mesh.LeftHanded != cam.LeftHanded()
	if r.culled(mesh, mirror, frustum) {
		return
	}

	topts := TransformOptions{
		SimpleFrustumCulling: opts.UseSimpleFrustumCulling,
		MirrorZ:              mirror,
	}
	width, height := r.Width(), r.Height()

	for _, idx := range mesh.Triangles() {
		in := [3]models.Vertex{
			mesh.Vertices[idx[0]],
			mesh.Vertices[idx[1]],
			mesh.Vertices[idx[2]],
		}
		r.tri.Set(in, mesh.MaterialID, mesh.Cull)
		r.tri.TransformVertices(width, height, mesh.World, cam, topts)
		r.stats.Triangles++

		if !r.tri.InFrustum {
			r.stats.TrianglesOut++
			continue
		}
		if !r.tri.Clipped {
			r.rasterize(&r.tri, mat, lights, mesh, opts)
			continue
		}

		r.stats.TrianglesCut++
		r.stats.SubTriangles += len(r.tri.Sub)
		for i := range r.tri.Sub {
			r.rasterize(&r.tri.Sub[i], mat, lights, mesh, opts)
		}
	}
}

// culled tests the mesh's world bounds against the frustum.
func (r *Rasterizer) culled(mesh *models.TriangleMesh, mirror bool, frustum Frustum) bool {
	r.stats.MeshesTested++

	lo, hi := mesh.Bounds()
	box := NewAABB(lo, hi)
	world := mesh.World
	if mirror {
		box = box.MirrorZ()
		world = world.MirrorZ()
	}
	if frustum.IntersectAABB(box.Transform(world)) {
		return false
	}
	r.stats.MeshesCulled++
	return true
}

// rasterize scans the bounding box of a projected triangle, sampling each
// pixel at its center.
func (r *Rasterizer) rasterize(t *Triangle, mat *Material, lights []*Light, mesh *models.TriangleMesh, opts Options) {
	width, height := r.Width(), r.Height()

	x0, y0, x1, y1 := t.Bounds()
	minX := max(0, int(math.Floor(x0)))
	minY := max(0, int(math.Floor(y0)))
	maxX := min(width-1, int(math.Ceil(x1)))
	maxY := min(height-1, int(math.Ceil(y1)))

	rec := &r.rec
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			r.stats.PixelsTested++
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
			if !t.Hit(p, rec) {
				continue
			}
			r.stats.PixelsCovered++

			i := y*width + x
			// NaN from a degenerate triangle fails every comparison
			if !(rec.Depth > 0 && rec.Depth < 1 && rec.Depth <= r.depth[i]) {
				r.stats.PixelsRejected++
				continue
			}
			r.depth[i] = rec.Depth

			c := Shade(rec, mat, lights, mesh.Sampler, opts).ToRGBA()
			if mesh.Blend == models.BlendAdd {
				r.fb.AddPixel(x, y, c)
			} else {
				r.fb.Pixels[i] = c
			}
		}
	}
}
