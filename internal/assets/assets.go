// Package assets turns a config into a render.Scene: it loads meshes and
// textures, applies per-mesh render state and places the camera and lights.
package assets

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/taigrr/softras/internal/config"
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// Loader loads scene assets. Textures are cached by path, so materials
// sharing a map decode it once.
type Loader struct {
	baseDir string
	logger  *zap.Logger

	mu       sync.RWMutex
	textures map[string]*render.Texture
}

// NewLoader creates a loader resolving relative paths against baseDir.
func NewLoader(baseDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		baseDir:  baseDir,
		logger:   logger,
		textures: make(map[string]*render.Texture),
	}
}

func (l *Loader) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || l.baseDir == "" {
		return path
	}
	return filepath.Join(l.baseDir, path)
}

// Texture loads the texture at path, or returns the cached copy.
func (l *Loader) Texture(path string) (*render.Texture, error) {
	path = l.resolve(path)

	l.mu.RLock()
	tex, ok := l.textures[path]
	l.mu.RUnlock()
	if ok {
		return tex, nil
	}

	tex, err := render.LoadTexture(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.textures[path] = tex
	l.mu.Unlock()
	l.logger.Debug("texture loaded", zap.String("path", path), zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return tex, nil
}

// Mesh loads or builds the mesh described by mc and applies its state. The
// returned image is the file's embedded base color texture, if any.
func (l *Loader) Mesh(mc config.MeshConfig) (*models.TriangleMesh, image.Image, error) {
	var (
		mesh *models.TriangleMesh
		img  image.Image
		err  error
	)

	switch {
	case mc.Builtin == "quad":
		mesh = Quad()
	case mc.Builtin == "cube":
		mesh = Cube()
	case mc.Builtin != "":
		return nil, nil, fmt.Errorf("unknown builtin mesh %q", mc.Builtin)
	default:
		mesh, img, err = l.loadMeshFile(mc)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := applyMeshState(mesh, mc); err != nil {
		return nil, nil, fmt.Errorf("mesh %s: %w", mesh.Name, err)
	}
	return mesh, img, nil
}

func (l *Loader) loadMeshFile(mc config.MeshConfig) (*models.TriangleMesh, image.Image, error) {
	path := l.resolve(mc.Path)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err := models.LoadOBJ(path, models.OBJOptions{FlipZ: mc.FlipZ})
		return mesh, nil, err
	case ".gltf", ".glb":
		mesh, img, err := models.LoadGLTFWithTexture(path)
		if err != nil {
			return nil, nil, err
		}
		if mc.FlipZ {
			mesh.MirrorZ()
			mesh.LeftHanded = false
		}
		return mesh, img, nil
	default:
		return nil, nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

func applyMeshState(mesh *models.TriangleMesh, mc config.MeshConfig) error {
	var err error
	if mesh.Sampler, err = models.ParseSamplerState(mc.Sampler); err != nil {
		return err
	}
	if mesh.Cull, err = models.ParseCullMode(mc.Cull); err != nil {
		return err
	}
	if mesh.Blend, err = models.ParseBlendState(mc.Blend); err != nil {
		return err
	}

	if mc.Name != "" {
		mesh.Name = mc.Name
	}
	mesh.MaterialID = mc.Material
	if mc.LeftHanded {
		mesh.LeftHanded = true
	}
	if mc.RotateSpeed != nil {
		mesh.RotateSpeed = *mc.RotateSpeed
	}
	if mc.Color != nil {
		mesh.SetColor(vec3(*mc.Color))
	}

	mesh.SetTransform(placement(mesh, mc))
	return nil
}

// placement returns Translate(position) * Scale(scale) * Fit, where Fit
// centers the mesh and scales its largest dimension to mc.Fit.
func placement(mesh *models.TriangleMesh, mc config.MeshConfig) math3d.Mat4 {
	m := math3d.Translate(vec3(mc.Position))
	if mc.Scale != nil {
		m = m.Mul(math3d.Scale(vec3(*mc.Scale)))
	}
	if mc.Fit > 0 {
		size := mesh.Size()
		if maxDim := math.Max(size.X, math.Max(size.Y, size.Z)); maxDim > 0 {
			s := mc.Fit / maxDim
			m = m.Mul(math3d.Scale(math3d.V3(s, s, s))).Mul(math3d.Translate(mesh.Center().Negate()))
		}
	}
	return m
}

// Material builds a render material from mc, loading its maps.
func (l *Loader) Material(mc config.MaterialConfig) (*render.Material, error) {
	wf, err := render.ParseWorkflow(mc.Workflow)
	if err != nil {
		return nil, err
	}

	m := render.NewMaterial(mc.ID, wf)
	m.Name = mc.Name
	if mc.DiffuseColor != nil {
		m.DiffuseColor = rgb(*mc.DiffuseColor)
	}
	if mc.DiffuseReflectance != nil {
		m.DiffuseReflectance = *mc.DiffuseReflectance
	}
	if mc.SpecularColor != nil {
		m.SpecGloss.SpecularColor = rgb(*mc.SpecularColor)
	}
	if mc.SpecularReflectance != nil {
		m.SpecGloss.SpecularReflectance = *mc.SpecularReflectance
	}
	if mc.Shininess != nil {
		m.SpecGloss.Shininess = *mc.Shininess
	}
	if mc.Roughness != nil {
		m.MetalRough.Roughness = *mc.Roughness
	}
	if mc.Metallic != nil {
		m.MetalRough.Metallic = *mc.Metallic
	}

	maps := []struct {
		path string
		set  func(*render.Texture)
	}{
		{mc.DiffuseMap, m.SetDiffuseMap},
		{mc.NormalMap, m.SetNormalMap},
		{mc.SpecularMap, m.SetSpecularMap},
		{mc.GlossMap, m.SetGlossMap},
		{mc.RoughnessMap, m.SetRoughnessMap},
		{mc.MetalMap, m.SetMetalMap},
	}
	for _, mp := range maps {
		if mp.path == "" {
			continue
		}
		tex, err := l.Texture(mp.path)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", mc.ID, err)
		}
		mp.set(tex)
	}
	return m, nil
}

// embeddedMaterial builds a metal/roughness material from a loader hint.
func embeddedMaterial(id int, hint models.Material, img image.Image) *render.Material {
	m := render.NewMaterial(id, render.WorkflowMetalRoughness)
	m.Name = hint.Name
	m.DiffuseColor = render.RGBf(hint.BaseColor[0], hint.BaseColor[1], hint.BaseColor[2])
	m.MetalRough.Metallic = hint.Metallic
	m.MetalRough.Roughness = hint.Roughness
	if img != nil {
		m.SetDiffuseMap(render.TextureFromImage(img))
	}
	return m
}

// Camera creates the configured camera for a width x height viewport.
func Camera(cc config.CameraConfig, width, height int) *render.Camera {
	cam := render.NewCamera(vec3(cc.Position), width, height, cc.FOV, cc.LeftHanded)
	cam.SetNearPlane(cc.Near)
	cam.SetFarPlane(cc.Far)
	cam.SetForward(vec3(cc.Forward))
	return cam
}

// Options converts the render switches.
func Options(rc config.RenderConfig) (render.Options, error) {
	mode, err := render.ParseImageMode(rc.ImageMode)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		UseDepthBufferAsColor:   rc.DepthAsColor,
		UseMaterial:             rc.UseMaterial,
		UseSimpleFrustumCulling: rc.SimpleFrustumCulling,
		ImageMode:               mode,
	}, nil
}

// BuildScene creates the scene described by cfg. Meshes that fail to load
// are fatal; a material id no mesh can find is not, the rasterizer skips
// those meshes.
func (l *Loader) BuildScene(cfg *config.Config) (*render.Scene, error) {
	opts, err := Options(cfg.Render)
	if err != nil {
		return nil, err
	}

	s := render.NewScene(Camera(cfg.Camera, cfg.Render.Width, cfg.Render.Height))
	s.Options = opts
	if !cfg.Render.Spin {
		s.SpinScale = 0
	}

	for i, lc := range cfg.Lights {
		light := render.NewDirectionalLight(vec3(lc.Direction), rgb(lc.Color), lc.Intensity)
		light.Active = !lc.Disabled
		if _, err := s.Lights.Add(light); err != nil {
			l.logger.Warn("light rejected", zap.Int("light", i), zap.Error(err))
		}
	}

	nextID := 0
	for _, mc := range cfg.Materials {
		m, err := l.Material(mc)
		if err != nil {
			return nil, err
		}
		s.Materials.Add(m)
		nextID = max(nextID, mc.ID+1)
	}

	for _, mc := range cfg.Meshes {
		mesh, img, err := l.Mesh(mc)
		if err != nil {
			return nil, err
		}
		if mc.EmbeddedMaterial && (img != nil || len(mesh.Materials) > 0) {
			var hint models.Material
			if len(mesh.Materials) > 0 {
				hint = mesh.Materials[0]
			} else {
				hint = models.Material{BaseColor: [4]float64{1, 1, 1, 1}, Roughness: 0.6}
			}
			// Fresh id, so meshes sharing a configured material keep it
			mesh.MaterialID = nextID
			nextID++
			s.Materials.Add(embeddedMaterial(mesh.MaterialID, hint, img))
		}
		if _, ok := s.Materials.Get(mesh.MaterialID); !ok && opts.UseMaterial {
			l.logger.Warn("mesh has no material", zap.String("mesh", mesh.Name), zap.Int("material", mesh.MaterialID))
		}

		s.AddMesh(mesh)
		l.logger.Info("mesh loaded",
			zap.String("mesh", mesh.Name),
			zap.Int("vertices", mesh.VertexCount()),
			zap.Int("triangles", mesh.TriangleCount()),
		)
	}

	return s, nil
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func rgb(a [3]float64) render.RGBColor {
	return render.RGBf(a[0], a[1], a[2])
}
