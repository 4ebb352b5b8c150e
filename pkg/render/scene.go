package render

import (
	"github.com/taigrr/softras/pkg/models"
)

// Scene is everything a frame is drawn from.
type Scene struct {
	Meshes    []*models.TriangleMesh
	Materials *MaterialSet
	Lights    *LightSet
	Camera    *Camera
	Options   Options

	// SpinScale multiplies the mesh rotation speeds. 0 stops them.
	SpinScale float64
}

// NewScene creates an empty scene viewed through cam.
func NewScene(cam *Camera) *Scene {
	return &Scene{
		Materials: NewMaterialSet(),
		Lights:    NewLightSet(),
		Camera:    cam,
		Options:   DefaultOptions(),
		SpinScale: 1,
	}
}

// AddMesh appends a mesh to the scene.
func (s *Scene) AddMesh(m *models.TriangleMesh) {
	s.Meshes = append(s.Meshes, m)
}

// Update advances the mesh animations by dt seconds.
func (s *Scene) Update(dt float64) {
	if s.SpinScale == 0 {
		return
	}
	for _, m := range s.Meshes {
		m.Update(dt * s.SpinScale)
	}
}
