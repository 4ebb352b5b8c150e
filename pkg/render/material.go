package render

import (
	"fmt"
	"strings"
)

// Workflow selects a material's reflectance model.
type Workflow int

const (
	WorkflowSpecularGlossiness Workflow = iota // Phong specular
	WorkflowMetalRoughness                     // Cook-Torrance microfacet
)

func (w Workflow) String() string {
	switch w {
	case WorkflowSpecularGlossiness:
		return "specgloss"
	case WorkflowMetalRoughness:
		return "metalrough"
	}
	return fmt.Sprintf("Workflow(%d)", int(w))
}

// ParseWorkflow parses "specgloss" or "metalrough". Empty means specgloss.
func ParseWorkflow(s string) (Workflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "specgloss", "specular", "phong":
		return WorkflowSpecularGlossiness, nil
	case "metalrough", "metallic", "pbr":
		return WorkflowMetalRoughness, nil
	}
	return 0, fmt.Errorf("unknown workflow %q", s)
}

// SpecularGlossiness holds the parameters of the Phong workflow.
type SpecularGlossiness struct {
	SpecularReflectance float64
	SpecularColor       RGBColor
	Shininess           float64

	UseSpecularMap bool
	SpecularMap    *Texture
	UseGlossMap    bool
	GlossMap       *Texture // Red channel scales Shininess
}

// MetalRoughness holds the parameters of the Cook-Torrance workflow.
type MetalRoughness struct {
	Roughness float64
	Metallic  float64

	UseRoughnessMap bool
	RoughnessMap    *Texture // Red channel
	UseMetalMap     bool
	MetalMap        *Texture // Red channel, thresholded at 0.5
}

// Material describes how a surface reflects light. Only the parameter set
// matching Workflow is used.
type Material struct {
	ID       int
	Name     string
	Workflow Workflow

	DiffuseReflectance float64
	DiffuseColor       RGBColor
	UseDiffuseMap      bool
	DiffuseMap         *Texture
	UseNormalMap       bool
	NormalMap          *Texture

	SpecGloss  SpecularGlossiness
	MetalRough MetalRoughness
}

// NewMaterial creates a material with the default constants: white diffuse
// at full reflectance and a white specular with shininess 15.
func NewMaterial(id int, workflow Workflow) *Material {
	return &Material{
		ID:                 id,
		Workflow:           workflow,
		DiffuseReflectance: 1,
		DiffuseColor:       White(),
		SpecGloss: SpecularGlossiness{
			SpecularReflectance: 1,
			SpecularColor:       White(),
			Shininess:           15,
		},
		MetalRough: MetalRoughness{
			Roughness: 0.6,
			Metallic:  0,
		},
	}
}

// SetDiffuseMap sets the diffuse texture. A nil texture falls back to the
// constant color.
func (m *Material) SetDiffuseMap(t *Texture) {
	m.DiffuseMap = t
	m.UseDiffuseMap = t != nil
}

// SetNormalMap sets the tangent-space normal map.
func (m *Material) SetNormalMap(t *Texture) {
	m.NormalMap = t
	m.UseNormalMap = t != nil
}

// SetSpecularMap sets the specular color map.
func (m *Material) SetSpecularMap(t *Texture) {
	m.SpecGloss.SpecularMap = t
	m.SpecGloss.UseSpecularMap = t != nil
}

// SetGlossMap sets the glossiness map.
func (m *Material) SetGlossMap(t *Texture) {
	m.SpecGloss.GlossMap = t
	m.SpecGloss.UseGlossMap = t != nil
}

// SetRoughnessMap sets the roughness map.
func (m *Material) SetRoughnessMap(t *Texture) {
	m.MetalRough.RoughnessMap = t
	m.MetalRough.UseRoughnessMap = t != nil
}

// SetMetalMap sets the metalness map.
func (m *Material) SetMetalMap(t *Texture) {
	m.MetalRough.MetalMap = t
	m.MetalRough.UseMetalMap = t != nil
}

// MaterialSet looks materials up by id.
type MaterialSet struct {
	byID map[int]*Material
}

// NewMaterialSet creates an empty set.
func NewMaterialSet() *MaterialSet {
	return &MaterialSet{byID: make(map[int]*Material)}
}

// Add stores m under its id, replacing any previous material with that id.
func (s *MaterialSet) Add(m *Material) {
	s.byID[m.ID] = m
}

// Get returns the material with the given id.
func (s *MaterialSet) Get(id int) (*Material, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.byID[id]
	return m, ok
}

// Len returns the number of materials.
func (s *MaterialSet) Len() int {
	return len(s.byID)
}
