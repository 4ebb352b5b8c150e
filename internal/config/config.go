// Package config holds the scene and render settings shared by the softras
// commands.
package config

// Config holds everything needed to build and draw a scene.
type Config struct {
	Render    RenderConfig     `yaml:"render"`
	Camera    CameraConfig     `yaml:"camera"`
	Lights    []LightConfig    `yaml:"lights"`
	Materials []MaterialConfig `yaml:"materials"`
	Meshes    []MeshConfig     `yaml:"meshes"`
	Output    OutputConfig     `yaml:"output"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// RenderConfig holds viewport and pipeline switches.
type RenderConfig struct {
	Width                int    `yaml:"width"`
	Height               int    `yaml:"height"`
	Backend              string `yaml:"backend"` // software or hardware
	DepthAsColor         bool   `yaml:"depth_as_color"`
	UseMaterial          bool   `yaml:"use_material"`
	SimpleFrustumCulling bool   `yaml:"simple_frustum_culling"`
	ImageMode            string `yaml:"image_mode"` // all, irradiance or diffuse
	Spin                 bool   `yaml:"spin"`
	FPS                  int    `yaml:"fps"`
}

// CameraConfig places the camera. Vectors are right-handed regardless of
// LeftHanded.
type CameraConfig struct {
	Position   [3]float64 `yaml:"position"`
	Forward    [3]float64 `yaml:"forward"`
	FOV        float64    `yaml:"fov"` // Vertical, degrees
	Near       float64    `yaml:"near"`
	Far        float64    `yaml:"far"`
	LeftHanded bool       `yaml:"left_handed"`
}

// LightConfig describes one directional light.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction"`
	Color     [3]float64 `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Disabled  bool       `yaml:"disabled"`
}

// MaterialConfig describes a material. Map fields are texture paths; empty
// means the constant is used.
type MaterialConfig struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Workflow string `yaml:"workflow"` // specgloss or metalrough

	DiffuseColor       *[3]float64 `yaml:"diffuse_color,omitempty"`
	DiffuseReflectance *float64    `yaml:"diffuse_reflectance,omitempty"`
	DiffuseMap         string      `yaml:"diffuse_map,omitempty"`
	NormalMap          string      `yaml:"normal_map,omitempty"`

	SpecularColor       *[3]float64 `yaml:"specular_color,omitempty"`
	SpecularReflectance *float64    `yaml:"specular_reflectance,omitempty"`
	Shininess           *float64    `yaml:"shininess,omitempty"`
	SpecularMap         string      `yaml:"specular_map,omitempty"`
	GlossMap            string      `yaml:"gloss_map,omitempty"`

	Roughness    *float64 `yaml:"roughness,omitempty"`
	Metallic     *float64 `yaml:"metallic,omitempty"`
	RoughnessMap string   `yaml:"roughness_map,omitempty"`
	MetalMap     string   `yaml:"metal_map,omitempty"`
}

// MeshConfig describes one mesh instance. Exactly one of Path and Builtin is
// set.
type MeshConfig struct {
	Name     string `yaml:"name,omitempty"`
	Path     string `yaml:"path,omitempty"`    // .obj, .gltf or .glb
	Builtin  string `yaml:"builtin,omitempty"` // quad or cube
	Material int    `yaml:"material"`

	Position    [3]float64  `yaml:"position"`
	Scale       *[3]float64 `yaml:"scale,omitempty"`
	Fit         float64     `yaml:"fit,omitempty"` // Center and scale to this size, before Scale
	RotateSpeed *float64    `yaml:"rotate_speed,omitempty"`
	Color       *[3]float64 `yaml:"color,omitempty"`

	Sampler    string `yaml:"sampler,omitempty"`
	Cull       string `yaml:"cull,omitempty"`
	Blend      string `yaml:"blend,omitempty"`
	LeftHanded bool   `yaml:"left_handed,omitempty"` // Data is stored left-handed
	FlipZ      bool   `yaml:"flip_z,omitempty"`      // Convert to right-handed on load

	// EmbeddedMaterial builds the mesh's material from the file's own
	// base color, metal/roughness factors and texture.
	EmbeddedMaterial bool `yaml:"embedded_material,omitempty"`
}

// OutputConfig controls headless rendering.
type OutputConfig struct {
	Path      string  `yaml:"path"` // .png, .bmp or .webp
	Scale     int     `yaml:"scale"`
	Frames    int     `yaml:"frames"`
	FrameStep float64 `yaml:"frame_step"` // Seconds between frames
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the reference scene: a spinning cube in front of a
// right-handed camera, lit from above.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:                640,
			Height:               480,
			Backend:              "software",
			UseMaterial:          true,
			SimpleFrustumCulling: true,
			ImageMode:            "all",
			Spin:                 true,
			FPS:                  30,
		},
		Camera: CameraConfig{
			Position: [3]float64{0, 0, 65},
			Forward:  [3]float64{0, 0, 1},
			FOV:      45,
			Near:     0.1,
			Far:      100,
		},
		Lights: []LightConfig{
			{
				Direction: [3]float64{0.577, -0.577, 0.577},
				Color:     [3]float64{1, 1, 1},
				Intensity: 7,
			},
		},
		Materials: []MaterialConfig{
			{ID: 0, Name: "default", Workflow: "specgloss"},
		},
		Meshes: []MeshConfig{
			{
				Name:    "cube",
				Builtin: "cube",
				Scale:   &[3]float64{10, 10, 10},
			},
		},
		Output: OutputConfig{
			Path:      "frame.png",
			Scale:     1,
			Frames:    1,
			FrameStep: 1.0 / 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
