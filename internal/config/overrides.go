package config

// DefaultFit is the size meshes named on the command line are scaled to.
const DefaultFit = 30

// Overrides are command-line values applied over a loaded config. Zero
// values leave the config untouched.
type Overrides struct {
	Width      int
	Height     int
	Backend    string
	FOV        float64
	LeftHanded bool
	NoSpin     bool
	Meshes     []string // Replace the configured meshes
	Output     string
	Scale      int
	Frames     int
	Debug      bool
	LogFile    string
}

// ApplyOverrides applies o to c.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Width > 0 {
		c.Render.Width = o.Width
	}
	if o.Height > 0 {
		c.Render.Height = o.Height
	}
	if o.Backend != "" {
		c.Render.Backend = o.Backend
	}
	if o.FOV > 0 {
		c.Camera.FOV = o.FOV
	}
	if o.LeftHanded {
		c.Camera.LeftHanded = true
	}
	if o.NoSpin {
		c.Render.Spin = false
	}
	if len(o.Meshes) > 0 {
		// Keep the first configured mesh's material and state
		tmpl := MeshConfig{}
		if len(c.Meshes) > 0 {
			tmpl = c.Meshes[0]
		}
		c.Meshes = c.Meshes[:0]
		for _, path := range o.Meshes {
			m := tmpl
			m.Name, m.Path, m.Builtin = "", path, ""
			m.Scale = nil
			m.Fit = DefaultFit
			m.EmbeddedMaterial = true
			c.Meshes = append(c.Meshes, m)
		}
	}
	if o.Output != "" {
		c.Output.Path = o.Output
	}
	if o.Scale > 0 {
		c.Output.Scale = o.Scale
	}
	if o.Frames > 0 {
		c.Output.Frames = o.Frames
	}
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		c.Logging.LogFile = o.LogFile
	}
}
