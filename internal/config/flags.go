package config

import "flag"

// Flags are the command-line options every softras command accepts.
type Flags struct {
	Config     *string
	Width      *int
	Height     *int
	Backend    *string
	FOV        *float64
	LeftHanded *bool
	NoSpin     *bool
	Debug      *bool
	LogFile    *string
}

// RegisterFlags defines the shared options on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:     fs.String("config", "", "Path to scene config (default: ./softras.yaml)"),
		Width:      fs.Int("width", 0, "Output width in pixels"),
		Height:     fs.Int("height", 0, "Output height in pixels"),
		Backend:    fs.String("backend", "", "Render backend (software, hardware)"),
		FOV:        fs.Float64("fov", 0, "Vertical field of view in degrees"),
		LeftHanded: fs.Bool("lh", false, "Use a left-handed camera"),
		NoSpin:     fs.Bool("nospin", false, "Start with mesh rotation stopped"),
		Debug:      fs.Bool("debug", false, "Enable debug logging"),
		LogFile:    fs.String("log", "", "Write logs to this file"),
	}
}

// Overrides collects the parsed flags. meshes are the positional mesh
// paths.
func (f *Flags) Overrides(meshes []string) Overrides {
	return Overrides{
		Width:      *f.Width,
		Height:     *f.Height,
		Backend:    *f.Backend,
		FOV:        *f.FOV,
		LeftHanded: *f.LeftHanded,
		NoSpin:     *f.NoSpin,
		Meshes:     meshes,
		Debug:      *f.Debug,
		LogFile:    *f.LogFile,
	}
}

// LoadWithOverrides loads path, applies o and validates the result.
func LoadWithOverrides(path string, o Overrides) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
