package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		add("render: viewport %dx%d must be positive", r.Width, r.Height)
	}
	if _, err := render.ParseBackend(r.Backend); err != nil {
		add("render: %w", err)
	}
	if _, err := render.ParseImageMode(r.ImageMode); err != nil {
		add("render: %w", err)
	}

	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		add("camera: fov %v must be in (0, 180)", cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		add("camera: need 0 < near < far, got near %v far %v", cam.Near, cam.Far)
	}
	if cam.Forward == [3]float64{} {
		add("camera: forward must not be zero")
	}

	if len(c.Lights) > render.MaxLights {
		add("lights: %d configured: %w", len(c.Lights), render.ErrTooManyLights)
	}
	for i, l := range c.Lights {
		if l.Direction == [3]float64{} {
			add("lights[%d]: direction must not be zero", i)
		}
	}

	ids := make(map[int]bool, len(c.Materials))
	for i, m := range c.Materials {
		if ids[m.ID] {
			add("materials[%d]: duplicate id %d", i, m.ID)
		}
		ids[m.ID] = true
		if _, err := render.ParseWorkflow(m.Workflow); err != nil {
			add("materials[%d]: %w", i, err)
		}
	}

	for i, m := range c.Meshes {
		if (m.Path == "") == (m.Builtin == "") {
			add("meshes[%d]: set exactly one of path and builtin", i)
		}
		if m.Path != "" {
			switch strings.ToLower(filepath.Ext(m.Path)) {
			case ".obj", ".gltf", ".glb":
			default:
				add("meshes[%d]: unsupported mesh file %s", i, m.Path)
			}
		}
		if m.Builtin != "" && m.Builtin != "quad" && m.Builtin != "cube" {
			add("meshes[%d]: unknown builtin %q", i, m.Builtin)
		}
		if _, err := models.ParseSamplerState(m.Sampler); err != nil {
			add("meshes[%d]: %w", i, err)
		}
		if _, err := models.ParseCullMode(m.Cull); err != nil {
			add("meshes[%d]: %w", i, err)
		}
		if _, err := models.ParseBlendState(m.Blend); err != nil {
			add("meshes[%d]: %w", i, err)
		}
	}

	if c.Output.Scale < 1 {
		add("output: scale %d must be at least 1", c.Output.Scale)
	}
	if c.Output.Frames < 1 {
		add("output: frames %d must be at least 1", c.Output.Frames)
	}

	return errors.Join(errs...)
}
