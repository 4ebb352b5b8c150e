package models

import (
	"fmt"
	"strings"
)

// Topology is the primitive layout of a mesh's index buffer.
type Topology int

const (
	TopologyTriangleList  Topology = iota // Every 3 indices form a triangle
	TopologyTriangleStrip                 // Every index after the first 2 forms a triangle
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangleList:
		return "list"
	case TopologyTriangleStrip:
		return "strip"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// CullMode selects which winding order is discarded during coverage tests.
type CullMode int

const (
	CullNone  CullMode = iota // Rasterize whichever side faces the camera
	CullFront                 // Discard counter-clockwise (front) faces
	CullBack                  // Discard clockwise (back) faces
)

func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "none"
	case CullFront:
		return "front"
	case CullBack:
		return "back"
	}
	return fmt.Sprintf("CullMode(%d)", int(c))
}

// Next returns the following cull mode, wrapping around.
func (c CullMode) Next() CullMode {
	return (c + 1) % 3
}

// SamplerState selects the texture filter used for a mesh.
type SamplerState int

const (
	SamplerPoint       SamplerState = iota // Nearest texel
	SamplerLinear                          // Bilinear
	SamplerAnisotropic                     // Bilinear in software
)

func (s SamplerState) String() string {
	switch s {
	case SamplerPoint:
		return "point"
	case SamplerLinear:
		return "linear"
	case SamplerAnisotropic:
		return "anisotropic"
	}
	return fmt.Sprintf("SamplerState(%d)", int(s))
}

// Next returns the following sampler state, wrapping around.
func (s SamplerState) Next() SamplerState {
	return (s + 1) % 3
}

// BlendState selects how a shaded pixel is written to the framebuffer.
type BlendState int

const (
	BlendNone BlendState = iota // Replace the framebuffer color
	BlendAdd                    // Add to the framebuffer color
)

func (b BlendState) String() string {
	switch b {
	case BlendNone:
		return "none"
	case BlendAdd:
		return "add"
	}
	return fmt.Sprintf("BlendState(%d)", int(b))
}

// ParseTopology parses "list" or "strip". Empty means list.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return TopologyTriangleList, nil
	case "strip":
		return TopologyTriangleStrip, nil
	}
	return 0, fmt.Errorf("unknown topology %q", s)
}

// ParseCullMode parses "none", "front" or "back". Empty means back.
func ParseCullMode(s string) (CullMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return CullNone, nil
	case "front":
		return CullFront, nil
	case "", "back":
		return CullBack, nil
	}
	return 0, fmt.Errorf("unknown cull mode %q", s)
}

// ParseSamplerState parses "point", "linear" or "anisotropic". Empty means point.
func ParseSamplerState(s string) (SamplerState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "point":
		return SamplerPoint, nil
	case "linear":
		return SamplerLinear, nil
	case "anisotropic":
		return SamplerAnisotropic, nil
	}
	return 0, fmt.Errorf("unknown sampler state %q", s)
}

// ParseBlendState parses "none" or "add". Empty means none.
func ParseBlendState(s string) (BlendState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BlendNone, nil
	case "add":
		return BlendAdd, nil
	}
	return 0, fmt.Errorf("unknown blend state %q", s)
}
