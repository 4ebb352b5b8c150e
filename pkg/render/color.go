package render

import (
	"image/color"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorClear = color.RGBA{50, 50, 50, 255} // Frame clear color
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBColor is a linear color with channels nominally in 0-1. Shading may push
// channels above 1 until MaxToOne rescales them.
type RGBColor struct {
	R, G, B float64
}

// RGBf creates a new RGBColor.
func RGBf(r, g, b float64) RGBColor {
	return RGBColor{r, g, b}
}

// White returns (1, 1, 1).
func White() RGBColor {
	return RGBColor{1, 1, 1}
}

// FromVec3 converts a vertex color.
func FromVec3(v math3d.Vec3) RGBColor {
	return RGBColor{v.X, v.Y, v.Z}
}

// FromRGBA converts an 8-bit color to 0-1 channels.
func FromRGBA(c color.RGBA) RGBColor {
	return RGBColor{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// Vec3 returns the channels as a vector, for normal map decoding.
func (c RGBColor) Vec3() math3d.Vec3 {
	return math3d.V3(c.R, c.G, c.B)
}

// Add returns the channel sum.
func (c RGBColor) Add(o RGBColor) RGBColor {
	return RGBColor{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel product.
func (c RGBColor) Mul(o RGBColor) RGBColor {
	return RGBColor{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c RGBColor) Scale(s float64) RGBColor {
	return RGBColor{c.R * s, c.G * s, c.B * s}
}

// Lerp returns the linear interpolation between c and o by t.
func (c RGBColor) Lerp(o RGBColor, t float64) RGBColor {
	return RGBColor{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// Max returns the largest channel.
func (c RGBColor) Max() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// MaxToOne divides every channel by the largest one when it exceeds 1, so
// hue is kept instead of clipping channels independently.
func (c RGBColor) MaxToOne() RGBColor {
	m := c.Max()
	if m > 1 {
		return c.Scale(1 / m)
	}
	return c
}

// ToRGBA converts to 8-bit channels. Values are truncated and clamped.
func (c RGBColor) ToRGBA() color.RGBA {
	return color.RGBA{toByte(c.R), toByte(c.G), toByte(c.B), 255}
}

func toByte(v float64) uint8 {
	v *= 255
	switch {
	case v >= 255:
		return 255
	case v > 0:
		return uint8(v)
	}
	// Negative and NaN
	return 0
}

// Remap linearly maps v from [lo, hi] to [0, 1], clamped.
func Remap(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	r := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, r))
}
