// Package render implements the software rasterization pipeline: camera,
// triangle transform and clipping, coverage testing, shading and output.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned when saving to an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Framebuffer is a 2D array of pixels, row 0 at the top.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize changes the dimensions, discarding the contents.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width, fb.Height = width, height
	if cap(fb.Pixels) >= width*height {
		fb.Pixels = fb.Pixels[:width*height]
		return
	}
	fb.Pixels = make([]color.RGBA, width*height)
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	// Copy-doubling, as for the depth buffer
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// AddPixel adds c to the pixel at (x, y), saturating each channel.
func (fb *Framebuffer) AddPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	p := &fb.Pixels[y*fb.Width+x]
	p.R = addSat(p.R, c.R)
	p.G = addSat(p.G, c.G)
	p.B = addSat(p.B, c.B)
	p.A = 255
}

func addSat(a, b uint8) uint8 {
	s := int(a) + int(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// Scaled returns the image enlarged n times with nearest-neighbour filtering.
func (fb *Framebuffer) Scaled(n int) *image.RGBA {
	src := fb.ToImage()
	if n <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width*n, fb.Height*n))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Save writes the framebuffer to path. The extension selects PNG, BMP or
// WebP (lossless).
func (fb *Framebuffer) Save(path string) error {
	return SaveImage(path, fb.ToImage())
}

// SaveImage encodes img to path, choosing the format from the extension.
func SaveImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".bmp", ".webp":
	default:
		return fmt.Errorf("save %s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	switch ext {
	case ".png":
		err = png.Encode(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
