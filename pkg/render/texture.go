package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "github.com/ftrvxmtrx/tga" // Register TGA decoder
	_ "golang.org/x/image/bmp"   // Register BMP decoder
	_ "golang.org/x/image/webp"  // Register WebP decoder

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Texture holds a 2D image for texture mapping. Row 0 is the top of the
// image and maps to v = 0.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG, BMP, TGA or WebP file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.SetPixel(x, y, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}

	return tex
}

// NewSolidTexture creates a 1x1 texture of one color.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the color at uv with channels in 0-1. Coordinates outside
// [0,1] wrap around. Point sampling picks the nearest texel; linear and
// anisotropic states filter bilinearly.
func (t *Texture) Sample(uv math3d.Vec2, sampler models.SamplerState) RGBColor {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return RGBColor{}
	}

	u, v := wrapCoord(uv.X), wrapCoord(uv.Y)

	switch sampler {
	case models.SamplerLinear, models.SamplerAnisotropic:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

// wrapCoord reduces c into [0,1] by whole steps of 1. Exact integers above 1
// land on 1, not 0.
func wrapCoord(c float64) float64 {
	switch {
	case c > 1:
		return c - math.Ceil(c) + 1
	case c < 0:
		return c - math.Floor(c)
	}
	return c
}

// sampleNearest returns the nearest pixel.
func (t *Texture) sampleNearest(u, v float64) RGBColor {
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))

	// u or v of exactly 1 lands one past the edge
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}

	return FromRGBA(t.GetPixel(x, y))
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) RGBColor {
	// Convert to pixel coordinates
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))

	// Fractional parts
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapIndex(x0+1, t.Width)
	y1 := wrapIndex(y0+1, t.Height)
	x0 = wrapIndex(x0, t.Width)
	y0 = wrapIndex(y0, t.Height)

	c00 := FromRGBA(t.GetPixel(x0, y0))
	c10 := FromRGBA(t.GetPixel(x1, y0))
	c01 := FromRGBA(t.GetPixel(x0, y1))
	c11 := FromRGBA(t.GetPixel(x1, y1))

	top := c00.Lerp(c10, tx)
	bot := c01.Lerp(c11, tx)
	return top.Lerp(bot, ty)
}

// wrapIndex wraps a pixel coordinate into [0, size).
func wrapIndex(x, size int) int {
	x %= size
	if x < 0 {
		x += size
	}
	return x
}
