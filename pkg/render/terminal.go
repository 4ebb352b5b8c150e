package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalRenderer presents a framebuffer on a terminal, two pixel rows per
// cell row.
type TerminalRenderer struct {
	term   *uv.Terminal
	width  int // Terminal columns
	height int // Terminal rows
}

// NewTerminalRenderer creates a renderer for a terminal of width x height
// cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel size matching the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render draws fb over the whole terminal.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.term, uv.Rect(0, 0, t.width, t.height))
}

// Flush writes pending cell changes to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.term.Display()
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// ▀ with fg = top pixel, bg = bottom pixel
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
