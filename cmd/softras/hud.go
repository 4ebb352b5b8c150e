package main

import (
	"fmt"
	"time"
)

// HUD draws an FPS counter and the viewer status on the bottom row.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
	shown     bool
}

// NewHUD creates a visible HUD.
func NewHUD() *HUD {
	return &HUD{Visible: true, fpsTime: time.Now()}
}

// UpdateFPS counts a frame and refreshes the rate once a second.
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render writes the status line straight to the terminal, after the frame.
func (h *HUD) Render(width, height int, status string) {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgGreen   = "\x1b[92m"
		fgWhite   = "\x1b[97m"
		clearLine = "\x1b[2K"
	)
	moveTo := fmt.Sprintf("\x1b[%d;1H", height)

	if !h.Visible {
		if h.shown {
			fmt.Print(moveTo + clearLine)
			h.shown = false
		}
		return
	}

	line := fmt.Sprintf("%3.0f FPS | %s", h.fps, status)
	if len(line) > width-2 && width > 2 {
		line = line[:width-2]
	}
	fmt.Print(moveTo + bgBlack + fgGreen + " " + fgWhite + line + " " + reset)
	h.shown = true
}
