// softras-window - desktop window viewer for the software rasterizer
// Presents the same scene and controls as the terminal viewer at full pixel
// resolution.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/taigrr/softras/internal/assets"
	"github.com/taigrr/softras/internal/config"
	"github.com/taigrr/softras/internal/logger"
	"github.com/taigrr/softras/internal/viewer"
	"github.com/taigrr/softras/pkg/render"
)

var (
	flags     = config.RegisterFlags(flag.CommandLine)
	zoom      = flag.Int("zoom", 1, "Window size multiplier")
	targetFPS = flag.Int("fps", 0, "Target FPS (default from config)")
)

// keyBindings maps window keys to viewer key names.
var keyBindings = map[ebiten.Key]string{
	ebiten.KeyF:      "f",
	ebiten.KeyC:      "c",
	ebiten.KeyT:      "t",
	ebiten.KeySpace:  "space",
	ebiten.KeyZ:      "z",
	ebiten.KeyM:      "m",
	ebiten.KeyV:      "v",
	ebiten.KeyI:      "i",
	ebiten.KeyH:      "h",
	ebiten.KeyR:      "r",
	ebiten.KeyP:      "p",
	ebiten.KeyEscape: "escape",
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softras-window - windowed software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softras-window [options] [model.obj|model.glb ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithOverrides(*flags.Config, flags.Overrides(flag.Args()))
	if err != nil {
		return err
	}
	fps := cfg.Render.FPS
	if *targetFPS > 0 {
		fps = *targetFPS
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	baseDir := ""
	if *flags.Config != "" {
		baseDir = filepath.Dir(*flags.Config)
	}
	scene, err := assets.NewLoader(baseDir, logger.Named("assets")).BuildScene(cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	fb := render.NewFramebuffer(cfg.Render.Width, cfg.Render.Height)
	g := &game{
		v:    viewer.New(scene, fb, fps, logger.Named("viewer")),
		last: time.Now(),
	}

	ebiten.SetWindowTitle("softras")
	ebiten.SetWindowSize(fb.Width*max(*zoom, 1), fb.Height*max(*zoom, 1))
	ebiten.SetTPS(fps)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

type game struct {
	v       *viewer.Viewer
	last    time.Time
	fbImg   *ebiten.Image
	scratch []byte
	status  string
}

func (g *game) Update() error {
	for key, name := range keyBindings {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		switch g.v.HandleKey(name) {
		case viewer.ActionQuit:
			return ebiten.Termination
		case viewer.ActionScreenshot:
			screenshot(g.v.Framebuffer())
		}
	}

	x, y := ebiten.CursorPosition()
	g.pointer(ebiten.MouseButtonLeft, render.MouseLeft, x, y)
	g.pointer(ebiten.MouseButtonRight, render.MouseRight, x, y)
	g.v.PointerMoved(float64(x), float64(y))

	if _, wy := ebiten.Wheel(); wy != 0 {
		cam := g.v.Scene.Camera
		cam.SetPosition(cam.Position().Sub(cam.Forward().Scale(wy)))
	}

	now := time.Now()
	dt := min(now.Sub(g.last).Seconds(), 0.1)
	g.last = now

	g.v.Update(dt)
	g.v.Render()

	if s := g.v.Status(); s != g.status {
		g.status = s
		ebiten.SetWindowTitle("softras | " + s)
	}
	return nil
}

func (g *game) pointer(eb ebiten.MouseButton, b render.MouseButtons, x, y int) {
	switch {
	case inpututil.IsMouseButtonJustPressed(eb):
		g.v.PointerPressed(b, float64(x), float64(y))
	case inpututil.IsMouseButtonJustReleased(eb):
		g.v.PointerReleased(b)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.v.Framebuffer()
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != fb.Width || g.fbImg.Bounds().Dy() != fb.Height {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.Width, fb.Height)
		g.scratch = make([]byte, fb.Width*fb.Height*4)
	}

	for i, p := range fb.Pixels {
		j := i * 4
		g.scratch[j+0] = p.R
		g.scratch[j+1] = p.G
		g.scratch[j+2] = p.B
		g.scratch[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.scratch)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	fb := g.v.Framebuffer()
	return fb.Width, fb.Height
}

func screenshot(fb *render.Framebuffer) {
	path := viewer.ScreenshotName(time.Now(), "png")
	if err := fb.Save(path); err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}
