// softras - terminal viewer for the software rasterizer
// Draws a scene with half-block characters and drives the camera with the
// mouse.
//
// Controls:
//
//	Left drag        - Move along the view direction (vertical) and yaw (horizontal)
//	Right drag       - Pitch and yaw
//	Left+Right drag  - Move up/down
//	Wheel            - Move along the view direction
//	F                - Cycle sampler state (point, linear, anisotropic)
//	C                - Cycle cull mode (back, none, front)
//	T                - Toggle additive blending
//	Space            - Toggle mesh rotation
//	Z                - Toggle depth buffer as color
//	M                - Toggle material shading / vertex color
//	V                - Toggle simple frustum culling / exact clipping
//	I                - Cycle image mode (all, irradiance, diffuse)
//	H                - Toggle left/right-handed camera
//	R                - Switch render backend
//	P                - Save a screenshot
//	?                - Toggle status line
//	Esc              - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/softras/internal/assets"
	"github.com/taigrr/softras/internal/config"
	"github.com/taigrr/softras/internal/logger"
	"github.com/taigrr/softras/internal/viewer"
	"github.com/taigrr/softras/pkg/render"
)

// Terminal cells are coarse, so pointer deltas are scaled up
const (
	cellSensitivity = 4.0
	wheelStep       = 2.0
)

var (
	flags     = config.RegisterFlags(flag.CommandLine)
	targetFPS = flag.Int("fps", 0, "Target FPS (default from config)")
)

// keyBindings are the keys forwarded to the viewer.
var keyBindings = []string{"f", "c", "t", "space", "z", "m", "v", "i", "h", "r", "p", "escape", "ctrl+c"}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softras - terminal software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softras [options] [model.obj|model.glb ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Left drag   - Move forward/back and turn\n")
		fmt.Fprintf(os.Stderr, "  Right drag  - Look around\n")
		fmt.Fprintf(os.Stderr, "  Both drag   - Move up/down\n")
		fmt.Fprintf(os.Stderr, "  F/C/T       - Sampler, cull mode, blending\n")
		fmt.Fprintf(os.Stderr, "  Space       - Toggle rotation\n")
		fmt.Fprintf(os.Stderr, "  Z/M/V/I     - Depth view, material, clipping, image mode\n")
		fmt.Fprintf(os.Stderr, "  H/R         - Handedness, backend\n")
		fmt.Fprintf(os.Stderr, "  P           - Screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle status line\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	o := flags.Overrides(flag.Args())
	if o.LogFile == "" {
		o.LogFile = "softras.log"
	}
	cfg, err := config.LoadWithOverrides(*flags.Config, o)
	if err != nil {
		return err
	}
	fps := cfg.Render.FPS
	if *targetFPS > 0 {
		fps = *targetFPS
	}

	// The terminal belongs to the renderer: log to the file only
	if err := logger.InitWithFileConfig(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), false); err != nil {
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

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	v := viewer.New(scene, render.NewFramebuffer(fbWidth, fbHeight), fps, logger.Named("viewer"))
	hud := NewHUD()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Events are handed to the frame loop so the scene is only touched there
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					termRenderer = render.NewTerminalRenderer(term, width, height)
					v.Resize(termRenderer.FramebufferSize())

				case uv.KeyPressEvent:
					if ev.MatchString("?", "shift+/") {
						hud.Visible = !hud.Visible
						continue
					}
					for _, k := range keyBindings {
						if !ev.MatchString(k) {
							continue
						}
						switch v.HandleKey(k) {
						case viewer.ActionQuit:
							cancel()
						case viewer.ActionScreenshot:
							screenshot(v.Framebuffer())
						}
						break
					}

				case uv.MouseClickEvent:
					v.PointerPressed(mouseButton(ev.Button), cellX(ev.X), cellY(ev.Y))

				case uv.MouseReleaseEvent:
					b := mouseButton(ev.Button)
					if b == 0 {
						// Some terminals do not report which button came up
						b = render.MouseLeft | render.MouseRight
					}
					v.PointerReleased(b)

				case uv.MouseMotionEvent:
					v.PointerMoved(cellX(ev.X), cellY(ev.Y))

				case uv.MouseWheelEvent:
					cam := v.Scene.Camera
					switch ev.Button {
					case uv.MouseWheelUp:
						cam.SetPosition(cam.Position().Sub(cam.Forward().Scale(wheelStep)))
					case uv.MouseWheelDown:
						cam.SetPosition(cam.Position().Add(cam.Forward().Scale(wheelStep)))
					}
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		v.Update(dt)
		v.Render()

		termRenderer.Render(v.Framebuffer())
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, v.Status())

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func mouseButton(b uv.MouseButton) render.MouseButtons {
	switch b {
	case uv.MouseLeft:
		return render.MouseLeft
	case uv.MouseRight:
		return render.MouseRight
	}
	return 0
}

func cellX(x int) float64 { return float64(x) * cellSensitivity }

// Each cell is two pixels tall
func cellY(y int) float64 { return float64(y) * 2 * cellSensitivity }

func screenshot(fb *render.Framebuffer) {
	path := viewer.ScreenshotName(time.Now(), "png")
	if err := fb.Save(path); err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}
