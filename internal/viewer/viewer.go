// Package viewer holds the interactive state shared by the softras viewers:
// key bindings, the eased mesh spin and pointer driven camera movement.
package viewer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/softras/pkg/render"
)

// Action is what a key asks the host loop to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionScreenshot
)

// Viewer drives a scene from keyboard and pointer input.
type Viewer struct {
	Scene *render.Scene

	fb       *render.Framebuffer
	renderer render.Renderer
	backend  render.Backend
	spin     *Spin
	logger   *zap.Logger

	buttons render.MouseButtons
	lastX   float64
	lastY   float64
	tracked bool
	dx, dy  float64
}

// New creates a viewer drawing scene into fb with the software backend.
func New(scene *render.Scene, fb *render.Framebuffer, fps int, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Viewer{
		Scene:   scene,
		fb:      fb,
		backend: render.BackendSoftware,
		spin:    NewSpin(fps, scene.SpinScale != 0),
		logger:  logger,
	}
	v.renderer, _ = render.NewRenderer(render.BackendSoftware, fb, logger)
	scene.Camera.SetViewport(fb.Width, fb.Height)
	return v
}

// Framebuffer returns the framebuffer being drawn.
func (v *Viewer) Framebuffer() *render.Framebuffer {
	return v.fb
}

// Backend returns the active backend.
func (v *Viewer) Backend() render.Backend {
	return v.backend
}

// Spin returns the spin state.
func (v *Viewer) Spin() *Spin {
	return v.spin
}

// Resize changes the output size.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.fb.Resize(width, height)
	v.renderer, _ = render.NewRenderer(v.backend, v.fb, v.logger)
	v.Scene.Camera.SetViewport(width, height)
}

// HandleKey applies the binding for key, named as in "space" or "esc".
func (v *Viewer) HandleKey(key string) Action {
	s := v.Scene
	switch strings.ToLower(key) {
	case "f":
		v.forMeshes(func(i int) { s.Meshes[i].Sampler = s.Meshes[0].Sampler.Next() })
		v.logState("sampler state")
	case "c":
		v.forMeshes(func(i int) { s.Meshes[i].Cull = s.Meshes[0].Cull.Next() })
		v.logState("cull mode")
	case "t":
		v.forMeshes(func(i int) { s.Meshes[i].Blend = 1 - s.Meshes[0].Blend })
		v.logState("blend state")
	case "space":
		v.spin.Toggle()
		v.logState("spin")
	case "z":
		s.Options.UseDepthBufferAsColor = !s.Options.UseDepthBufferAsColor
		v.logState("depth as color")
	case "m":
		s.Options.UseMaterial = !s.Options.UseMaterial
		v.logState("material")
	case "v":
		s.Options.UseSimpleFrustumCulling = !s.Options.UseSimpleFrustumCulling
		v.logState("frustum culling")
	case "i":
		s.Options.ImageMode = s.Options.ImageMode.Next()
		v.logState("image mode")
	case "h":
		s.Camera.SetHandedness(!s.Camera.LeftHanded())
		v.logState("handedness")
	case "r":
		v.toggleBackend()
	case "p":
		return ActionScreenshot
	case "esc", "escape", "ctrl+c":
		return ActionQuit
	}
	return ActionNone
}

// forMeshes sets every mesh from the first one's next state, keeping them
// in step.
func (v *Viewer) forMeshes(set func(i int)) {
	if len(v.Scene.Meshes) == 0 {
		return
	}
	// Last to first so mesh 0 still holds the old state while the others copy
	for i := len(v.Scene.Meshes) - 1; i >= 0; i-- {
		set(i)
	}
}

// toggleBackend switches to the other backend. The backends use opposite
// conventions, so the camera handedness follows the switch.
func (v *Viewer) toggleBackend() {
	next := v.backend.Next()
	r, err := render.NewRenderer(next, v.fb, v.logger)
	if err != nil {
		v.logger.Warn("backend switch failed", zap.Stringer("backend", next), zap.Error(err))
		return
	}
	v.renderer, v.backend = r, next
	v.Scene.Camera.SetHandedness(!v.Scene.Camera.LeftHanded())
	v.logState("backend")
}

func (v *Viewer) logState(what string) {
	v.logger.Info(what, zap.String("state", v.Status()))
}

// PointerPressed records a button going down at (x, y).
func (v *Viewer) PointerPressed(b render.MouseButtons, x, y float64) {
	v.buttons |= b
	v.lastX, v.lastY, v.tracked = x, y, true
}

// PointerReleased records a button going up.
func (v *Viewer) PointerReleased(b render.MouseButtons) {
	v.buttons &^= b
}

// PointerMoved accumulates movement while a button is held. It is applied
// to the camera on the next Update.
func (v *Viewer) PointerMoved(x, y float64) {
	if v.tracked && v.buttons != 0 {
		v.dx += x - v.lastX
		v.dy += y - v.lastY
	}
	v.lastX, v.lastY, v.tracked = x, y, true
}

// Update advances one frame of dt seconds: camera, spin and meshes.
func (v *Viewer) Update(dt float64) {
	v.Scene.Camera.Update(v.dx, v.dy, v.buttons, dt)
	v.dx, v.dy = 0, 0

	v.Scene.SpinScale = v.spin.Step()
	v.Scene.Update(dt)
}

// Render draws the scene into the framebuffer.
func (v *Viewer) Render() {
	v.renderer.Render(v.Scene)
}

// Status returns a one-line summary of the toggles.
func (v *Viewer) Status() string {
	s := v.Scene
	var b strings.Builder
	fmt.Fprintf(&b, "%s", v.backend)
	if len(s.Meshes) > 0 {
		m := s.Meshes[0]
		fmt.Fprintf(&b, " | sampler %s | cull %s | blend %s", m.Sampler, m.Cull, m.Blend)
	}
	fmt.Fprintf(&b, " | image %s", s.Options.ImageMode)
	if s.Options.UseDepthBufferAsColor {
		b.WriteString(" | depth")
	}
	if !s.Options.UseMaterial {
		b.WriteString(" | vertex color")
	}
	if s.Options.UseSimpleFrustumCulling {
		b.WriteString(" | simple culling")
	} else {
		b.WriteString(" | clipping")
	}
	if s.Camera.LeftHanded() {
		b.WriteString(" | LH")
	} else {
		b.WriteString(" | RH")
	}
	if v.spin.On() {
		b.WriteString(" | spinning")
	}
	return b.String()
}

// ScreenshotName returns a timestamped file name with the given extension.
func ScreenshotName(t time.Time, ext string) string {
	return "softras-" + t.Format("20060102-150405") + "." + strings.TrimPrefix(ext, ".")
}
