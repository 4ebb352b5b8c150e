package render

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrBackendUnavailable is returned for a backend this build cannot drive.
var ErrBackendUnavailable = errors.New("render backend unavailable")

// Backend selects the implementation behind a Renderer.
type Backend int

const (
	BackendSoftware Backend = iota
	BackendHardware
)

func (b Backend) String() string {
	switch b {
	case BackendSoftware:
		return "software"
	case BackendHardware:
		return "hardware"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Next returns the other backend.
func (b Backend) Next() Backend {
	if b == BackendSoftware {
		return BackendHardware
	}
	return BackendSoftware
}

// ParseBackend parses "software" or "hardware". Empty means software.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "software":
		return BackendSoftware, nil
	case "hardware":
		return BackendHardware, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// Renderer draws a scene into a framebuffer. Every backend accepts the same
// scene data and must produce an equivalent image.
type Renderer interface {
	Render(s *Scene)
	Framebuffer() *Framebuffer
	Backend() Backend
}

// NewRenderer returns the renderer for backend, drawing into fb.
func NewRenderer(backend Backend, fb *Framebuffer, logger *zap.Logger) (Renderer, error) {
	if backend != BackendSoftware {
		return nil, fmt.Errorf("%s: %w", backend, ErrBackendUnavailable)
	}
	return NewRasterizer(fb, logger), nil
}

// Backend reports BackendSoftware.
func (r *Rasterizer) Backend() Backend {
	return BackendSoftware
}
