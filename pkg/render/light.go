package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// MaxLights is the number of lights a LightSet holds.
const MaxLights = 5

var (
	// ErrTooManyLights is returned when adding past MaxLights.
	ErrTooManyLights = errors.New("too many lights")
	// ErrNilLight is returned when adding a nil light.
	ErrNilLight = errors.New("nil light")
)

// LightKind tags the light variant.
type LightKind int

const (
	LightDirectional LightKind = iota
)

func (k LightKind) String() string {
	switch k {
	case LightDirectional:
		return "directional"
	}
	return fmt.Sprintf("LightKind(%d)", int(k))
}

// Light is a light source. Only directional lights exist today; Kind selects
// how Direction and Irradiance are evaluated.
type Light struct {
	Kind      LightKind
	Direction math3d.Vec3 // Direction the light travels, normalized
	Color     RGBColor
	Intensity float64
	Active    bool
}

// NewDirectionalLight creates an active directional light.
func NewDirectionalLight(direction math3d.Vec3, color RGBColor, intensity float64) *Light {
	return &Light{
		Kind:      LightDirectional,
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: intensity,
		Active:    true,
	}
}

// Irradiance returns the light arriving at a surface with normal n:
// color * intensity * clamp(dot(-n, direction), 0, 1).
func (l *Light) Irradiance(n math3d.Vec3) RGBColor {
	var cos float64
	switch l.Kind {
	case LightDirectional:
		cos = n.Negate().Dot(l.Direction)
	}
	cos = math.Max(0, math.Min(1, cos))
	return l.Color.Scale(l.Intensity * cos)
}

// Mirrored returns a copy of the light with z negated, for use with a
// camera of the opposite handedness.
func (l *Light) Mirrored() Light {
	m := *l
	m.Direction = m.Direction.MirrorZ()
	return m
}

// LightSet is a bounded collection of lights.
type LightSet struct {
	lights []*Light
}

// NewLightSet creates an empty set.
func NewLightSet() *LightSet {
	return &LightSet{lights: make([]*Light, 0, MaxLights)}
}

// Add appends l and returns its index.
func (s *LightSet) Add(l *Light) (int, error) {
	if l == nil {
		return -1, ErrNilLight
	}
	if len(s.lights) >= MaxLights {
		return -1, fmt.Errorf("add light %d: %w", len(s.lights), ErrTooManyLights)
	}
	s.lights = append(s.lights, l)
	return len(s.lights) - 1, nil
}

// Get returns light i, or nil when out of range.
func (s *LightSet) Get(i int) *Light {
	if i < 0 || i >= len(s.lights) {
		return nil
	}
	return s.lights[i]
}

// Toggle flips the active flag of light i.
func (s *LightSet) Toggle(i int) {
	if l := s.Get(i); l != nil {
		l.Active = !l.Active
	}
}

// Len returns the number of lights, active or not.
func (s *LightSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lights)
}

// Active returns the active lights.
func (s *LightSet) Active() []*Light {
	if s == nil {
		return nil
	}
	out := make([]*Light, 0, len(s.lights))
	for _, l := range s.lights {
		if l.Active {
			out = append(out, l)
		}
	}
	return out
}
