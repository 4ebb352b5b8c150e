package render

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// MouseButtons is the button state passed to Camera.Update.
type MouseButtons uint8

const (
	MouseLeft MouseButtons = 1 << iota
	MouseRight
)

// Camera keeps an orthonormal basis built from a position and a forward
// vector, and the view and projection matrices derived from it.
//
// Position and forward are always stored right-handed. A left-handed camera
// mirrors them when building its basis, so switching handedness renders the
// same logical scene.
type Camera struct {
	position math3d.Vec3
	forward  math3d.Vec3
	worldUp  math3d.Vec3
	right    math3d.Vec3
	up       math3d.Vec3

	width, height float64
	aspect        float64
	fovScale      float64 // tan(fovy / 2)
	near, far     float64
	leftHanded    bool

	TranslationSpeed float64
	RotationSpeed    float64

	// Cached matrices (recomputed when a parameter changes)
	lookAt    math3d.Mat4 // camera to world
	view      math3d.Mat4 // world to camera
	proj      math3d.Mat4
	viewProj  math3d.Mat4
	viewDirty bool
	projDirty bool
}

// NewCamera creates a camera at position looking down -z (right-handed),
// with a vertical field of view in degrees.
func NewCamera(position math3d.Vec3, width, height int, fovDegrees float64, leftHanded bool) *Camera {
	c := &Camera{
		forward:          math3d.V3(0, 0, 1),
		worldUp:          math3d.Up(),
		right:            math3d.V3(1, 0, 0),
		up:               math3d.Up(),
		near:             0.1,
		far:              100,
		TranslationSpeed: 2,
		RotationSpeed:    0.3,
	}
	c.Initialize(position, width, height, fovDegrees, leftHanded)
	return c
}

// Initialize resets position, viewport, field of view and handedness.
func (c *Camera) Initialize(position math3d.Vec3, width, height int, fovDegrees float64, leftHanded bool) {
	c.position = position
	c.width, c.height = float64(width), float64(height)
	c.aspect = c.width / c.height
	c.fovScale = math.Tan(fovDegrees * math.Pi / 360)
	c.leftHanded = leftHanded
	c.rebuildView()
	c.rebuildProjection()
}

// Update applies one frame of pointer movement.
//
// Both buttons pan vertically. The left button yaws about world up and then
// moves along the new forward on the ground plane. The right button pitches
// about the camera right axis and yaws about world up. A frame with no
// pointer movement is ignored.
func (c *Camera) Update(dx, dy float64, buttons MouseButtons, dt float64) {
	if dx == 0 && dy == 0 {
		return
	}

	switch {
	case buttons&MouseLeft != 0 && buttons&MouseRight != 0:
		c.position.Y -= dy * c.TranslationSpeed * dt
	case buttons&MouseLeft != 0:
		yaw := math3d.Rotate(c.worldUp, -dx*c.RotationSpeed*dt)
		c.forward = yaw.MulVec3Dir(c.forward)

		speed := dy * c.TranslationSpeed * dt
		c.position.X += speed * c.forward.X
		c.position.Z += speed * c.forward.Z
	case buttons&MouseRight != 0:
		// Right of the stored (right-handed) forward, whatever the convention
		right := c.worldUp.Cross(c.forward).Normalize()
		pitch := math3d.Rotate(right, -dy*c.RotationSpeed*dt)
		yaw := math3d.Rotate(c.worldUp, -dx*c.RotationSpeed*dt)
		c.forward = pitch.Mul(yaw).MulVec3Dir(c.forward)
	default:
		return
	}

	c.rebuildView()
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.viewDirty = true
}

// SetForward points the camera. The vector is normalized.
func (c *Camera) SetForward(f math3d.Vec3) {
	c.forward = f.Normalize()
	c.viewDirty = true
}

// SetNearPlane sets the near clip distance.
func (c *Camera) SetNearPlane(near float64) {
	c.near = near
	c.projDirty = true
}

// SetFarPlane sets the far clip distance.
func (c *Camera) SetFarPlane(far float64) {
	c.far = far
	c.projDirty = true
}

// SetHandedness switches between left- and right-handed conventions.
func (c *Camera) SetHandedness(leftHanded bool) {
	c.leftHanded = leftHanded
	c.viewDirty = true
	c.projDirty = true
}

// SetViewport updates the aspect ratio for a new output size.
func (c *Camera) SetViewport(width, height int) {
	c.width, c.height = float64(width), float64(height)
	c.aspect = c.width / c.height
	c.projDirty = true
}

// Position returns the right-handed camera position.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Forward returns the right-handed forward vector. The camera looks along
// its negation.
func (c *Camera) Forward() math3d.Vec3 { return c.forward }

// Right returns the current right basis vector.
func (c *Camera) Right() math3d.Vec3 { return c.right }

// Up returns the current up basis vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// LeftHanded reports the camera convention.
func (c *Camera) LeftHanded() bool { return c.leftHanded }

// Near returns the near clip distance.
func (c *Camera) Near() float64 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float64 { return c.far }

// Eye returns the camera position in the camera's own convention.
func (c *Camera) Eye() math3d.Vec3 {
	return c.LookAtMatrix().Translation()
}

// LookAtMatrix returns the camera-to-world matrix.
func (c *Camera) LookAtMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.rebuildView()
	}
	return c.lookAt
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.rebuildView()
	}
	return c.view
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.rebuildProjection()
	}
	return c.proj
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewDirty || c.projDirty {
		_ = c.ViewMatrix()
		_ = c.ProjectionMatrix()
		c.viewProj = c.proj.Mul(c.view)
	}
	return c.viewProj
}

func (c *Camera) rebuildView() {
	forward, position := c.forward, c.position
	if c.leftHanded {
		// Flip xy on forward so rotations behave the same on a flipped z
		forward = math3d.V3(-forward.X, -forward.Y, forward.Z)
		position = position.MirrorZ()
	}

	c.right = c.worldUp.Cross(forward).Normalize()
	c.up = forward.Cross(c.right).Normalize()

	c.lookAt = math3d.FromColumns(
		math3d.V4FromV3(c.right, 0),
		math3d.V4FromV3(c.up, 0),
		math3d.V4FromV3(forward, 0),
		math3d.V4FromV3(position, 1),
	)
	c.view = c.lookAt.Inverse()
	c.viewProj = c.proj.Mul(c.view)
	c.viewDirty = false
}

func (c *Camera) rebuildProjection() {
	if c.leftHanded {
		c.proj = math3d.PerspectiveLH(c.fovScale, c.aspect, c.near, c.far)
	} else {
		c.proj = math3d.PerspectiveRH(c.fovScale, c.aspect, c.near, c.far)
	}
	c.viewProj = c.proj.Mul(c.view)
	c.projDirty = false
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulPoint(worldPos)

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < 0 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}
