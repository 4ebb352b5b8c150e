package render

import (
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

// testFrustum is a camera at the origin looking down -Z.
func testFrustum(near, far float64) Frustum {
	proj := math3d.PerspectiveRH(math.Tan(math.Pi/6), 16.0/9.0, near, far)
	return NewFrustumFromMatrix(proj.Mul(math3d.Identity()))
}

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if l := plane.Normal.Len(); math.Abs(l-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", l)
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestAABBBasics(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	center := box.Center()
	if center.X != 0 || center.Y != 0 || center.Z != 0 {
		t.Errorf("center = %v, want (0, 0, 0)", center)
	}

	size := box.Size()
	if size.X != 2 || size.Y != 4 || size.Z != 6 {
		t.Errorf("size = %v, want (2, 4, 6)", size)
	}
}

func TestAABBMirrorZ(t *testing.T) {
	box := NewAABB(math3d.V3(-1, 0, 2), math3d.V3(1, 1, 5)).MirrorZ()
	if box.Min.Z != -5 || box.Max.Z != -2 {
		t.Errorf("mirrored z range = [%v, %v], want [-5, -2]", box.Min.Z, box.Max.Z)
	}
	if box.Min.X != -1 || box.Max.Y != 1 {
		t.Errorf("x/y changed: %v", box)
	}
}

func TestAABBContainsPoint(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(10, 10, 10))

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center", math3d.V3(5, 5, 5), true},
		{"corner", math3d.V3(0, 0, 0), true},
		{"outside x", math3d.V3(11, 5, 5), false},
		{"outside z", math3d.V3(5, 5, -1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	t.Run("translation", func(t *testing.T) {
		transformed := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
		if transformed.Min != math3d.V3(9, 19, 29) || transformed.Max != math3d.V3(11, 21, 31) {
			t.Errorf("translated = %v, want (9,19,29)-(11,21,31)", transformed)
		}
	})

	t.Run("rotation", func(t *testing.T) {
		transformed := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		if math.Abs(transformed.Max.X-want) > 1e-9 || math.Abs(transformed.Min.Z+want) > 1e-9 {
			t.Errorf("rotated = %v, want x/z extent %v", transformed, want)
		}
	})
}

func TestFrustumPlanesNormalized(t *testing.T) {
	frustum := testFrustum(0.1, 100)
	for i, plane := range frustum.Planes {
		if l := plane.Normal.Len(); math.Abs(l-1.0) > 1e-6 {
			t.Errorf("plane %d normal length = %v, want 1.0", i, l)
		}
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	frustum := testFrustum(0.1, 100)

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center near", math3d.V3(0, 0, -1), true},
		{"center mid", math3d.V3(0, 0, -50), true},
		{"center far", math3d.V3(0, 0, -99), true},
		{"behind camera", math3d.V3(0, 0, 1), false},
		{"too far", math3d.V3(0, 0, -200), false},
		{"too close", math3d.V3(0, 0, -0.01), false},
		{"off to the side", math3d.V3(50, 0, -10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	frustum := testFrustum(1, 100)

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"fully inside", NewAABB(math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5)), true},
		{"crossing near plane", NewAABB(math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2)), true},
		{"behind camera", NewAABB(math3d.V3(-1, -1, 5), math3d.V3(1, 1, 10)), false},
		{"beyond far plane", NewAABB(math3d.V3(-1, -1, -150), math3d.V3(1, 1, -120)), false},
		{"far to the right", NewAABB(math3d.V3(100, -1, -10), math3d.V3(110, 1, -5)), false},
		{"containing frustum", NewAABB(math3d.V3(-200, -200, -200), math3d.V3(200, 200, 200)), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectAABB(tc.box); got != tc.expected {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.expected)
			}
		})
	}
}

func TestFrustumContainsAABB(t *testing.T) {
	frustum := testFrustum(1, 100)
	inside := NewAABB(math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5))
	if !frustum.ContainsAABB(inside) {
		t.Error("box well inside should be contained")
	}
	crossing := NewAABB(math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2))
	if frustum.ContainsAABB(crossing) {
		t.Error("box crossing the near plane should not be contained")
	}
}

func TestCameraFrustumRotated(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 0, 0), 100, 100, 60, false)
	cam.SetForward(math3d.V3(-1, 0, 0)) // Looking along +X
	frustum := cam.Frustum()

	if !frustum.ContainsPoint(math3d.V3(10, 0, 0)) {
		t.Error("point in front of rotated camera should be visible")
	}
	if frustum.ContainsPoint(math3d.V3(-10, 0, 0)) {
		t.Error("point behind rotated camera should not be visible")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	frustum := testFrustum(0.1, 1000)
	box := NewAABB(math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5))

	for b.Loop() {
		_ = frustum.IntersectAABB(box)
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	cam := NewCamera(math3d.V3(0, 10, 20), 640, 480, 45, false)
	viewProj := cam.ViewProjectionMatrix()

	for b.Loop() {
		_ = NewFrustumFromMatrix(viewProj)
	}
}

func BenchmarkAABBTransform(b *testing.B) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	trans := math3d.Translate(math3d.V3(10, 0, 0)).Mul(math3d.RotateY(0.5))

	for b.Loop() {
		_ = box.Transform(trans)
	}
}
