package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulPoint(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec2Cross(b *testing.B) {
	v1 := V2(1, 2)
	v2 := V2(4, 5)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkWorldViewProjection(b *testing.B) {
	// Same product the triangle pipeline builds per draw
	proj := PerspectiveRH(math.Tan(math.Pi/8), 4.0/3.0, 0.1, 100)
	view := Translate(V3(0, 0, 65)).Inverse()
	world := RotateY(0.3)

	for b.Loop() {
		_ = proj.Mul(view).Mul(world)
	}
}
