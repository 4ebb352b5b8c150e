package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

func quadMesh(topology Topology) *TriangleMesh {
	mesh := NewTriangleMesh("quad")
	mesh.Topology = topology
	mesh.Vertices = []Vertex{
		{Position: math3d.V3(-1, -1, 0), UV: math3d.V2(0, 1), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(1, -1, 0), UV: math3d.V2(1, 1), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(-1, 1, 0), UV: math3d.V2(0, 0), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(1, 1, 0), UV: math3d.V2(1, 0), Normal: math3d.V3(0, 0, 1)},
	}
	if topology == TopologyTriangleStrip {
		mesh.Indices = []uint32{0, 1, 2, 3}
	} else {
		mesh.Indices = []uint32{0, 1, 2, 2, 1, 3}
	}
	return mesh
}

func TestNewTriangleMeshDefaults(t *testing.T) {
	mesh := NewTriangleMesh("test")

	if !mesh.Valid {
		t.Error("new mesh should be valid")
	}
	if mesh.Cull != CullBack {
		t.Errorf("Cull = %v, want back", mesh.Cull)
	}
	if mesh.Sampler != SamplerPoint {
		t.Errorf("Sampler = %v, want point", mesh.Sampler)
	}
	if mesh.Blend != BlendNone {
		t.Errorf("Blend = %v, want none", mesh.Blend)
	}
	if mesh.RotateSpeed != 1 {
		t.Errorf("RotateSpeed = %v, want 1", mesh.RotateSpeed)
	}
	if mesh.World != math3d.Identity() {
		t.Errorf("World should start as identity")
	}
}

func TestTrianglesTopology(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		want     [][3]uint32
	}{
		{"list", TopologyTriangleList, [][3]uint32{{0, 1, 2}, {2, 1, 3}}},
		// Odd strip triangles swap their last two indices
		{"strip", TopologyTriangleStrip, [][3]uint32{{0, 1, 2}, {1, 3, 2}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh := quadMesh(tc.topology)
			if mesh.TriangleCount() != len(tc.want) {
				t.Fatalf("TriangleCount = %d, want %d", mesh.TriangleCount(), len(tc.want))
			}
			var got [][3]uint32
			for _, tri := range mesh.Triangles() {
				got = append(got, tri)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("triangle %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestStripKeepsWinding(t *testing.T) {
	mesh := quadMesh(TopologyTriangleStrip)

	for i, tri := range mesh.Triangles() {
		a := mesh.Vertices[tri[0]].Position
		b := mesh.Vertices[tri[1]].Position
		c := mesh.Vertices[tri[2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Z <= 0 {
			t.Errorf("strip triangle %d faces %v, want +z", i, n)
		}
	}
}

func TestTrianglesNonIndexed(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.Indices = nil
	mesh.Vertices = append(mesh.Vertices, mesh.Vertices[0], mesh.Vertices[1])

	if mesh.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	if got := mesh.Triangle(1); got != [3]uint32{3, 4, 5} {
		t.Errorf("Triangle(1) = %v, want [3 4 5]", got)
	}
}

func TestToTriangleList(t *testing.T) {
	mesh := quadMesh(TopologyTriangleStrip)
	mesh.ToTriangleList()

	if mesh.Topology != TopologyTriangleList {
		t.Fatalf("Topology = %v, want list", mesh.Topology)
	}
	if got := mesh.Triangle(1); got != [3]uint32{1, 3, 2} {
		t.Errorf("Triangle(1) = %v, want [1 3 2]", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *TriangleMesh)
		wantErr error
	}{
		{"ok", func(m *TriangleMesh) {}, nil},
		{"empty", func(m *TriangleMesh) { m.Vertices = nil; m.Indices = nil }, ErrNoGeometry},
		{"out of range", func(m *TriangleMesh) { m.Indices[4] = 9 }, ErrInvalidIndex},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh := quadMesh(TopologyTriangleList)
			tc.mutate(mesh)
			err := mesh.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUpdateRotation(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.RotateSpeed = 2

	mesh.Update(0.25)

	if math.Abs(mesh.Angle()+0.5) > 1e-9 {
		t.Errorf("Angle = %v, want -0.5", mesh.Angle())
	}
	want := math3d.RotateY(-0.5)
	for i := range 16 {
		if math.Abs(mesh.World[i]-want[i]) > 1e-9 {
			t.Fatalf("World[%d] = %v, want %v", i, mesh.World[i], want[i])
		}
	}
}

func TestUpdateKeepsTransform(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.SetTransform(math3d.Translate(math3d.V3(0, 0, -5)))
	mesh.Update(1)

	if got := mesh.World.Translation(); got != math3d.V3(0, 0, -5) {
		t.Errorf("translation = %v, want (0, 0, -5)", got)
	}
}

func TestCalculateBounds(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.CalculateBounds()

	lo, hi := mesh.Bounds()
	if lo != math3d.V3(-1, -1, 0) || hi != math3d.V3(1, 1, 0) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
	if c := mesh.Center(); c != (math3d.Vec3{}) {
		t.Errorf("Center = %v, want origin", c)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.Materials = []Material{{Name: "mat1"}}

	clone := mesh.Clone()
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	clone.Indices[0] = 3
	clone.Materials[0].Name = "modified"

	if mesh.Vertices[0].Position == clone.Vertices[0].Position {
		t.Error("Clone should copy vertices")
	}
	if mesh.Indices[0] == 3 {
		t.Error("Clone should copy indices")
	}
	if mesh.Materials[0].Name == "modified" {
		t.Error("Clone should copy materials")
	}
}

func TestMirrorZ(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.MirrorZ()

	if !mesh.LeftHanded {
		t.Error("mirrored mesh should be flagged left-handed")
	}
	if mesh.Vertices[0].Normal != math3d.V3(0, 0, -1) {
		t.Errorf("normal = %v, want (0, 0, -1)", mesh.Vertices[0].Normal)
	}
	if mesh.Triangle(0) != [3]uint32{0, 1, 2} {
		t.Error("MirrorZ must not change winding")
	}
}

func TestGenerateTangents(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	// Skew the normal so Gram-Schmidt has work to do
	for i := range mesh.Vertices {
		mesh.Vertices[i].Normal = math3d.V3(0.3, 0, 1)
	}
	mesh.GenerateTangents()

	for i, v := range mesh.Vertices {
		if math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Errorf("vertex %d normal not unit: %v", i, v.Normal)
		}
		if math.Abs(v.Tangent.Len()-1) > 1e-9 {
			t.Errorf("vertex %d tangent not unit: %v", i, v.Tangent)
		}
		if math.Abs(v.Tangent.Dot(v.Normal)) > 1e-9 {
			t.Errorf("vertex %d tangent not orthogonal: %v . %v", i, v.Tangent, v.Normal)
		}
		// u grows along +x
		if v.Tangent.X <= 0 {
			t.Errorf("vertex %d tangent = %v, want +x", i, v.Tangent)
		}
	}
}

func TestOrthonormalizeDegenerateTangent(t *testing.T) {
	mesh := quadMesh(TopologyTriangleList)
	mesh.Vertices[0].Tangent = math3d.V3(0, 0, 5) // parallel to the normal
	mesh.OrthonormalizeTangents()

	v := mesh.Vertices[0]
	if math.Abs(v.Tangent.Len()-1) > 1e-9 || math.Abs(v.Tangent.Dot(v.Normal)) > 1e-9 {
		t.Errorf("tangent = %v, want unit and perpendicular to %v", v.Tangent, v.Normal)
	}
}

func TestParseRenderState(t *testing.T) {
	if c, err := ParseCullMode("front"); err != nil || c != CullFront {
		t.Errorf("ParseCullMode(front) = %v, %v", c, err)
	}
	if c, err := ParseCullMode(""); err != nil || c != CullBack {
		t.Errorf("ParseCullMode(\"\") = %v, %v", c, err)
	}
	if s, err := ParseSamplerState("Linear"); err != nil || s != SamplerLinear {
		t.Errorf("ParseSamplerState(Linear) = %v, %v", s, err)
	}
	if b, err := ParseBlendState("add"); err != nil || b != BlendAdd {
		t.Errorf("ParseBlendState(add) = %v, %v", b, err)
	}
	if tp, err := ParseTopology("strip"); err != nil || tp != TopologyTriangleStrip {
		t.Errorf("ParseTopology(strip) = %v, %v", tp, err)
	}
	if _, err := ParseCullMode("sideways"); err == nil {
		t.Error("expected error for unknown cull mode")
	}
}

func TestRenderStateCycle(t *testing.T) {
	c := CullNone
	seen := map[CullMode]bool{}
	for range 3 {
		seen[c] = true
		c = c.Next()
	}
	if c != CullNone || len(seen) != 3 {
		t.Errorf("cull cycle visited %v, ended at %v", seen, c)
	}
	if SamplerAnisotropic.Next() != SamplerPoint {
		t.Error("sampler cycle should wrap to point")
	}
}
