package models

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

const quadOBJ = `# unit quad facing +z
v -1 -1 0
v 1 -1 0
v -1 1 0
v 1 1 0
vt 0 0
vt 1 0
vt 0 1
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 3/3/1 2/2/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), OBJOptions{})
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	// Shared corners are de-duplicated
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}

	// vt 0 0 is the bottom-left corner, which is row 1 of an image
	if uv := mesh.Vertices[0].UV; uv != math3d.V2(0, 1) {
		t.Errorf("UV = %v, want (0, 1)", uv)
	}
	if c := mesh.Vertices[0].Color; c != math3d.V3(1, 1, 1) {
		t.Errorf("Color = %v, want white", c)
	}

	for i, v := range mesh.Vertices {
		if math.Abs(v.Tangent.Dot(v.Normal)) > 1e-9 {
			t.Errorf("vertex %d tangent not orthogonal to normal", i)
		}
		if math.Abs(v.Tangent.Len()-1) > 1e-9 {
			t.Errorf("vertex %d tangent not unit: %v", i, v.Tangent)
		}
	}

	lo, hi := mesh.Bounds()
	if lo != math3d.V3(-1, -1, 0) || hi != math3d.V3(1, 1, 0) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
}

func TestParseOBJNegativeIndicesAndPolygons(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f -4 -3 -2 -1
`
	mesh, err := ParseOBJ(strings.NewReader(src), OBJOptions{})
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	if got := mesh.Triangle(1); got != [3]uint32{0, 2, 3} {
		t.Errorf("fan triangle = %v, want [0 2 3]", got)
	}
	// No vn records, so normals are generated from the winding
	if n := mesh.Vertices[0].Normal; math.Abs(n.Z-1) > 1e-9 {
		t.Errorf("generated normal = %v, want +z", n)
	}
}

func TestParseOBJFlipZ(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), OBJOptions{FlipZ: true})
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if n := mesh.Vertices[0].Normal; n != math3d.V3(0, 0, -1) {
		t.Errorf("normal = %v, want (0, 0, -1)", n)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"empty", "# nothing\n", ErrNoGeometry},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 7\n", ErrInvalidIndex},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrInvalidIndex},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tc.src), OBJOptions{})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseOBJ() = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if _, err := ParseOBJ(strings.NewReader("v 1 x 0\n"), OBJOptions{}); err == nil {
		t.Error("expected error for malformed vertex")
	}
	if _, err := ParseOBJ(strings.NewReader("v 0 0 0\nf 1 1\n"), OBJOptions{}); err == nil {
		t.Error("expected error for a two-vertex face")
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := LoadOBJ(path, OBJOptions{Color: math3d.V3(1, 0, 0)})
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if mesh.Name != "quad.obj" {
		t.Errorf("Name = %q, want quad.obj", mesh.Name)
	}
	if c := mesh.Vertices[2].Color; c != math3d.V3(1, 0, 0) {
		t.Errorf("Color = %v, want red", c)
	}

	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"), OBJOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
}
