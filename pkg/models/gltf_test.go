package models

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.GenerateTangents {
		t.Error("GenerateTangents should default to true")
	}
}

// triangleDocument builds an in-memory document holding one counter-clockwise
// triangle in the z=0 plane with 16-bit indices.
func triangleDocument(mode gltf.PrimitiveMode) *gltf.Document {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	}
	indices := []uint16{0, 1, 2, 3}

	data := make([]byte, 0, len(positions)*4+len(indices)*2)
	for _, p := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(p))
	}
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	count := 3
	if mode == gltf.PrimitiveTriangleStrip {
		count = 4
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: len(positions) * 4},
			{Buffer: 0, ByteOffset: len(positions) * 4, ByteLength: len(indices) * 2},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), Count: count, Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			{BufferView: gltf.Index(1), Count: count, Type: gltf.AccessorScalar, ComponentType: gltf.ComponentUshort},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
				Mode:       mode,
			}},
		}},
	}
}

func TestGLTFKeepsWinding(t *testing.T) {
	mesh, err := NewGLTFLoader().fromDocument(triangleDocument(gltf.PrimitiveTriangles), "tri")
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}

	if mesh.TriangleCount() != 1 {
		t.Fatalf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
	if got := mesh.Triangle(0); got != [3]uint32{0, 1, 2} {
		t.Errorf("Triangle(0) = %v, want [0 1 2]", got)
	}

	// Counter-clockwise in the xy plane faces +z
	for i, v := range mesh.Vertices[:3] {
		if math.Abs(v.Normal.Z-1) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +z", i, v.Normal)
		}
		if math.Abs(v.Tangent.Dot(v.Normal)) > 1e-9 {
			t.Errorf("vertex %d tangent %v not orthogonal to normal", i, v.Tangent)
		}
	}
}

func TestGLTFStripUnrolled(t *testing.T) {
	mesh, err := NewGLTFLoader().fromDocument(triangleDocument(gltf.PrimitiveTriangleStrip), "strip")
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}

	if mesh.Topology != TopologyTriangleList {
		t.Errorf("Topology = %v, want list", mesh.Topology)
	}
	want := []uint32{0, 1, 2, 1, 3, 2}
	if len(mesh.Indices) != len(want) {
		t.Fatalf("Indices = %v, want %v", mesh.Indices, want)
	}
	for i := range want {
		if mesh.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", mesh.Indices, want)
		}
	}
}

func TestGLTFNoGeometry(t *testing.T) {
	doc := triangleDocument(gltf.PrimitiveTriangles)
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	_, err := NewGLTFLoader().fromDocument(doc, "lines")
	if err == nil {
		t.Fatal("expected error for a document without triangles")
	}
}
