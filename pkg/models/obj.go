package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softras/pkg/math3d"
)

// OBJOptions controls how Wavefront OBJ data is turned into a mesh.
type OBJOptions struct {
	// FlipZ mirrors z on load, converting left-handed data to right-handed.
	FlipZ bool
	// Color is assigned to every vertex. Zero means white.
	Color math3d.Vec3
}

// objKey identifies a unique position/uv/normal combination.
type objKey struct {
	p, t, n int
}

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string, opts OBJOptions) (*TriangleMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse obj %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads v, vt, vn and f records. Polygons are fan-triangulated and
// identical position/uv/normal triples share one vertex.
func ParseOBJ(r io.Reader, opts OBJOptions) (*TriangleMesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)

	color := opts.Color
	if color == (math3d.Vec3{}) {
		color = math3d.V3(1, 1, 1)
	}

	mesh := NewTriangleMesh("obj")
	seen := make(map[objKey]uint32)
	hasNormals := true

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			// OBJ puts v=0 at the bottom, images put row 0 at the top
			uvs = append(uvs, math3d.V2(v[0], 1-v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(v[0], v[1], v[2]))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs 3 vertices, got %d", lineNo, len(fields)-1)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := parseFaceRef(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if key.n < 0 {
					hasNormals = false
				}
				idx, ok := seen[key]
				if !ok {
					v := Vertex{Position: positions[key.p], Color: color}
					if key.t >= 0 {
						v.UV = uvs[key.t]
					}
					if key.n >= 0 {
						v.Normal = normals[key.n]
					}
					idx = uint32(len(mesh.Vertices))
					mesh.Vertices = append(mesh.Vertices, v)
					seen[key] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		default:
			// Groups, objects, materials and smoothing are not needed
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	if opts.FlipZ {
		for i := range mesh.Vertices {
			v := &mesh.Vertices[i]
			v.Position = v.Position.MirrorZ()
			v.Normal = v.Normal.MirrorZ()
		}
	}
	mesh.GenerateTangents()
	mesh.CalculateBounds()

	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// parseFaceRef parses "p", "p/t", "p//n" or "p/t/n" into zero-based indices.
// Missing components are -1. Negative OBJ indices count back from the end.
func parseFaceRef(ref string, np, nt, nn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	key := objKey{p: -1, t: -1, n: -1}

	resolve := func(s string, count int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("face index %q: %w", s, err)
		}
		switch {
		case i > 0 && i <= count:
			return i - 1, nil
		case i < 0 && -i <= count:
			return count + i, nil
		}
		return 0, fmt.Errorf("face index %d of %d: %w", i, count, ErrInvalidIndex)
	}

	var err error
	if key.p, err = resolve(parts[0], np); err != nil {
		return key, err
	}
	if key.p < 0 {
		return key, fmt.Errorf("face %q has no position: %w", ref, ErrInvalidIndex)
	}
	if len(parts) > 1 {
		if key.t, err = resolve(parts[1], nt); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 {
		if key.n, err = resolve(parts[2], nn); err != nil {
			return key, err
		}
	}
	return key, nil
}
