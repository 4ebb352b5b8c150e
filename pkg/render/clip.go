package render

import "github.com/taigrr/softras/pkg/math3d"

// clipPlane is one side of the clip-space view volume.
type clipPlane int

const (
	clipLeft   clipPlane = iota // x >= -w
	clipRight                   // x <= w
	clipBottom                  // y >= -w
	clipTop                     // y <= w
	clipNear                    // z >= 0
	clipFar                     // z <= w
)

// nearClipBias keeps vertices made on the near plane at a positive depth.
// Screen depth is interpolated through 1/z, so a vertex at z = 0 would zero
// the depth of every pixel of its piece.
const nearClipBias = 1e-7

// distance returns a value that is non-negative when p is inside the plane
// and linear in p, so an edge crosses the plane where it changes sign.
func (c clipPlane) distance(p math3d.Vec4) float64 {
	switch c {
	case clipLeft:
		return p.X + p.W
	case clipRight:
		return p.W - p.X
	case clipBottom:
		return p.Y + p.W
	case clipTop:
		return p.W - p.Y
	case clipNear:
		return p.Z
	default:
		return p.W - p.Z
	}
}

// outsidePlane reports whether all three vertices lie strictly outside c.
func outsidePlane(tri *[3]Vertex, c clipPlane) bool {
	for i := range 3 {
		if c.distance(tri[i].Position) >= 0 {
			return false
		}
	}
	return true
}

// clip clips V against the six planes of the view volume. Pending triangles
// live on a work list that is re-tested plane by plane. When any plane cuts
// the triangle the surviving pieces are stored in Sub, with the source
// winding kept.
func (t *Triangle) clip(eye math3d.Vec3) {
	t.Clipped = false
	t.Sub = t.Sub[:0]

	for c := clipLeft; c <= clipFar; c++ {
		if outsidePlane(&t.V, c) {
			t.InFrustum = false
			return
		}
	}

	cur := append(t.clipA[:0], t.V)
	next := t.clipB[:0]

	for c := clipLeft; c <= clipFar; c++ {
		next = next[:0]
		for _, tri := range cur {
			var d [3]float64
			outside := 0
			for i := range 3 {
				d[i] = c.distance(tri[i].Position)
				if d[i] < 0 {
					outside++
				}
			}

			switch outside {
			case 0:
				next = append(next, tri)
			case 1:
				// Rotate so the outside vertex comes first; rotation keeps winding
				i := 0
				for d[i] >= 0 {
					i++
				}
				i1, i2 := (i+1)%3, (i+2)%3
				v0, v1, v2 := tri[i], tri[i1], tri[i2]
				a := c.intersect(v0, v1, d[i], d[i1], eye)
				b := c.intersect(v0, v2, d[i], d[i2], eye)
				next = append(next, [3]Vertex{a, v1, v2}, [3]Vertex{b, a, v2})
				t.Clipped = true
			case 2:
				// Rotate so the inside vertex comes last
				k := 0
				for d[k] < 0 {
					k++
				}
				i0, i1 := (k+1)%3, (k+2)%3
				v2 := tri[k]
				a := c.intersect(tri[i0], v2, d[i0], d[k], eye)
				b := c.intersect(tri[i1], v2, d[i1], d[k], eye)
				next = append(next, [3]Vertex{a, b, v2})
				t.Clipped = true
			default:
				// A piece made by an earlier plane lies wholly beyond this one
				t.Clipped = true
			}
		}
		cur, next = next, cur
	}

	t.clipA, t.clipB = cur, next
	t.InFrustum = len(cur) > 0
	if !t.InFrustum {
		t.Clipped = false
		return
	}
	if !t.Clipped {
		return
	}

	for _, tri := range cur {
		t.Sub = append(t.Sub, Triangle{
			V:          tri,
			MaterialID: t.MaterialID,
			Cull:       t.Cull,
			InFrustum:  true,
			side:       t.side,
		})
	}
}

// intersect cuts the edge at plane c. A vertex made on the near plane is
// nudged just inside it.
func (c clipPlane) intersect(out, in Vertex, dOut, dIn float64, eye math3d.Vec3) Vertex {
	v := intersect(out, in, dOut, dIn, eye)
	if c == clipNear {
		v.Position.Z = max(v.Position.Z, nearClipBias*v.Position.W)
	}
	return v
}

// intersect returns the vertex where the edge from out (outside, distance
// dOut < 0) to in (inside, dIn >= 0) crosses the plane. The denominator
// cannot be zero because the distances have opposite signs. Color is not
// blended: the new vertex takes the inside color.
func intersect(out, in Vertex, dOut, dIn float64, eye math3d.Vec3) Vertex {
	s := dOut / (dOut - dIn)

	v := Vertex{
		Position: out.Position.Lerp(in.Position, s),
		World:    out.World.Lerp(in.World, s),
		Normal:   out.Normal.Lerp(in.Normal, s),
		Tangent:  out.Tangent.Lerp(in.Tangent, s),
		UV:       out.UV.Lerp(in.UV, s),
		Color:    in.Color,
	}
	v.ViewDir = v.World.Sub(eye).Normalize()
	return v
}
