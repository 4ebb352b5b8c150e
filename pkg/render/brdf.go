package render

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// Lambert returns the diffuse BRDF: reflectance * color / pi.
func Lambert(reflectance float64, color RGBColor) RGBColor {
	return color.Scale(reflectance / math.Pi)
}

// Phong returns the specular term ks * max(0, dot(r, v))^exp where r is l
// reflected about n. l points from the surface toward the light, v is the
// view direction from the eye toward the surface.
func Phong(ks, exp float64, l, v, n math3d.Vec3) float64 {
	r := l.Sub(n.Scale(2 * l.Dot(n)))
	cos := math.Max(0, r.Dot(v))
	return ks * math.Pow(cos, exp)
}

// FresnelSchlick returns the Schlick approximation of Fresnel reflectance.
func FresnelSchlick(h, v math3d.Vec3, f0 RGBColor) RGBColor {
	k := math.Pow(1-math.Max(0, h.Dot(v)), 5)
	return RGBColor{
		f0.R + (1-f0.R)*k,
		f0.G + (1-f0.G)*k,
		f0.B + (1-f0.B)*k,
	}
}

// NormalDistributionGGX returns the Trowbridge-Reitz GGX distribution with
// alpha = roughness^2.
func NormalDistributionGGX(n, h math3d.Vec3, roughness float64) float64 {
	a := roughness * roughness
	a2 := a * a
	nh := math.Max(0, n.Dot(h))
	d := nh*nh*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// GeometrySchlickGGX is the one-direction Schlick-GGX shadowing term with
// k = (roughness+1)^2 / 8.
func GeometrySchlickGGX(n, v math3d.Vec3, roughness float64) float64 {
	k := (roughness + 1) * (roughness + 1) / 8
	nv := math.Max(0, n.Dot(v))
	return nv / (nv*(1-k) + k)
}

// GeometrySmith combines shadowing toward the view and toward the light.
func GeometrySmith(n, v, l math3d.Vec3, roughness float64) float64 {
	return GeometrySchlickGGX(n, v, roughness) * GeometrySchlickGGX(n, l, roughness)
}

// CookTorrance returns the combined diffuse and specular BRDF of the
// metal/roughness workflow. l points toward the light, toView points from the
// surface toward the eye. Metallic blends f0 from 0.04 toward albedo and
// scales the diffuse down by the same amount.
func CookTorrance(albedo RGBColor, metallic, roughness float64, n, l, toView math3d.Vec3) RGBColor {
	h := l.Add(toView).Normalize()

	f0 := RGBColor{0.04, 0.04, 0.04}.Lerp(albedo, metallic)
	f := FresnelSchlick(h, toView, f0)
	d := NormalDistributionGGX(n, h, roughness)
	g := GeometrySmith(n, toView, l, roughness)

	denom := 4 * math.Max(0, n.Dot(l)) * math.Max(0, n.Dot(toView))
	var spec RGBColor
	if denom > 0 {
		spec = f.Scale(d * g / denom)
	}

	kd := RGBColor{1 - f.R, 1 - f.G, 1 - f.B}.Scale(1 - metallic)
	return kd.Mul(albedo).Scale(1 / math.Pi).Add(spec)
}
