package render

import (
	"fmt"
	"strings"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// ImageMode selects which shading term is written out.
type ImageMode int

const (
	ImageAll            ImageMode = iota // Full shading
	ImageOnlyIrradiance                  // Summed light irradiance
	ImageOnlyDiffuse                     // Resolved diffuse color
)

func (m ImageMode) String() string {
	switch m {
	case ImageAll:
		return "all"
	case ImageOnlyIrradiance:
		return "irradiance"
	case ImageOnlyDiffuse:
		return "diffuse"
	}
	return fmt.Sprintf("ImageMode(%d)", int(m))
}

// Next returns the following image mode, wrapping around.
func (m ImageMode) Next() ImageMode {
	return (m + 1) % 3
}

// ParseImageMode parses "all", "irradiance" or "diffuse". Empty means all.
func ParseImageMode(s string) (ImageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ImageAll, nil
	case "irradiance":
		return ImageOnlyIrradiance, nil
	case "diffuse":
		return ImageOnlyDiffuse, nil
	}
	return 0, fmt.Errorf("unknown image mode %q", s)
}

// Options are the per-frame render switches.
type Options struct {
	UseDepthBufferAsColor   bool
	UseMaterial             bool
	UseSimpleFrustumCulling bool
	ImageMode               ImageMode
}

// DefaultOptions returns material shading with simple frustum culling.
func DefaultOptions() Options {
	return Options{
		UseMaterial:             true,
		UseSimpleFrustumCulling: true,
	}
}

// Shade computes the color of one covered pixel. mat may be nil when
// UseMaterial is off.
func Shade(rec *HitRecord, mat *Material, lights []*Light, sampler models.SamplerState, opts Options) RGBColor {
	if opts.UseDepthBufferAsColor {
		d := Remap(rec.Depth, 0.985, 1)
		return RGBColor{d, d, d}
	}
	if !opts.UseMaterial || mat == nil {
		return rec.Color.MaxToOne()
	}

	diffuse := mat.DiffuseColor
	if mat.UseDiffuseMap {
		diffuse = mat.DiffuseMap.Sample(rec.UV, sampler)
	}
	diffuse = diffuse.Scale(mat.DiffuseReflectance)

	if opts.ImageMode == ImageOnlyDiffuse {
		return diffuse.MaxToOne()
	}

	normal := rec.Normal
	if mat.UseNormalMap {
		normal = perturbNormal(rec, mat.NormalMap.Sample(rec.UV, sampler))
	}

	var result, irradianceSum RGBColor
	for _, light := range lights {
		irradiance := light.Irradiance(normal)
		irradianceSum = irradianceSum.Add(irradiance)

		toLight := light.Direction.Negate()
		switch mat.Workflow {
		case WorkflowMetalRoughness:
			mr := mat.MetalRough
			roughness := mr.Roughness
			if mr.UseRoughnessMap {
				roughness = mr.RoughnessMap.Sample(rec.UV, sampler).R
			}
			metallic := mr.Metallic
			if mr.UseMetalMap {
				// Binary metalness
				metallic = 0
				if mr.MetalMap.Sample(rec.UV, sampler).R > 0.5 {
					metallic = 1
				}
			}
			brdf := CookTorrance(diffuse, metallic, roughness, normal, toLight, rec.ViewDir.Negate())
			result = result.Add(irradiance.Mul(brdf))

		default:
			sg := mat.SpecGloss
			shininess := sg.Shininess
			if sg.UseGlossMap {
				shininess *= sg.GlossMap.Sample(rec.UV, sampler).R
			}
			specColor := sg.SpecularColor
			if sg.UseSpecularMap {
				specColor = sg.SpecularMap.Sample(rec.UV, sampler)
			}
			phong := Phong(sg.SpecularReflectance, shininess, toLight, rec.ViewDir, normal)
			result = result.Add(irradiance.Mul(Lambert(1, diffuse))).Add(specColor.Scale(phong))
		}
	}

	if opts.ImageMode == ImageOnlyIrradiance {
		return irradianceSum.MaxToOne()
	}
	return result.MaxToOne()
}

// perturbNormal maps a tangent-space normal map sample into world space
// using the basis (tangent, cross(tangent, normal), normal).
func perturbNormal(rec *HitRecord, sample RGBColor) math3d.Vec3 {
	n := rec.Normal
	t := rec.Tangent
	b := t.Cross(n)

	ts := sample.Vec3().Scale(2).Sub(math3d.V3(1, 1, 1))
	return t.Scale(ts.X).Add(b.Scale(ts.Y)).Add(n.Scale(ts.Z)).Normalize()
}
