package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// Principled is a multi-lobe physically based material in the style of the Disney BRDF.
//
// Lobes: a diffuse lobe (with sheen), a GGX specular lobe, a GTR1 clearcoat lobe and a
// diffuse transmission lobe. Scatter picks one lobe by its selection weight; PDF and BSDF
// sum every lobe that can produce the queried direction, so the mixture stays consistent
// with the sampling.
type Principled struct {
	noEmission
	BaseColor      texture.ColorSource
	Metallic       float64 // 0 = dielectric, 1 = metal
	Roughness      float64 // Specular roughness, alpha = roughness²
	Specular       float64 // Dielectric specular amount, 0.5 ≈ IOR 1.5
	SpecularTint   float64 // Tints dielectric specular toward the base color
	Sheen          float64 // Grazing retro-reflection for cloth
	SheenTint      float64
	Clearcoat      float64 // Strength of the second specular layer
	ClearcoatGloss float64 // 0 = satin, 1 = gloss
	Transmission   float64 // Fraction of diffuse light transmitted through the surface
}

// NewPrincipled creates a principled material with the usual defaults around a solid base color
func NewPrincipled(baseColor core.Vec3) *Principled {
	return NewTexturedPrincipled(texture.NewSolidColor(baseColor))
}

// NewTexturedPrincipled creates a principled material with a textured base color
func NewTexturedPrincipled(baseColor texture.ColorSource) *Principled {
	return &Principled{
		BaseColor:      baseColor,
		Roughness:      0.5,
		Specular:       0.5,
		ClearcoatGloss: 1.0,
	}
}

func (p *Principled) isMaterial() {}

// IsDelta implements Material
func (p *Principled) IsDelta() bool { return false }

// lobeWeights returns normalized selection probabilities for the four lobes
func (p *Principled) lobeWeights() (diffuse, specular, clearcoat, transmission float64) {
	metallic := clamp01(p.Metallic)
	trans := clamp01(p.Transmission)

	diffuse = (1 - metallic) * (1 - trans)
	specular = metallic + (1-metallic)*0.5
	clearcoat = 0.25 * clamp01(p.Clearcoat)
	transmission = (1 - metallic) * trans

	total := diffuse + specular + clearcoat + transmission
	return diffuse / total, specular / total, clearcoat / total, transmission / total
}

func (p *Principled) alpha() float64 {
	r := clamp01(p.Roughness)
	return math.Max(0.001, r*r)
}

func (p *Principled) clearcoatAlpha() float64 {
	return 0.1 + (0.001-0.1)*clamp01(p.ClearcoatGloss)
}

// frame picks the normal used for shading. A shading normal facing away from the viewer falls
// back to the geometric normal.
func frame(incoming core.Vec3, hit *HitRecord) (n, v core.Vec3) {
	v = incoming.Normalize().Negate()
	n = hit.ShadingNormal
	if n.Dot(v) <= 0 {
		n = hit.Normal
	}
	return n, v
}

// Scatter selects a lobe and samples its distribution
func (p *Principled) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool) {
	n, v := frame(rayIn.Direction, hit)
	wd, ws, wc, _ := p.lobeWeights()

	u := sampler.Get1D()
	var wi core.Vec3
	reflect := true
	switch {
	case u < wd:
		wi = core.SampleCosineHemisphere(n, sampler.Get2D())
	case u < wd+ws:
		wi = reflectAbout(v, n, core.SampleGGXHalfVector(p.alpha(), sampler.Get2D()))
	case u < wd+ws+wc:
		wi = reflectAbout(v, n, core.SampleGTR1HalfVector(p.clearcoatAlpha(), sampler.Get2D()))
	default:
		wi = core.SampleCosineHemisphere(n.Negate(), sampler.Get2D())
		reflect = false
	}

	cos := wi.Dot(n)
	if wi.IsZero() || (reflect && cos <= 0) || (!reflect && cos >= 0) {
		return ScatterSample{}, false
	}
	return ScatterSample{Origin: hit.Point, Direction: wi}, true
}

// reflectAbout mirrors v about the half vector given in n's local frame.
// Returns zero when the microfacet faces away from v.
func reflectAbout(v, n, localH core.Vec3) core.Vec3 {
	h := core.NewONB(n).Local(localH.X, localH.Y, localH.Z)
	vh := v.Dot(h)
	if vh <= 0 {
		return core.Vec3{}
	}
	return h.Multiply(2 * vh).Subtract(v).Normalize()
}

// PDF sums the selection-weighted densities of all lobes that can produce outgoing
func (p *Principled) PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64 {
	n, v := frame(incoming, hit)
	wi := outgoing.Normalize()
	wd, ws, wc, wt := p.lobeWeights()

	cosI := wi.Dot(n)
	if cosI < 0 {
		return wt * -cosI / math.Pi
	}
	if cosI == 0 {
		return 0
	}

	pdf := wd * cosI / math.Pi
	h := v.Add(wi).Normalize()
	vh := v.Dot(h)
	if vh > 0 {
		cosH := n.Dot(h)
		pdf += ws * core.GGX(cosH, p.alpha()) * cosH / (4 * vh)
		pdf += wc * core.GTR1(cosH, p.clearcoatAlpha()) * cosH / (4 * vh)
	}
	return pdf
}

// BSDF sums the lobe values for the direction pair
func (p *Principled) BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3 {
	n, v := frame(incoming, hit)
	wi := outgoing.Normalize()

	metallic := clamp01(p.Metallic)
	trans := clamp01(p.Transmission)
	base := p.BaseColor.Evaluate(hit.UV, hit.Point)

	cosI := wi.Dot(n)
	cosV := v.Dot(n)
	if cosI == 0 || cosV <= 0 {
		return core.Vec3{}
	}

	white := core.NewVec3(1, 1, 1)
	tint := white
	if lum := base.Luminance(); lum > 0 {
		tint = base.Multiply(1 / lum)
	}
	f0 := white.Lerp(tint, clamp01(p.SpecularTint)).Multiply(0.08 * clamp01(p.Specular)).Lerp(base, metallic)

	// Light reflected by the specular layers at the viewing angle never reaches the base
	baseScale := (1 - metallic) * (1 - schlickColor(f0, cosV).MaxComponent())
	if p.Clearcoat > 0 {
		baseScale *= 1 - 0.25*clamp01(p.Clearcoat)*Reflectance(cosV, 1/1.5)
	}

	if cosI < 0 {
		return base.Multiply(baseScale * trans / math.Pi)
	}

	h := v.Add(wi).Normalize()
	cosH := n.Dot(h)
	cosD := wi.Dot(h)

	// Diffuse and sheen
	fh := math.Pow(math.Max(0, 1-cosD), 5)
	diffuse := base.Multiply(1 / math.Pi)
	sheen := white.Lerp(tint, clamp01(p.SheenTint)).Multiply(clamp01(p.Sheen) * fh)
	result := diffuse.Add(sheen).Multiply(baseScale * (1 - trans))

	// Specular
	alpha := p.alpha()
	fresnel := schlickColor(f0, cosD)
	d := core.GGX(cosH, alpha)
	g := core.SmithG1GGX(cosI, alpha) * core.SmithG1GGX(cosV, alpha)
	result = result.Add(fresnel.Multiply(d * g / (4 * cosI * cosV)))

	// Clearcoat
	if p.Clearcoat > 0 {
		fc := Reflectance(cosD, 1/1.5)
		dc := core.GTR1(cosH, p.clearcoatAlpha())
		gc := core.SmithG1GGX(cosI, 0.25) * core.SmithG1GGX(cosV, 0.25)
		result = result.Add(white.Multiply(0.25 * clamp01(p.Clearcoat) * fc * dc * gc / (4 * cosI * cosV)))
	}

	return result
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
