package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	noEmission
	Albedo texture.ColorSource // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: texture.NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedoTexture texture.ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedoTexture}
}

func (l *Lambertian) isMaterial() {}

// IsDelta implements Material
func (l *Lambertian) IsDelta() bool { return false }

// Scatter generates a cosine-weighted direction around the shading normal
func (l *Lambertian) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool) {
	direction := core.SampleCosineHemisphere(hit.ShadingNormal, sampler.Get2D())
	if direction.Dot(hit.ShadingNormal) <= 0 {
		return ScatterSample{}, false
	}
	return ScatterSample{Origin: hit.Point, Direction: direction}, true
}

// BSDF is albedo/π above the surface
func (l *Lambertian) BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3 {
	if outgoing.Dot(hit.ShadingNormal) <= 0 {
		return core.Vec3{}
	}
	return l.Albedo.Evaluate(hit.UV, hit.Point).Multiply(1.0 / math.Pi)
}

// PDF is cos(θ)/π above the surface
func (l *Lambertian) PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64 {
	cosTheta := outgoing.Normalize().Dot(hit.ShadingNormal)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}
