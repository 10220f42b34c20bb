package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// Mirror is a perfect specular reflector. Rough metals use Principled with Metallic=1.
type Mirror struct {
	noEmission
	Albedo texture.ColorSource
}

// NewMirror creates a mirror with a solid reflectance
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: texture.NewSolidColor(albedo)}
}

func (m *Mirror) isMaterial() {}

// IsDelta implements Material
func (m *Mirror) IsDelta() bool { return true }

// Scatter reflects about the shading normal
func (m *Mirror) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool) {
	reflected := reflectVector(rayIn.Direction.Normalize(), hit.ShadingNormal)

	// Shading normals can push the reflection under the geometric surface
	if reflected.Dot(hit.Normal) <= 0 {
		return ScatterSample{}, false
	}

	return ScatterSample{
		Origin:      hit.Point,
		Direction:   reflected,
		Attenuation: m.Albedo.Evaluate(hit.UV, hit.Point),
		IsDelta:     true,
	}, true
}

// BSDF is zero: the distribution is a delta
func (m *Mirror) BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3 {
	return core.Vec3{}
}

// PDF is zero: no continuous density
func (m *Mirror) PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64 {
	return 0
}
