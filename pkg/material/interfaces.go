package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Material is the closed set of surface behaviours known to the integrator.
// Directions follow one convention throughout: incoming is the direction the
// ray was travelling when it hit the surface, outgoing points away from it.
type Material interface {
	// Emitted returns radiance leaving the surface toward the ray origin
	Emitted(rayIn core.Ray, hit *HitRecord) core.Vec3

	// Scatter proposes an outgoing direction. It returns false when the material absorbs.
	Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool)

	// BSDF evaluates the scattering function. Zero for delta materials.
	BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3

	// PDF is the solid-angle density with which Scatter produces outgoing
	PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64

	// IsDelta reports whether every scatter is a single deterministic direction
	IsDelta() bool

	isMaterial()
}

// ScatterSample is a direction proposed by Scatter
type ScatterSample struct {
	Origin      core.Vec3 // Where the next ray starts; differs from the hit point only for portals
	Direction   core.Vec3 // Normalized outgoing direction
	Attenuation core.Vec3 // Throughput multiplier, meaningful for delta samples only
	IsDelta     bool
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T             float64   // Parameter t along the ray
	Point         core.Vec3 // Point of intersection
	Normal        core.Vec3 // Geometric normal, facing against the ray
	ShadingNormal core.Vec3 // Interpolated or normal-mapped normal, on the same side as Normal
	UV            core.Vec2 // Surface coordinates
	FrontFace     bool      // Whether ray hit the front face
	Material      Material  // Material of the hit object
}

// SetFaceNormal sets the geometric and shading normals and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
	h.ShadingNormal = h.Normal
}

// SetShadingNormal sets an outward-facing shading normal, flipped to the side of the geometric normal.
// Zero or non-finite normals are ignored.
func (h *HitRecord) SetShadingNormal(outwardShading core.Vec3) {
	n := outwardShading.Normalize()
	if n.IsZero() || !n.IsFinite() {
		return
	}
	if !h.FrontFace {
		n = n.Negate()
	}
	h.ShadingNormal = n
}

// noEmission is embedded by materials that never emit
type noEmission struct{}

func (noEmission) Emitted(core.Ray, *HitRecord) core.Vec3 { return core.Vec3{} }

// noScatter is embedded by materials that only emit
type noScatter struct{}

func (noScatter) Scatter(core.Ray, *HitRecord, core.Sampler) (ScatterSample, bool) {
	return ScatterSample{}, false
}
func (noScatter) BSDF(core.Vec3, core.Vec3, *HitRecord) core.Vec3 { return core.Vec3{} }
func (noScatter) PDF(core.Vec3, core.Vec3, *HitRecord) float64    { return 0 }
func (noScatter) IsDelta() bool                                   { return false }
