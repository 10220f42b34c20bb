package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Portal teleports rays: a ray hitting the entry surface continues from the linked exit.
// It is a delta material with no BSDF, so the integrator never light-samples at a portal.
type Portal struct {
	noEmission
	Link        core.Transform // Maps points on the entry surface to the exit
	Turn        core.Transform // Maps ray directions
	Attenuation core.Vec3      // White keeps throughput unchanged
}

// NewPortal links through a single rigid transform applied to both position and direction
func NewPortal(link core.Transform) *Portal {
	return &Portal{Link: link, Turn: link, Attenuation: core.NewVec3(1, 1, 1)}
}

// NewPortalBetween links two surfaces placed by the from and to object transforms.
// A point at local coordinates p on the entry leaves from local coordinates p on the exit.
func NewPortalBetween(from, to core.Transform) *Portal {
	return NewPortal(to.Compose(from.Inverse()))
}

// NewPortalOffset moves the ray origin by offset and rotates its direction independently
func NewPortalOffset(offset core.Vec3, rotation core.Transform) *Portal {
	return &Portal{Link: core.Translate(offset), Turn: rotation, Attenuation: core.NewVec3(1, 1, 1)}
}

// WithAttenuation returns a copy of the portal that tints passing rays
func (p *Portal) WithAttenuation(attenuation core.Vec3) *Portal {
	c := *p
	c.Attenuation = attenuation
	return &c
}

func (p *Portal) isMaterial() {}

// IsDelta implements Material
func (p *Portal) IsDelta() bool { return true }

// Scatter relocates the ray to the exit surface
func (p *Portal) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool) {
	if !p.Link.IsInvertible() || !p.Turn.IsInvertible() {
		return ScatterSample{}, false
	}

	origin := p.Link.Point(hit.Point)
	direction := p.Turn.Vector(rayIn.Direction).Normalize()
	if direction.IsZero() || !direction.IsFinite() || !origin.IsFinite() {
		return ScatterSample{}, false
	}

	return ScatterSample{
		Origin:      origin,
		Direction:   direction,
		Attenuation: p.Attenuation,
		IsDelta:     true,
	}, true
}

// BSDF is zero: the redirect is a delta
func (p *Portal) BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3 {
	return core.Vec3{}
}

// PDF is zero: no continuous density
func (p *Portal) PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64 {
	return 0
}
