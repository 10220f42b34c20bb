package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// Cutout punches stochastic holes in another material using an alpha source.
// The integrator calls Discard before shading; surviving hits behave like Inner.
type Cutout struct {
	Inner    Material
	Coverage texture.AlphaSource
}

// NewCutout wraps inner with the given coverage
func NewCutout(inner Material, coverage texture.AlphaSource) *Cutout {
	return &Cutout{Inner: inner, Coverage: coverage}
}

func (c *Cutout) isMaterial() {}

// Opacity returns the coverage at the hit
func (c *Cutout) Opacity(hit *HitRecord) float64 {
	return clamp01(c.Coverage.Alpha(hit.UV))
}

// Discard reports whether the hit is treated as a hole for the uniform draw u in [0, 1).
// Zero coverage always discards and full coverage never does.
func (c *Cutout) Discard(hit *HitRecord, u float64) bool {
	return u >= c.Opacity(hit)
}

// Emitted implements Material
func (c *Cutout) Emitted(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	return c.Inner.Emitted(rayIn, hit)
}

// Scatter implements Material
func (c *Cutout) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterSample, bool) {
	return c.Inner.Scatter(rayIn, hit, sampler)
}

// BSDF implements Material
func (c *Cutout) BSDF(incoming, outgoing core.Vec3, hit *HitRecord) core.Vec3 {
	return c.Inner.BSDF(incoming, outgoing, hit)
}

// PDF implements Material
func (c *Cutout) PDF(incoming, outgoing core.Vec3, hit *HitRecord) float64 {
	return c.Inner.PDF(incoming, outgoing, hit)
}

// IsDelta implements Material
func (c *Cutout) IsDelta() bool {
	return c.Inner.IsDelta()
}
