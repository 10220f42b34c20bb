package lights

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Light is an emitting shape that can be sampled toward a shading point
type Light interface {
	// Sample picks a point on the light as seen from point.
	// Direction points FROM the shading point TO the light; PDF is per unit solid angle.
	Sample(point core.Vec3, sample core.Vec2) LightSample

	// PDF is the solid angle density with which Sample produces direction from point.
	// Zero when the direction misses the light.
	PDF(point, direction core.Vec3) float64

	// Power is an estimate of total emitted luminance, used to weight light selection
	Power() float64

	// Shape is the geometry to place in the scene so the light can be hit
	Shape() geometry.Shape
}

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Normal at the light sample point
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Radiance leaving the light toward the shading point
	PDF       float64   // Solid angle density of this sample
}

// LightSampler chooses which light to sample from a shading point
type LightSampler interface {
	// SampleLight selects a light and returns it with its selection probability and index
	SampleLight(point core.Vec3, u float64) (Light, float64, int)

	// GetLightProbability returns the selection probability for a specific light at a point
	GetLightProbability(lightIndex int, point core.Vec3) float64

	// GetLightCount returns the number of lights in this sampler
	GetLightCount() int
}
