package lights

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// SphereLight represents a spherical area light
type SphereLight struct {
	*geometry.Sphere // Embed sphere for hit testing
}

// NewSphereLight creates a new spherical light
func NewSphereLight(sphere *geometry.Sphere) *SphereLight {
	return &SphereLight{Sphere: sphere}
}

// Sample implements the Light interface. From outside, directions are drawn uniformly from the
// cone the sphere subtends; from inside, points are drawn uniformly on the surface.
func (sl *SphereLight) Sample(point core.Vec3, sample core.Vec2) LightSample {
	toCenter := sl.Center.Subtract(point)
	distanceToCenter := toCenter.Length()

	if distanceToCenter <= sl.Radius {
		return sl.sampleUniform(point, sample)
	}

	cosThetaMax := sl.cosThetaMax(distanceToCenter)
	direction := core.SampleCone(toCenter.Multiply(1/distanceToCenter), cosThetaMax, sample)

	// Directions on the cone boundary can graze past the sphere by rounding; use the tangent point
	oc := point.Subtract(sl.Center)
	halfB := oc.Dot(direction)
	c := oc.LengthSquared() - sl.Radius*sl.Radius
	t := -halfB - math.Sqrt(math.Max(0, halfB*halfB-c))

	hitPoint := point.Add(direction.Multiply(t))
	ray := core.NewRay(point, direction)

	return LightSample{
		Point:     hitPoint,
		Normal:    hitPoint.Subtract(sl.Center).Multiply(1 / sl.Radius),
		Direction: direction,
		Distance:  t,
		Emission:  emittedAlong(sl.Sphere, ray),
		PDF:       core.UniformConePDF(cosThetaMax),
	}
}

// sampleUniform samples uniformly on the entire sphere surface, as a solid angle density
func (sl *SphereLight) sampleUniform(point core.Vec3, sample core.Vec2) LightSample {
	normal := core.SampleOnUnitSphere(sample)
	samplePoint := sl.Center.Add(normal.Multiply(sl.Radius))

	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Point: samplePoint, Normal: normal}
	}
	direction := toLight.Multiply(1 / distance)

	cosTheta := math.Abs(normal.Dot(direction))
	if cosTheta < 1e-8 {
		return LightSample{Point: samplePoint, Normal: normal, Direction: direction, Distance: distance}
	}

	return LightSample{
		Point:     samplePoint,
		Normal:    normal,
		Direction: direction,
		Distance:  distance,
		Emission:  emittedAlong(sl.Sphere, core.NewRay(point, direction)),
		PDF:       distance * distance / (cosTheta * sl.Area()),
	}
}

// PDF implements the Light interface
func (sl *SphereLight) PDF(point, direction core.Vec3) float64 {
	dir := direction.Normalize()
	hit, ok := sl.Sphere.Hit(core.NewRay(point, dir), 1e-6, math.Inf(1))
	if !ok {
		return 0
	}

	distanceToCenter := sl.Center.Subtract(point).Length()
	if distanceToCenter <= sl.Radius {
		cosTheta := math.Abs(hit.Normal.Dot(dir))
		if cosTheta < 1e-8 {
			return 0
		}
		return hit.T * hit.T / (cosTheta * sl.Area())
	}

	return core.UniformConePDF(sl.cosThetaMax(distanceToCenter))
}

// Power estimates emitted luminance from one point on the surface
func (sl *SphereLight) Power() float64 {
	ray := core.NewRay(sl.Center.Add(core.NewVec3(0, 0, 2*sl.Radius)), core.NewVec3(0, 0, -1))
	return emittedAlong(sl.Sphere, ray).Luminance() * sl.Area()
}

// Shape implements the Light interface
func (sl *SphereLight) Shape() geometry.Shape {
	return sl.Sphere
}

func (sl *SphereLight) cosThetaMax(distanceToCenter float64) float64 {
	sinThetaMax := sl.Radius / distanceToCenter
	return math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))
}
