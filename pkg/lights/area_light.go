package lights

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// areaShape is a planar shape that can be sampled uniformly by area
type areaShape interface {
	geometry.Shape
	SampleUniform(sample core.Vec2) (core.Vec3, core.Vec3)
	Area() float64
}

// sampleArea samples a uniform point on shape and converts the area density to solid angle
func sampleArea(shape areaShape, point core.Vec3, sample core.Vec2) LightSample {
	samplePoint, normal := shape.SampleUniform(sample)

	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	if distance == 0 || shape.Area() == 0 {
		return LightSample{Point: samplePoint, Normal: normal}
	}
	direction := toLight.Multiply(1.0 / distance)

	// PDF_solid_angle = PDF_area * distance² / |cos(θ)|
	cosTheta := math.Abs(normal.Dot(direction))
	if cosTheta < 1e-8 {
		// Edge-on, no contribution
		return LightSample{Point: samplePoint, Normal: normal, Direction: direction, Distance: distance}
	}

	return LightSample{
		Point:     samplePoint,
		Normal:    normal,
		Direction: direction,
		Distance:  distance,
		Emission:  emittedAlong(shape, core.NewRay(point, direction)),
		PDF:       distance * distance / (cosTheta * shape.Area()),
	}
}

// areaPDF is the solid angle density of sampleArea for direction from point
func areaPDF(shape areaShape, point, direction core.Vec3) float64 {
	dir := direction.Normalize()
	hit, ok := shape.Hit(core.NewRay(point, dir), 1e-6, math.Inf(1))
	if !ok || shape.Area() == 0 {
		return 0
	}

	cosTheta := math.Abs(hit.Normal.Dot(dir))
	if cosTheta < 1e-8 {
		return 0
	}
	return hit.T * hit.T / (cosTheta * shape.Area())
}

// emittedAlong returns the radiance the ray picks up from shape, or zero on a miss
func emittedAlong(shape geometry.Shape, ray core.Ray) core.Vec3 {
	hit, ok := shape.Hit(ray, 1e-6, math.Inf(1))
	if !ok || hit.Material == nil {
		return core.Vec3{}
	}
	return hit.Material.Emitted(ray, hit)
}

// QuadLight represents a rectangular area light
type QuadLight struct {
	*geometry.Quad // Embed quad for hit testing
}

// NewQuadLight creates a new quad light. Front-facing emitters shine along U × V.
func NewQuadLight(quad *geometry.Quad) *QuadLight {
	return &QuadLight{Quad: quad}
}

// Sample implements the Light interface
func (ql *QuadLight) Sample(point core.Vec3, sample core.Vec2) LightSample {
	return sampleArea(ql.Quad, point, sample)
}

// PDF implements the Light interface
func (ql *QuadLight) PDF(point, direction core.Vec3) float64 {
	return areaPDF(ql.Quad, point, direction)
}

// Power estimates emitted luminance from the center of the front face
func (ql *QuadLight) Power() float64 {
	center := ql.Corner.Add(ql.U.Multiply(0.5)).Add(ql.V.Multiply(0.5))
	ray := core.NewRay(center.Add(ql.Normal), ql.Normal.Negate())
	return emittedAlong(ql.Quad, ray).Luminance() * ql.Area()
}

// Shape implements the Light interface
func (ql *QuadLight) Shape() geometry.Shape {
	return ql.Quad
}

// DiscLight represents a circular area light
type DiscLight struct {
	*geometry.Disc // Embed disc for hit testing
}

// NewDiscLight creates a new circular disc light
func NewDiscLight(disc *geometry.Disc) *DiscLight {
	return &DiscLight{Disc: disc}
}

// Sample implements the Light interface
func (dl *DiscLight) Sample(point core.Vec3, sample core.Vec2) LightSample {
	return sampleArea(dl.Disc, point, sample)
}

// PDF implements the Light interface
func (dl *DiscLight) PDF(point, direction core.Vec3) float64 {
	return areaPDF(dl.Disc, point, direction)
}

// Power estimates emitted luminance from the center of the front face
func (dl *DiscLight) Power() float64 {
	ray := core.NewRay(dl.Center.Add(dl.Normal), dl.Normal.Negate())
	return emittedAlong(dl.Disc, ray).Luminance() * dl.Area()
}

// Shape implements the Light interface
func (dl *DiscLight) Shape() geometry.Shape {
	return dl.Disc
}
