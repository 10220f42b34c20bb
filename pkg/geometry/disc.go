package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Disc represents a circular disc in 3D space
type Disc struct {
	Center   core.Vec3 // Center of the disc
	Normal   core.Vec3 // Normal vector (pointing "up" from the disc)
	Radius   float64
	Material material.Material
	Right    core.Vec3 // Perpendicular to normal, u=0.5 direction
	Up       core.Vec3 // Perpendicular to normal and right
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64, material material.Material) *Disc {
	basis := core.NewONB(normal)
	return &Disc{
		Center:   center,
		Normal:   basis.W,
		Radius:   radius,
		Material: material,
		Right:    basis.U,
		Up:       basis.V,
	}
}

// Hit implements the Shape interface
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-8 || d.Radius <= 0 {
		return nil, false
	}

	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	centerToHit := hitPoint.Subtract(d.Center)
	if centerToHit.LengthSquared() > d.Radius*d.Radius {
		return nil, false
	}

	// Planar UV: the disc is inscribed in the unit square
	x := centerToHit.Dot(d.Right) / d.Radius
	y := centerToHit.Dot(d.Up) / d.Radius

	hitRecord := &material.HitRecord{
		Point:    hitPoint,
		T:        t,
		UV:       core.NewVec2(0.5+0.5*x, 0.5+0.5*y),
		Material: d.Material,
	}
	hitRecord.SetFaceNormal(ray, d.Normal)

	return hitRecord, true
}

// BoundingBox implements the Shape interface
func (d *Disc) BoundingBox() core.AABB {
	// Per-axis half extent of a disc is r·sqrt(1 - n²)
	extent := func(n float64) float64 {
		return d.Radius * math.Sqrt(math.Max(0, 1-n*n))
	}
	half := core.NewVec3(extent(d.Normal.X), extent(d.Normal.Y), extent(d.Normal.Z))
	return core.NewAABB(d.Center.Subtract(half), d.Center.Add(half)).Expand(1e-4)
}

// Area returns the surface area
func (d *Disc) Area() float64 {
	return math.Pi * d.Radius * d.Radius
}

// SampleUniform samples a random point uniformly on the disc surface
func (d *Disc) SampleUniform(sample core.Vec2) (core.Vec3, core.Vec3) {
	r := math.Sqrt(sample.X) * d.Radius
	theta := 2.0 * math.Pi * sample.Y

	point := d.Center.Add(d.Right.Multiply(r * math.Cos(theta))).Add(d.Up.Multiply(r * math.Sin(theta)))
	return point, d.Normal
}
