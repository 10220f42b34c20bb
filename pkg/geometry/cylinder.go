package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Cylinder represents a finite cylinder shape (open-ended, no caps)
type Cylinder struct {
	BaseCenter core.Vec3
	TopCenter  core.Vec3
	Radius     float64
	Material   material.Material

	// Cached derived values
	axis   core.Vec3 // Unit vector from base to top
	height float64   // Distance between base and top
	basis  core.ONB  // Frame around the axis for UVs
}

// NewCylinder creates a new cylinder
func NewCylinder(baseCenter, topCenter core.Vec3, radius float64, mat material.Material) *Cylinder {
	axisVector := topCenter.Subtract(baseCenter)
	axis := axisVector.Normalize()

	return &Cylinder{
		BaseCenter: baseCenter,
		TopCenter:  topCenter,
		Radius:     radius,
		Material:   mat,
		axis:       axis,
		height:     axisVector.Length(),
		basis:      core.NewONB(axis),
	}
}

// BoundingBox returns the axis-aligned bounding box for this cylinder
func (c *Cylinder) BoundingBox() core.AABB {
	// The rim circles extend r·sqrt(1 - a²) along each axis
	extent := func(a float64) float64 {
		return c.Radius * math.Sqrt(math.Max(0, 1-a*a))
	}
	pad := core.NewVec3(extent(c.axis.X), extent(c.axis.Y), extent(c.axis.Z))

	return core.NewAABBFromPoints(
		c.BaseCenter.Subtract(pad), c.BaseCenter.Add(pad),
		c.TopCenter.Subtract(pad), c.TopCenter.Add(pad),
	)
}

// Hit tests if a ray intersects with the cylinder
func (c *Cylinder) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if c.height == 0 || c.Radius <= 0 {
		return nil, false
	}

	delta := ray.Origin.Subtract(c.BaseCenter)
	dv := ray.Direction.Dot(c.axis)
	deltaV := delta.Dot(c.axis)

	// Quadratic in t for the infinite cylinder around the axis
	a := ray.Direction.LengthSquared() - dv*dv
	b := 2.0 * (delta.Dot(ray.Direction) - deltaV*dv)
	cc := delta.LengthSquared() - deltaV*deltaV - c.Radius*c.Radius

	// Parallel to the axis
	if math.Abs(a) < 1e-8 {
		return nil, false
	}

	discriminant := b*b - 4*a*cc
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// The near root may be clipped by the height bounds while the far one is not
	for _, t := range [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
		if t < tMin || t > tMax {
			continue
		}
		point := ray.At(t)
		h := point.Subtract(c.BaseCenter).Dot(c.axis)
		if h < 0 || h > c.height {
			continue
		}

		axisPoint := c.BaseCenter.Add(c.axis.Multiply(h))
		outwardNormal := point.Subtract(axisPoint).Normalize()

		local := c.basis.ToLocal(outwardNormal)
		phi := math.Atan2(local.Y, local.X) + math.Pi

		hitRecord := &material.HitRecord{
			T:        t,
			Point:    point,
			UV:       core.NewVec2(phi/(2*math.Pi), h/c.height),
			Material: c.Material,
		}
		hitRecord.SetFaceNormal(ray, outwardNormal)
		return hitRecord, true
	}

	return nil, false
}
