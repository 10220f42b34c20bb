package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Transformed places a shape in the world through an affine transform.
// Rays are mapped into the shape's local space with the cached inverse, and hits are mapped back.
type Transformed struct {
	Shape     Shape
	Transform core.Transform
	bbox      core.AABB
}

// NewTransformed wraps shape with transform. Wrapping a Transformed composes the two
// transforms so the inner shape is still reached in a single step.
func NewTransformed(shape Shape, transform core.Transform) *Transformed {
	if inner, ok := shape.(*Transformed); ok {
		shape = inner.Shape
		transform = transform.Compose(inner.Transform)
	}

	t := &Transformed{Shape: shape, Transform: transform}
	if transform.IsInvertible() {
		t.bbox = transform.BoundingBox(shape.BoundingBox())
	}
	return t
}

// NewTranslated moves shape by offset
func NewTranslated(shape Shape, offset core.Vec3) *Transformed {
	return NewTransformed(shape, core.Translate(offset))
}

// NewRotated rotates shape by angle radians about axis through the origin
func NewRotated(shape Shape, axis core.Vec3, angle float64) *Transformed {
	return NewTransformed(shape, core.Rotate(axis, angle))
}

// Hit maps the ray into local space, intersects the wrapped shape and maps the hit back.
// The direction is not renormalized, so t is the same in both spaces.
func (t *Transformed) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if !t.Transform.IsInvertible() {
		return nil, false
	}

	hit, ok := t.Shape.Hit(t.Transform.InverseRay(ray), tMin, tMax)
	if !ok {
		return nil, false
	}

	// Dot products between normals and directions survive the inverse-transpose,
	// so the facing of both normals is unchanged.
	hit.Point = t.Transform.Point(hit.Point)
	hit.Normal = t.Transform.Normal(hit.Normal)
	hit.ShadingNormal = t.Transform.Normal(hit.ShadingNormal)

	if !hit.Normal.IsFinite() || hit.Normal.IsZero() {
		return nil, false
	}
	if !hit.ShadingNormal.IsFinite() || hit.ShadingNormal.IsZero() {
		hit.ShadingNormal = hit.Normal
	}

	return hit, true
}

// BoundingBox returns the box around the transformed corners of the wrapped shape's box
func (t *Transformed) BoundingBox() core.AABB {
	return t.bbox
}
