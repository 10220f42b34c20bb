package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateDeterminant is the smallest |det| for which a matrix is treated as invertible
const degenerateDeterminant = 1e-12

// Transform is an affine transform with its inverse and inverse-transpose cached at construction.
// A Transform is immutable; composition produces a new value with the combined pair precomputed.
type Transform struct {
	m          mgl64.Mat4
	inv        mgl64.Mat4
	invT       mgl64.Mat4
	invertible bool
}

// NewTransform wraps an explicit 4x4 matrix (column-major, mgl64 convention)
func NewTransform(m mgl64.Mat4) Transform {
	det := m.Det()
	if math.IsNaN(det) || math.Abs(det) < degenerateDeterminant {
		return Transform{m: m}
	}
	inv := m.Inv()
	return Transform{m: m, inv: inv, invT: inv.Transpose(), invertible: true}
}

// Identity returns the identity transform
func Identity() Transform {
	id := mgl64.Ident4()
	return Transform{m: id, inv: id, invT: id, invertible: true}
}

// Translate returns a translation by offset
func Translate(offset Vec3) Transform {
	return NewTransform(mgl64.Translate3D(offset.X, offset.Y, offset.Z))
}

// Scale returns a (possibly non-uniform) scale
func Scale(factors Vec3) Transform {
	return NewTransform(mgl64.Scale3D(factors.X, factors.Y, factors.Z))
}

// Rotate returns a rotation of angle radians about axis (right-handed)
func Rotate(axis Vec3, angle float64) Transform {
	a := axis.Normalize()
	if a.IsZero() {
		return Identity()
	}
	return NewTransform(mgl64.HomogRotate3D(angle, mgl64.Vec3{a.X, a.Y, a.Z}))
}

// RotateX returns a rotation about the X axis
func RotateX(angle float64) Transform { return NewTransform(mgl64.HomogRotate3DX(angle)) }

// RotateY returns a rotation about the Y axis
func RotateY(angle float64) Transform { return NewTransform(mgl64.HomogRotate3DY(angle)) }

// RotateZ returns a rotation about the Z axis
func RotateZ(angle float64) Transform { return NewTransform(mgl64.HomogRotate3DZ(angle)) }

// Compose returns t ∘ other: other is applied first, then t.
// The inverse is derived from the cached inverses, never by re-inverting the product.
func (t Transform) Compose(other Transform) Transform {
	m := t.m.Mul4(other.m)
	if !t.invertible || !other.invertible {
		return Transform{m: m}
	}
	inv := other.inv.Mul4(t.inv)
	return Transform{m: m, inv: inv, invT: inv.Transpose(), invertible: true}
}

// Then returns the transform that applies t first and next afterwards
func (t Transform) Then(next Transform) Transform {
	return next.Compose(t)
}

// Inverse returns the inverse transform. A degenerate transform stays degenerate.
func (t Transform) Inverse() Transform {
	if !t.invertible {
		return t
	}
	return Transform{m: t.inv, inv: t.m, invT: t.m.Transpose(), invertible: true}
}

// IsInvertible reports whether the transform has a usable inverse
func (t Transform) IsInvertible() bool {
	return t.invertible
}

// Matrix returns the forward matrix
func (t Transform) Matrix() mgl64.Mat4 {
	return t.m
}

// Point applies the transform to a point (w = 1)
func (t Transform) Point(p Vec3) Vec3 {
	return apply(t.m, p, 1)
}

// Vector applies the transform to a direction (w = 0)
func (t Transform) Vector(v Vec3) Vec3 {
	return apply(t.m, v, 0)
}

// Normal transforms a surface normal with the inverse-transpose and renormalizes it
func (t Transform) Normal(n Vec3) Vec3 {
	return apply(t.invT, n, 0).Normalize()
}

// InversePoint maps a point back through the inverse transform
func (t Transform) InversePoint(p Vec3) Vec3 {
	return apply(t.inv, p, 1)
}

// InverseVector maps a direction back through the inverse transform
func (t Transform) InverseVector(v Vec3) Vec3 {
	return apply(t.inv, v, 0)
}

// Ray transforms a ray. The direction is not renormalized, so ray parameters t are preserved.
func (t Transform) Ray(r Ray) Ray {
	return NewRay(t.Point(r.Origin), t.Vector(r.Direction))
}

// InverseRay maps a ray into the transform's local space, preserving ray parameters
func (t Transform) InverseRay(r Ray) Ray {
	return NewRay(t.InversePoint(r.Origin), t.InverseVector(r.Direction))
}

// BoundingBox returns the box enclosing the transformed corners of box
func (t Transform) BoundingBox(box AABB) AABB {
	corners := box.Corners()
	for i := range corners {
		corners[i] = t.Point(corners[i])
	}
	return NewAABBFromPoints(corners[:]...)
}

func apply(m mgl64.Mat4, v Vec3, w float64) Vec3 {
	r := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, w})
	return NewVec3(r[0], r[1], r[2])
}
