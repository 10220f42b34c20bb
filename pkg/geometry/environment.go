package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Environment is the unbounded shape surrounding the scene. It reports a hit at the far end
// of every query so a miss can be shaded like any other surface.
type Environment struct {
	Material material.Material
}

// NewEnvironment creates the environment shape
func NewEnvironment(mat material.Material) *Environment {
	return &Environment{Material: mat}
}

// Hit always succeeds at tMax. The UV is the equirectangular coordinate of the ray direction.
func (e *Environment) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if tMax < tMin {
		return nil, false
	}
	dir := ray.Direction.Normalize()
	if dir.IsZero() || !dir.IsFinite() {
		return nil, false
	}

	point := ray.At(tMax)
	if !point.IsFinite() {
		point = dir
	}

	hit := &material.HitRecord{
		T:             tMax,
		Point:         point,
		Normal:        dir.Negate(),
		ShadingNormal: dir.Negate(),
		UV:            SphericalUV(dir),
		FrontFace:     true,
		Material:      e.Material,
	}
	return hit, true
}

// BoundingBox is infinite. The environment is never placed in a BVH.
func (e *Environment) BoundingBox() core.AABB {
	inf := math.Inf(1)
	return core.NewAABB(core.NewVec3(-inf, -inf, -inf), core.NewVec3(inf, inf, inf))
}
