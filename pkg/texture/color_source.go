package texture

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	// UV is used for image textures, point for solid (3D) textures
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// AlphaSource provides coverage in [0, 1] for cutout transparency
type AlphaSource interface {
	Alpha(uv core.Vec2) float64
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// Checker is a 3D checker pattern: cells of size Scale alternate between Even and Odd
// by the parity of floor(x/scale) + floor(y/scale) + floor(z/scale).
type Checker struct {
	invScale  float64
	Even, Odd ColorSource
}

// NewChecker creates a checker alternating two sources
func NewChecker(scale float64, even, odd ColorSource) *Checker {
	return &Checker{invScale: 1.0 / scale, Even: even, Odd: odd}
}

// NewCheckerColors creates a checker alternating two solid colors
func NewCheckerColors(scale float64, even, odd core.Vec3) *Checker {
	return NewChecker(scale, NewSolidColor(even), NewSolidColor(odd))
}

// Evaluate picks the even or odd source for the cell containing point
func (c *Checker) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	x := int(math.Floor(c.invScale * point.X))
	y := int(math.Floor(c.invScale * point.Y))
	z := int(math.Floor(c.invScale * point.Z))

	if (x+y+z)%2 == 0 {
		return c.Even.Evaluate(uv, point)
	}
	return c.Odd.Evaluate(uv, point)
}

// ConstantAlpha is a uniform coverage value
type ConstantAlpha float64

// Alpha returns the constant clamped to [0, 1]
func (a ConstantAlpha) Alpha(uv core.Vec2) float64 {
	return math.Max(0, math.Min(1, float64(a)))
}
