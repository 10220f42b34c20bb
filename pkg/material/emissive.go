package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// Emissive represents a light-emitting material
type Emissive struct {
	noScatter
	Emission texture.ColorSource // Emitted radiance (can be textured)
	TwoSided bool                // Emit from back faces too
}

// NewEmissive creates a new front-facing emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: texture.NewSolidColor(emission)}
}

// NewTwoSidedEmissive creates an emitter visible from both sides
func NewTwoSidedEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: texture.NewSolidColor(emission), TwoSided: true}
}

func (e *Emissive) isMaterial() {}

// Emitted returns the emission on the front face, or on both faces when two-sided
func (e *Emissive) Emitted(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	if !hit.FrontFace && !e.TwoSided {
		return core.Vec3{}
	}
	return e.Emission.Evaluate(hit.UV, hit.Point)
}

// Environment is the material of the unbounded environment shape.
// Its emission is looked up by the direction-dependent UV of the hit.
type Environment struct {
	noScatter
	Source    texture.ColorSource
	Intensity float64
}

// NewEnvironment creates an environment from any color source
func NewEnvironment(source texture.ColorSource, intensity float64) *Environment {
	return &Environment{Source: source, Intensity: intensity}
}

// NewUniformEnvironment creates a constant-colored sky
func NewUniformEnvironment(color core.Vec3) *Environment {
	return &Environment{Source: texture.NewSolidColor(color), Intensity: 1}
}

func (e *Environment) isMaterial() {}

// Emitted evaluates the source at the hit UV. The point passed to the source is the view direction.
func (e *Environment) Emitted(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	return e.Source.Evaluate(hit.UV, rayIn.Direction.Normalize()).Multiply(e.Intensity)
}
