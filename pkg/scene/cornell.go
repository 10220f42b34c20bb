package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box scene with quad walls and area lighting
func NewCornellScene(settings Settings) (*Scene, error) {
	b := NewBuilder("cornell").
		SetSettings(settings).
		SetCamera(geometry.CameraConfig{
			Center: core.NewVec3(278, 278, -800), // Outside the box looking in
			LookAt: core.NewVec3(278, 278, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		})

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// Standard 555 unit box
	const boxSize = 555.0

	b.AddShape(
		// Floor
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white),
		// Ceiling
		geometry.NewQuad(core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white),
		// Back wall
		geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), white),
		// Left wall at x=0
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), red),
		// Right wall at x=boxSize
		geometry.NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), green),
	)

	// Ceiling light slightly below the ceiling, facing down: u × v points along -y
	const lightSize = 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	b.AddQuadLight(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15.0, 15.0, 15.0),
	)

	// Tall principled box, turned toward the camera
	tallBox := material.NewPrincipled(core.NewVec3(0.8, 0.8, 0.8))
	tallBox.Metallic = 1.0
	tallBox.Roughness = 0.25
	b.AddShape(geometry.NewBox(
		core.NewVec3(185, 165, 351),
		core.NewVec3(82.5, 165, 82.5),
		core.NewVec3(0, 15*math.Pi/180, 0),
		tallBox,
	))

	// Glass sphere
	b.AddShape(geometry.NewSphere(core.NewVec3(370, 90, 169), 90, material.NewDielectric(1.5)))

	return b.Build()
}
