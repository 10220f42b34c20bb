package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// gridColor picks a linear RGB color by hue in degrees from a perceptual HCL wheel
func gridColor(hue, chroma, lightness float64) core.Vec3 {
	r, g, b := colorful.Hcl(hue, chroma, lightness).Clamped().LinearRgb()
	return core.NewVec3(r, g, b)
}

// NewMaterialsScene creates a grid of principled spheres: roughness increases along x,
// metallic along z. A checker floor and a sky gradient surround them.
func NewMaterialsScene(settings Settings) (*Scene, error) {
	sky, err := texture.NewGradientImage(2, 64, core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0))
	if err != nil {
		return nil, fmt.Errorf("sky texture: %w", err)
	}

	b := NewBuilder("materials").
		SetSettings(settings).
		SetCamera(geometry.CameraConfig{
			Center:   core.NewVec3(2.5, 4, 10),
			LookAt:   core.NewVec3(2.5, 0.5, 2.5),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     40.0,
			Aperture: 0.05,
		}).
		SetEnvironment(material.NewEnvironment(sky, 0.6))

	// Sun-like light high and to the side
	b.AddSphereLight(core.NewVec3(10, 14, 8), 2, core.NewVec3(12.0, 11.5, 10.0))

	floor := material.NewTexturedLambertian(texture.NewCheckerColors(1.0,
		core.NewVec3(0.8, 0.8, 0.8),
		core.NewVec3(0.2, 0.2, 0.25),
	))
	b.AddShape(geometry.NewQuad(core.NewVec3(-20, 0, 20), core.NewVec3(40, 0, 0), core.NewVec3(0, 0, -40), floor))

	const gridSize = 6
	const spacing = 1.0
	const radius = 0.4

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			t := float64(i) / float64(gridSize-1)
			s := float64(j) / float64(gridSize-1)

			mat := material.NewPrincipled(gridColor(float64(i*gridSize+j)*360/float64(gridSize*gridSize), 0.6, 0.65))
			mat.Roughness = 0.05 + 0.9*t
			mat.Metallic = s
			mat.Clearcoat = 0.5 * (1 - s)
			mat.ClearcoatGloss = 1 - t

			center := core.NewVec3(float64(i)*spacing, radius, float64(j)*spacing)
			b.AddShape(geometry.NewSphere(center, radius, mat))
		}
	}

	// A glass sphere and a mirror in the front row, each on a capped pedestal
	const pedestalHeight = 0.5
	pedestal := material.NewLambertian(core.NewVec3(0.7, 0.68, 0.65))
	for _, p := range []struct {
		x   float64
		mat material.Material
	}{
		{-1.2, material.NewTintedDielectric(1.5, core.NewVec3(0.9, 1.0, 0.95))},
		{6.2, material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))},
	} {
		base := core.NewVec3(p.x, 0, 5.5)
		top := core.NewVec3(p.x, pedestalHeight, 5.5)
		b.AddShape(
			geometry.NewCylinder(base, top, 0.35, pedestal),
			geometry.NewDisc(top, core.NewVec3(0, 1, 0), 0.35, pedestal),
			geometry.NewSphere(top.Add(core.NewVec3(0, 0.6, 0)), 0.6, p.mat),
		)
	}

	// Soft fill from a disc facing down over the grid
	b.AddDiscLight(core.NewVec3(2.5, 6, 2.5), core.NewVec3(0, -1, 0), 1.0, core.NewVec3(2, 2, 2.2))

	return b.Build()
}
