package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// NewCutoutScene places a fence of alpha-checkered quads between the camera and a bright panel
func NewCutoutScene(settings Settings) (*Scene, error) {
	alpha, err := texture.NewAlphaCheckerImage(64, 64, 8)
	if err != nil {
		return nil, fmt.Errorf("alpha texture: %w", err)
	}

	b := NewBuilder("cutout").
		SetSettings(settings).
		SetCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, 1.5, 5),
			LookAt: core.NewVec3(0, 1, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45.0,
		}).
		SetEnvironment(material.NewUniformEnvironment(core.NewVec3(0.05, 0.05, 0.05)))

	// Back panel facing the camera: u × v points along +z
	b.AddQuadLight(core.NewVec3(-2, 0, -2), core.NewVec3(4, 0, 0), core.NewVec3(0, 3, 0), core.NewVec3(3, 3, 3))

	floor := material.NewLambertian(core.NewVec3(0.6, 0.6, 0.6))
	b.AddShape(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), floor))

	leaf := material.NewLambertian(core.NewVec3(0.2, 0.6, 0.2))
	b.AddShape(geometry.NewQuad(core.NewVec3(-1.5, 0.2, 0), core.NewVec3(3, 0, 0), core.NewVec3(0, 2, 0),
		material.NewCutout(leaf, alpha)))

	// A half-transparent red veil and a fully transparent quad that must not show at all
	veil := material.NewLambertian(core.NewVec3(0.8, 0.1, 0.1))
	b.AddShape(
		geometry.NewQuad(core.NewVec3(0.5, 0.5, 1), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
			material.NewCutout(veil, texture.ConstantAlpha(0.5))),
		geometry.NewQuad(core.NewVec3(-1.5, 0.5, 1), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
			material.NewCutout(veil, texture.ConstantAlpha(0))),
	)

	// UV test card leaning on the right, and a glowing strip seen from both sides on the left
	uv, err := texture.NewUVDebugImage(16, 16)
	if err != nil {
		return nil, fmt.Errorf("uv texture: %w", err)
	}
	card := geometry.NewTriangle(core.NewVec3(-0.6, 0, 0), core.NewVec3(0.6, 0, 0), core.NewVec3(0, 1.2, 0),
		material.NewTexturedLambertian(uv))
	b.AddShape(
		geometry.NewTranslated(geometry.NewRotated(card, core.NewVec3(0, 1, 0), -0.5), core.NewVec3(2.2, 0, 1.5)),
		geometry.NewQuad(core.NewVec3(-2.5, 0.1, 0.5), core.NewVec3(0, 0, 1.5), core.NewVec3(0, 0.1, 0),
			material.NewTwoSidedEmissive(core.NewVec3(1.5, 0.6, 0.2))),
	)

	return b.Build()
}
