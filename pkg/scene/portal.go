package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// portalQuad is a 2x2.5 upright quad in object space, facing +z, with its bottom edge on y=0
func portalQuad(mat material.Material) *geometry.Quad {
	return geometry.NewQuad(core.NewVec3(-1, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2.5, 0), mat)
}

// NewPortalScene creates two linked portals. Looking through the near portal shows a hidden
// courtyard far down the x axis; a tinted side portal turns rays around.
func NewPortalScene(settings Settings) (*Scene, error) {
	b := NewBuilder("portal").
		SetSettings(settings).
		SetCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, 1.6, 7),
			LookAt: core.NewVec3(0, 1.2, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   50.0,
		}).
		SetEnvironment(material.NewUniformEnvironment(core.NewVec3(0.02, 0.02, 0.04)))

	b.AddSphereLight(core.NewVec3(0, 6, 3), 0.8, core.NewVec3(10, 10, 10))

	floor := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	b.AddShape(geometry.NewQuad(core.NewVec3(-10, 0, 10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, -20), floor))

	// Entry and exit are placed by object transforms; each carries the link to the other
	entry := core.Translate(core.NewVec3(0, 0, 0))
	exit := core.Translate(core.NewVec3(40, 0, 0))
	b.AddShape(
		geometry.NewTransformed(portalQuad(material.NewPortalBetween(entry, exit)), entry),
		geometry.NewTransformed(portalQuad(material.NewPortalBetween(exit, entry)), exit),
	)

	// Hidden courtyard behind the exit, lit by its own warm light
	courtyardFloor := material.NewLambertian(core.NewVec3(0.2, 0.5, 0.25))
	b.AddShape(geometry.NewQuad(core.NewVec3(35, 0.001, 0), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), courtyardFloor))
	b.AddSphereLight(core.NewVec3(40, 3, -4), 0.5, core.NewVec3(20, 12, 6))

	statue := material.NewPrincipled(core.NewVec3(0.9, 0.6, 0.2))
	statue.Metallic = 1
	statue.Roughness = 0.3
	b.AddShape(
		geometry.NewSphere(core.NewVec3(40, 0.7, -3), 0.7, statue),
		geometry.NewSphere(core.NewVec3(41.5, 0.4, -2), 0.4, material.NewEmissive(core.NewVec3(0.5, 2, 4))),
	)

	// Side portal: a half-turn about y sends rays back toward the viewer, dimmed
	side := material.NewPortalOffset(core.NewVec3(0, 0, 0.5), core.RotateY(math.Pi)).
		WithAttenuation(core.NewVec3(0.8, 0.8, 0.9))
	b.AddShape(geometry.NewTransformed(portalQuad(side), core.Translate(core.NewVec3(-3.5, 0, -1)).Compose(core.RotateY(0.5))))

	b.AddShape(geometry.NewBox(core.NewVec3(3, 0.5, -1), core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0, 0.4, 0),
		material.NewLambertian(core.NewVec3(0.7, 0.2, 0.2))))

	return b.Build()
}
