package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// MeshSceneOptions controls the look of loaded meshes
type MeshSceneOptions struct {
	BaseColor texture.ColorSource // nil for a light gray
	NormalMap *texture.Image      // Applied to meshes that have UVs
	Metallic  float64
	Roughness float64
}

// meshFitHeight is the height loaded meshes are scaled to
const meshFitHeight = 2.0

// NewMeshScene shows loaded meshes on a floor under a sky and an area light.
// The meshes are scaled together to a common height and stood on the floor.
func NewMeshScene(settings Settings, opts MeshSceneOptions, meshes ...geometry.MeshData) (*Scene, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: no meshes to show", ErrInvalidScene)
	}

	var points []core.Vec3
	for _, m := range meshes {
		points = append(points, m.Positions...)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: meshes have no vertices", ErrInvalidScene)
	}
	bounds := core.NewAABBFromPoints(points...)
	size := bounds.Size()
	extent := max(size.X, size.Y, size.Z)
	if !(extent > 0) {
		return nil, fmt.Errorf("%w: meshes have zero extent", ErrInvalidScene)
	}

	scale := meshFitHeight / extent
	center := bounds.Center()
	place := core.Translate(core.NewVec3(0, size.Y*scale/2, 0)).
		Compose(core.Scale(core.NewVec3(scale, scale, scale))).
		Compose(core.Translate(center.Negate()))

	baseColor := opts.BaseColor
	if baseColor == nil {
		baseColor = texture.NewSolidColor(core.NewVec3(0.75, 0.75, 0.75))
	}
	mat := material.NewTexturedPrincipled(baseColor)
	mat.Metallic = opts.Metallic
	if opts.Roughness > 0 {
		mat.Roughness = opts.Roughness
	}

	b := NewBuilder("mesh").
		SetSettings(settings).
		SetCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, 1.8, 5),
			LookAt: core.NewVec3(0, meshFitHeight*0.45, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		}).
		SetEnvironment(material.NewUniformEnvironment(core.NewVec3(0.4, 0.45, 0.5)))

	b.AddQuadLight(core.NewVec3(-1, 4, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.NewVec3(8, 8, 8))
	b.AddShape(geometry.NewQuad(core.NewVec3(-10, 0, 10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, -20),
		material.NewLambertian(core.NewVec3(0.4, 0.4, 0.4))))

	for _, m := range meshes {
		meshOpts := geometry.TriangleMeshOptions{}
		if opts.NormalMap != nil && len(m.UVs) != 0 {
			meshOpts.NormalMap = opts.NormalMap
		}
		// Every triangle shares the one material
		m.MaterialIDs = nil
		b.AddTransformedMesh(m, []material.Material{mat}, meshOpts, place)
	}

	return b.Build()
}
