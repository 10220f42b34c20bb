package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

// meshSpec is a mesh waiting for Build
type meshSpec struct {
	data      geometry.MeshData
	materials []material.Material
	opts      geometry.TriangleMeshOptions
	transform *core.Transform
}

// Builder collects scene parts. Nothing is validated until Build, which reports every problem at once.
type Builder struct {
	name        string
	camera      *geometry.CameraConfig
	settings    Settings
	environment material.Material
	shapes      []geometry.Shape
	lights      []lights.Light
	meshes      []meshSpec
}

// NewBuilder starts a scene with default settings and no camera
func NewBuilder(name string) *Builder {
	return &Builder{name: name, settings: DefaultSettings()}
}

// SetCamera sets the camera; required
func (b *Builder) SetCamera(config geometry.CameraConfig) *Builder {
	b.camera = &config
	return b
}

// SetSettings replaces the render settings
func (b *Builder) SetSettings(settings Settings) *Builder {
	b.settings = settings
	return b
}

// SetEnvironment sets the material seen by rays leaving the scene; nil means black
func (b *Builder) SetEnvironment(mat material.Material) *Builder {
	b.environment = mat
	return b
}

// AddShape adds shapes to the scene
func (b *Builder) AddShape(shapes ...geometry.Shape) *Builder {
	b.shapes = append(b.shapes, shapes...)
	return b
}

// AddLight registers a light for light sampling. Its shape must also be added with AddShape.
func (b *Builder) AddLight(light lights.Light) *Builder {
	b.lights = append(b.lights, light)
	return b
}

// AddSphereLight adds an emissive sphere and registers it as a light
func (b *Builder) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3) *Builder {
	sphere := geometry.NewSphere(center, radius, material.NewEmissive(emission))
	return b.AddShape(sphere).AddLight(lights.NewSphereLight(sphere))
}

// AddQuadLight adds an emissive quad and registers it as a light. It emits toward u × v.
func (b *Builder) AddQuadLight(corner, u, v, emission core.Vec3) *Builder {
	quad := geometry.NewQuad(corner, u, v, material.NewEmissive(emission))
	return b.AddShape(quad).AddLight(lights.NewQuadLight(quad))
}

// AddDiscLight adds an emissive disc facing along normal and registers it as a light
func (b *Builder) AddDiscLight(center, normal core.Vec3, radius float64, emission core.Vec3) *Builder {
	disc := geometry.NewDisc(center, normal, radius, material.NewEmissive(emission))
	return b.AddShape(disc).AddLight(lights.NewDiscLight(disc))
}

// AddMesh adds a triangle mesh built from data at Build time
func (b *Builder) AddMesh(data geometry.MeshData, materials []material.Material, opts geometry.TriangleMeshOptions) *Builder {
	b.meshes = append(b.meshes, meshSpec{data: data, materials: materials, opts: opts})
	return b
}

// AddTransformedMesh adds a triangle mesh placed by an object-to-world transform
func (b *Builder) AddTransformedMesh(data geometry.MeshData, materials []material.Material, opts geometry.TriangleMeshOptions, transform core.Transform) *Builder {
	b.meshes = append(b.meshes, meshSpec{data: data, materials: materials, opts: opts, transform: &transform})
	return b
}

// Build validates everything and produces the immutable scene.
// All problems are joined into one error wrapping ErrInvalidScene.
func (b *Builder) Build() (*Scene, error) {
	var errs []error

	if b.camera == nil {
		errs = append(errs, errors.New("no camera set"))
	} else if err := b.camera.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}
	if err := b.settings.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("settings: %w", err))
	}

	shapes := make([]geometry.Shape, 0, len(b.shapes)+len(b.meshes))
	for i, shape := range b.shapes {
		if shape == nil {
			errs = append(errs, fmt.Errorf("shape %d is nil", i))
			continue
		}
		shapes = append(shapes, shape)
	}

	for i, spec := range b.meshes {
		mesh, err := geometry.NewTriangleMesh(spec.data, spec.materials, spec.opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %d: %w", i, err))
			continue
		}
		if spec.transform != nil {
			if !spec.transform.IsInvertible() {
				errs = append(errs, fmt.Errorf("mesh %d (%s): transform is not invertible", i, spec.data.Name))
				continue
			}
			shapes = append(shapes, geometry.NewTransformed(mesh, *spec.transform))
			continue
		}
		shapes = append(shapes, mesh)
	}

	present := make(map[geometry.Shape]bool, len(b.shapes))
	for _, shape := range b.shapes {
		if shape != nil {
			present[shape] = true
		}
	}
	for i, light := range b.lights {
		if light == nil {
			errs = append(errs, fmt.Errorf("light %d is nil", i))
			continue
		}
		if !present[light.Shape()] {
			errs = append(errs, fmt.Errorf("light %d: its shape was not added to the scene", i))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidScene, b.name, errors.Join(errs...))
	}

	s := &Scene{
		name:         b.name,
		camera:       geometry.NewCamera(*b.camera, b.settings.Width, b.settings.Height),
		settings:     b.settings,
		shapes:       shapes,
		bvh:          geometry.NewBVH(shapes),
		lights:       append([]lights.Light(nil), b.lights...),
		lightSampler: lights.NewPowerLightSampler(b.lights),
	}
	if b.environment != nil {
		s.environment = geometry.NewEnvironment(b.environment)
	}
	return s, nil
}
