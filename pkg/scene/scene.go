package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrInvalidScene wraps every problem found by Builder.Build
var ErrInvalidScene = errors.New("invalid scene")

// Settings are the global render settings carried by a scene
type Settings struct {
	Width           int // Image width in pixels
	Height          int // Image height in pixels
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum scattering events per path
}

// DefaultSettings returns sensible default values
func DefaultSettings() Settings {
	return Settings{
		Width:           400,
		Height:          400,
		SamplesPerPixel: 64,
		MaxDepth:        8,
	}
}

// Validate reports settings that cannot be rendered
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("image size %dx%d must be positive", s.Width, s.Height)
	}
	if s.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel %d must be positive", s.SamplesPerPixel)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max depth %d must not be negative", s.MaxDepth)
	}
	return nil
}

// Scene is a validated, read-only collection of everything needed for rendering.
// It is only created by Builder.Build and is safe for concurrent use.
type Scene struct {
	name         string
	camera       *geometry.Camera
	settings     Settings
	shapes       []geometry.Shape
	bvh          *geometry.BVH
	environment  *geometry.Environment
	lights       []lights.Light
	lightSampler lights.LightSampler
}

// Name returns the name given to the builder
func (s *Scene) Name() string {
	return s.name
}

// Hit returns the closest intersection with any shape
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}

// Environment returns the environment shape, or nil for a black background
func (s *Scene) Environment() *geometry.Environment {
	return s.environment
}

// Lights returns the light-sampleable shapes. The slice must not be modified.
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// LightSampler returns the sampler choosing among Lights
func (s *Scene) LightSampler() lights.LightSampler {
	return s.lightSampler
}

// Camera returns the camera built for Settings' resolution
func (s *Scene) Camera() *geometry.Camera {
	return s.camera
}

// Settings returns the render settings
func (s *Scene) Settings() Settings {
	return s.settings
}

// Shapes returns a copy of the top-level shapes
func (s *Scene) Shapes() []geometry.Shape {
	return append([]geometry.Shape(nil), s.shapes...)
}

// BoundingBox returns the bounds of all finite geometry
func (s *Scene) BoundingBox() core.AABB {
	return s.bvh.BoundingBox()
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.shapes {
		count += countPrimitivesInShape(shape)
	}
	return count
}

// countPrimitivesInShape counts primitives in a single shape, handling complex objects
func countPrimitivesInShape(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.TriangleMesh:
		return obj.GetTriangleCount()
	case *geometry.Transformed:
		return countPrimitivesInShape(obj.Shape)
	case *geometry.Box:
		return 6
	default:
		return 1
	}
}
