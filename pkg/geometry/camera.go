package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// CameraConfig describes a look-at camera with optional depth of field
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to the plane in focus, 0 to focus on LookAt
}

// Validate reports configurations that cannot produce rays
func (c CameraConfig) Validate() error {
	if !c.Center.IsFinite() || !c.LookAt.IsFinite() || !c.Up.IsFinite() {
		return fmt.Errorf("camera vectors must be finite")
	}
	forward := c.LookAt.Subtract(c.Center)
	if forward.IsZero() {
		return fmt.Errorf("camera center and look-at point coincide")
	}
	if forward.Cross(c.Up).IsZero() {
		return fmt.Errorf("camera up vector is parallel to the view direction")
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("camera vertical fov %v must be in (0, 180)", c.VFov)
	}
	if c.Aperture < 0 || c.FocusDistance < 0 {
		return fmt.Errorf("camera aperture and focus distance must not be negative")
	}
	return nil
}

// Camera generates primary rays for an image of a fixed size
type Camera struct {
	config      CameraConfig
	width       int
	height      int
	origin      core.Vec3
	pixel00     core.Vec3 // Center of the top-left pixel on the focus plane
	pixelDeltaU core.Vec3 // Offset to the pixel on the right
	pixelDeltaV core.Vec3 // Offset to the pixel below
	lensU       core.Vec3 // Lens disk radius along the camera right axis
	lensV       core.Vec3 // Lens disk radius along the camera up axis
	forward     core.Vec3
}

// NewCamera builds a camera for a width x height image
func NewCamera(config CameraConfig, width, height int) *Camera {
	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookAt.Subtract(config.Center).Length()
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2) * focusDistance
	viewportWidth := viewportHeight * float64(width) / float64(height)

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Multiply(-viewportHeight)
	pixelDeltaU := viewportU.Multiply(1 / float64(width))
	pixelDeltaV := viewportV.Multiply(1 / float64(height))

	upperLeft := config.Center.
		Subtract(w.Multiply(focusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))

	lensRadius := config.Aperture / 2

	return &Camera{
		config:      config,
		width:       width,
		height:      height,
		origin:      config.Center,
		pixel00:     upperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5)),
		pixelDeltaU: pixelDeltaU,
		pixelDeltaV: pixelDeltaV,
		lensU:       u.Multiply(lensRadius),
		lensV:       v.Multiply(lensRadius),
		forward:     w.Negate(),
	}
}

// GetRay returns a normalized ray through pixel (i, j), jittered inside the pixel and across the lens.
// Row j = 0 is the top of the image.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + jitter.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + jitter.Y - 0.5))

	origin := c.origin
	if c.config.Aperture > 0 {
		p := core.SamplePointInUnitDisk(sampler.Get2D())
		origin = origin.Add(c.lensU.Multiply(p.X)).Add(c.lensV.Multiply(p.Y))
	}

	return core.NewRay(origin, pixelSample.Subtract(origin).Normalize())
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.forward
}

// Size returns the image dimensions the camera was built for
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
