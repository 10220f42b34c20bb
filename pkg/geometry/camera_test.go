package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// fixedSampler returns the same value for every draw
type fixedSampler struct{ value float64 }

func (f fixedSampler) Get1D() float64   { return f.value }
func (f fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.value, f.value) }

func testCameraConfig() CameraConfig {
	return CameraConfig{
		Center: core.NewVec3(0, 0, 0),
		LookAt: core.NewVec3(0, 0, -1),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   90,
	}
}

func TestCamera_GetCameraForward(t *testing.T) {
	camera := NewCamera(testCameraConfig(), 100, 100)
	if !vecClose(camera.GetCameraForward(), core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected forward -Z, got %v", camera.GetCameraForward())
	}
}

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(testCameraConfig(), 3, 3)
	center := fixedSampler{0.5}

	tests := []struct {
		name string
		i, j int
		want core.Vec3
	}{
		// With a 90 degree fov, the 3x3 pixel centers sit at ±2/3 on the image plane at z=-1
		{"center", 1, 1, core.NewVec3(0, 0, -1)},
		{"top left", 0, 0, core.NewVec3(-2.0/3, 2.0/3, -1)},
		{"bottom right", 2, 2, core.NewVec3(2.0/3, -2.0/3, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.i, tt.j, center)
			if !vecClose(ray.Origin, core.Vec3{}, 1e-12) {
				t.Errorf("Pinhole ray should start at the camera, got %v", ray.Origin)
			}
			if !vecClose(ray.Direction, tt.want.Normalize(), 1e-9) {
				t.Errorf("Expected direction %v, got %v", tt.want.Normalize(), ray.Direction)
			}
		})
	}
}

func TestCamera_JitterStaysInPixel(t *testing.T) {
	camera := NewCamera(testCameraConfig(), 4, 2)

	// Pixel (0,0) spans x in [-2,-1] and y in [0,1] on the z=-1 plane (width 4 across a 2-high viewport)
	for _, s := range []float64{0, 0.25, 0.999} {
		ray := camera.GetRay(0, 0, fixedSampler{s})
		p := ray.Direction.Multiply(-1 / ray.Direction.Z)
		if p.X < -2-1e-9 || p.X > -1+1e-9 || p.Y < -1e-9 || p.Y > 1+1e-9 {
			t.Errorf("Jitter %f put the ray through %v, outside pixel (0,0)", s, p)
		}
	}
}

func TestCamera_DefocusConvergesOnFocusPlane(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 4
	camera := NewCamera(config, 9, 9)
	sampler := core.NewSeededSampler(1, 2)

	var focus core.Vec3
	spread := 0.0
	for k := 0; k < 50; k++ {
		ray := camera.GetRay(4, 4, sampler)
		if math.Abs(ray.Direction.Length()-1) > 1e-12 {
			t.Fatalf("Ray direction %v is not normalized", ray.Direction)
		}
		spread = math.Max(spread, ray.Origin.Length())

		// Where the ray meets the focus plane z = -4
		hit := ray.At((-4 - ray.Origin.Z) / ray.Direction.Z)
		if k == 0 {
			focus = hit
		}
		// Jitter is within one pixel of the focus plane (4 * 2 / 9 wide)
		if hit.Subtract(focus).Length() > 2*8.0/9 {
			t.Errorf("Ray %d meets the focus plane at %v, far from %v", k, hit, focus)
		}
	}

	if spread == 0 || spread > config.Aperture/2+1e-9 {
		t.Errorf("Lens origins should spread within the aperture radius, got %f", spread)
	}
}

func TestCameraConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CameraConfig)
		wantErr bool
	}{
		{"valid", func(c *CameraConfig) {}, false},
		{"look at center", func(c *CameraConfig) { c.LookAt = c.Center }, true},
		{"up parallel", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, 1) }, true},
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }, true},
		{"negative aperture", func(c *CameraConfig) { c.Aperture = -1 }, true},
		{"nan center", func(c *CameraConfig) { c.Center = core.NewVec3(math.NaN(), 0, 0) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testCameraConfig()
			tt.mutate(&config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}
