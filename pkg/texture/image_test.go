package texture

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// 2x2 image:
//
//	row 0 (top):    red   green
//	row 1 (bottom): blue  white
func newQuadImage(t *testing.T) *Image {
	t.Helper()
	pixels := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1),
	}
	img, err := NewImage(2, 2, pixels, []float64{1, 0.5, 0.25, 0})
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	return img
}

func TestImage_ExactAtTexelCenters(t *testing.T) {
	img := newQuadImage(t)

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
		alpha    float64
	}{
		{"top left", core.NewVec2(0.25, 0.75), core.NewVec3(1, 0, 0), 1},
		{"top right", core.NewVec2(0.75, 0.75), core.NewVec3(0, 1, 0), 0.5},
		{"bottom left", core.NewVec2(0.25, 0.25), core.NewVec3(0, 0, 1), 0.25},
		{"bottom right", core.NewVec2(0.75, 0.25), core.NewVec3(1, 1, 1), 0},
	}

	for _, address := range []Address{AddressWrap, AddressClamp} {
		sampled := img.WithSampling(FilterBilinear, address)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := sampled.Sample(tt.uv); got != tt.expected {
					t.Errorf("Expected exact texel %v, got %v", tt.expected, got)
				}
				if got := sampled.Alpha(tt.uv); got != tt.alpha {
					t.Errorf("Expected exact alpha %f, got %f", tt.alpha, got)
				}
			})
		}
	}
}

func TestImage_ExactAtTexelCentersLargeImage(t *testing.T) {
	// Odd sizes make u*width land near but not exactly on x.5
	const w, h = 37, 23
	pixels := make([]core.Vec3, w*h)
	for i := range pixels {
		pixels[i] = core.NewVec3(float64(i), float64(i%7), 0)
	}
	img, err := NewImage(w, h, pixels, nil)
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			uv := core.NewVec2((float64(x)+0.5)/w, 1-(float64(y)+0.5)/h)
			if got := img.Sample(uv); got != pixels[y*w+x] {
				t.Fatalf("Texel (%d,%d): expected %v, got %v", x, y, pixels[y*w+x], got)
			}
		}
	}
}

func TestImage_BilinearMidpoint(t *testing.T) {
	img := newQuadImage(t).WithSampling(FilterBilinear, AddressClamp)

	// Exactly between all four texel centers
	got := img.Sample(core.NewVec2(0.5, 0.5))
	expected := core.NewVec3(0.5, 0.5, 0.5)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// Halfway between the two top texels
	got = img.Sample(core.NewVec2(0.5, 0.75))
	expected = core.NewVec3(0.5, 0.5, 0)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if a := img.Alpha(core.NewVec2(0.5, 0.5)); math.Abs(a-0.4375) > 1e-12 {
		t.Errorf("Expected alpha 0.4375, got %f", a)
	}
}

func TestImage_WrapVersusClamp(t *testing.T) {
	img := newQuadImage(t)

	// At the left edge of the top row, wrapping blends red with green from the other side
	wrap := img.WithSampling(FilterBilinear, AddressWrap).Sample(core.NewVec2(0, 0.75))
	if wrap.Subtract(core.NewVec3(0.5, 0.5, 0)).Length() > 1e-12 {
		t.Errorf("Wrap: expected red/green blend, got %v", wrap)
	}

	clamp := img.WithSampling(FilterBilinear, AddressClamp).Sample(core.NewVec2(0, 0.75))
	if clamp != core.NewVec3(1, 0, 0) {
		t.Errorf("Clamp: expected pure red, got %v", clamp)
	}

	// Coordinates outside [0,1) repeat under wrap
	a := img.Sample(core.NewVec2(0.25, 0.75))
	b := img.Sample(core.NewVec2(2.25, -1.25))
	if a != b {
		t.Errorf("Wrap should repeat: %v vs %v", a, b)
	}
}

func TestImage_Nearest(t *testing.T) {
	img := newQuadImage(t).WithSampling(FilterNearest, AddressWrap)

	if got := img.Sample(core.NewVec2(0.49, 0.51)); got != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected red, got %v", got)
	}
	if got := img.Sample(core.NewVec2(0.51, 0.49)); got != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected white, got %v", got)
	}
}

func TestImage_AlphaDefaultsToOpaque(t *testing.T) {
	img, err := NewImage(1, 1, []core.Vec3{core.NewVec3(0.2, 0.2, 0.2)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a := img.Alpha(core.NewVec2(0.3, 0.9)); a != 1 {
		t.Errorf("Expected opaque, got %f", a)
	}
}

func TestNewImage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		pixels int
		alphas int
	}{
		{"zero width", 0, 2, 0, -1},
		{"negative height", 2, -1, 0, -1},
		{"short pixels", 2, 2, 3, -1},
		{"alpha mismatch", 2, 2, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var alphas []float64
			if tt.alphas >= 0 {
				alphas = make([]float64, tt.alphas)
			}
			_, err := NewImage(tt.width, tt.height, make([]core.Vec3, tt.pixels), alphas)
			if !errors.Is(err, ErrInvalidTexture) {
				t.Errorf("Expected ErrInvalidTexture, got %v", err)
			}
		})
	}
}

func TestProceduralImages(t *testing.T) {
	uv, err := NewUVDebugImage(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	// UV debug texture reproduces its own coordinates at texel centers
	probe := core.NewVec2(5.5/8, 1.5/4)
	if got := uv.Sample(probe); math.Abs(got.X-probe.X) > 1e-12 || math.Abs(got.Y-probe.Y) > 1e-12 {
		t.Errorf("Expected (%f,%f), got %v", probe.X, probe.Y, got)
	}

	cutout, err := NewAlphaCheckerImage(4, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a := cutout.Alpha(core.NewVec2(0.1, 0.9)); a != 1 {
		t.Errorf("Expected opaque top-left check, got %f", a)
	}
	if a := cutout.Alpha(core.NewVec2(0.9, 0.9)); a != 0 {
		t.Errorf("Expected transparent top-right check, got %f", a)
	}
}
