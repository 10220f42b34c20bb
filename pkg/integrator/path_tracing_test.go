package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// testScene is a minimal Scene over a BVH
type testScene struct {
	bvh          *geometry.BVH
	env          *geometry.Environment
	lights       []lights.Light
	lightSampler lights.LightSampler
}

func newTestScene(shapes []geometry.Shape, sceneLights []lights.Light, env material.Material) *testScene {
	s := &testScene{
		bvh:          geometry.NewBVH(shapes),
		lights:       sceneLights,
		lightSampler: lights.NewUniformLightSampler(sceneLights),
	}
	if env != nil {
		s.env = geometry.NewEnvironment(env)
	}
	return s
}

func (s *testScene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}
func (s *testScene) Environment() *geometry.Environment { return s.env }
func (s *testScene) Lights() []lights.Light { return s.lights }
func (s *testScene) LightSampler() lights.LightSampler { return s.lightSampler }

func newTracer(t *testing.T, mutate func(*Config)) *PathTracer {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	pt, err := NewPathTracer(cfg)
	if err != nil {
		t.Fatalf("NewPathTracer: %v", err)
	}
	return pt
}

func averageRadiance(pt *PathTracer, ray core.Ray, scene Scene, samples int, seed uint64) core.Vec3 {
	sampler := core.NewSeededSampler(seed, 0x9e3779b97f4a7c15)
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(pt.Radiance(ray, scene, sampler))
	}
	return sum.Multiply(1.0 / float64(samples))
}

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

// groundPlane is a large quad in y=0
func groundPlane(mat material.Material) *geometry.Quad {
	return geometry.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, 20), mat)
}

func TestMixedPDF(t *testing.T) {
	tests := []struct {
		name       string
		heuristic  Heuristic
		pLight     float64
		lightPDF   float64
		bsdfPDF    float64
		choseLight bool
		want       float64
	}{
		{"balance chose light", HeuristicBalance, 0.5, 2, 1, true, 1.5},
		{"balance chose bsdf", HeuristicBalance, 0.5, 2, 1, false, 1.5},
		{"power chose light", HeuristicPower, 0.5, 2, 1, true, 1.25},
		{"power chose bsdf", HeuristicPower, 0.5, 2, 1, false, 2.5},
		{"power bsdf only", HeuristicPower, 0, 3, 0.8, false, 0.8},
		{"power chosen density zero", HeuristicPower, 0.5, 0, 1, true, 0},
		{"balance both zero", HeuristicBalance, 0.5, 0, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MixedPDF(tt.heuristic, tt.pLight, tt.lightPDF, tt.bsdfPDF, tt.choseLight)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MixedPDF = %v, want %v", got, tt.want)
			}
		})
	}
}

// The one-sample weights of both techniques must sum to one for the estimator to be unbiased
func TestMixedPDF_WeightsSumToOne(t *testing.T) {
	cases := [][3]float64{{0.5, 2, 1}, {0.3, 0.1, 5}, {0.9, 7, 7}, {0.5, 1e-4, 3}}
	for _, h := range []Heuristic{HeuristicBalance, HeuristicPower} {
		t.Run(h.String(), func(t *testing.T) {
			for _, c := range cases {
				p, lightPDF, bsdfPDF := c[0], c[1], c[2]
				a := p * lightPDF
				b := (1 - p) * bsdfPDF
				sum := a/MixedPDF(h, p, lightPDF, bsdfPDF, true) + b/MixedPDF(h, p, lightPDF, bsdfPDF, false)
				if math.Abs(sum-1) > 1e-9 {
					t.Errorf("weights for %v sum to %v", c, sum)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
		{"probability above one", func(c *Config) { c.LightSamplingProbability = 1.5 }, true},
		{"probability NaN", func(c *Config) { c.LightSamplingProbability = math.NaN() }, true},
		{"unknown heuristic", func(c *Config) { c.Heuristic = Heuristic(7) }, true},
		{"zero epsilon", func(c *Config) { c.RayEpsilon = 0 }, true},
		{"negative pass-through", func(c *Config) { c.MaxPassThrough = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseHeuristic(t *testing.T) {
	for _, in := range []string{"power", " Balance "} {
		h, err := ParseHeuristic(in)
		if err != nil {
			t.Fatalf("ParseHeuristic(%q): %v", in, err)
		}
		if got, _ := ParseHeuristic(h.String()); got != h {
			t.Errorf("round trip of %q gave %v", in, got)
		}
	}
	if _, err := ParseHeuristic("veach"); err == nil {
		t.Error("expected error for unknown heuristic")
	}
}

func TestPathTracer_EnvironmentOnMiss(t *testing.T) {
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))

	sky := core.NewVec3(0.2, 0.3, 0.4)
	lit := newTestScene(nil, nil, material.NewUniformEnvironment(sky))
	if got := averageRadiance(newTracer(t, nil), ray, lit, 4, 1); !vecClose(got, sky, 1e-12) {
		t.Errorf("radiance = %v, want %v", got, sky)
	}

	dark := newTestScene(nil, nil, nil)
	if got := averageRadiance(newTracer(t, nil), ray, dark, 4, 1); !got.IsZero() {
		t.Errorf("radiance without environment = %v, want zero", got)
	}
}

func TestPathTracer_DepthLimit(t *testing.T) {
	// A white-sky lit plane with no lights: cosine sampling makes every one-bounce path exactly albedo
	plane := groundPlane(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	scene := newTestScene([]geometry.Shape{plane}, nil, material.NewUniformEnvironment(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	tests := []struct {
		maxDepth int
		want     float64
	}{
		{0, 0},
		{1, 0.5},
		{4, 0.5},
	}

	for _, tt := range tests {
		pt := newTracer(t, func(c *Config) { c.MaxDepth = tt.maxDepth })
		got := averageRadiance(pt, ray, scene, 64, 3)
		if !vecClose(got, core.NewVec3(tt.want, tt.want, tt.want), 1e-9) {
			t.Errorf("MaxDepth=%d: radiance = %v, want %v", tt.maxDepth, got, tt.want)
		}
	}
}

func TestPathTracer_MirrorConsumesDepth(t *testing.T) {
	mirror := geometry.NewQuad(core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewMirror(core.NewVec3(0.8, 0.8, 0.8)))
	scene := newTestScene([]geometry.Shape{mirror}, nil, material.NewUniformEnvironment(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	if got := averageRadiance(newTracer(t, func(c *Config) { c.MaxDepth = 0 }), ray, scene, 1, 1); !got.IsZero() {
		t.Errorf("MaxDepth=0: radiance = %v, want zero", got)
	}
	want := core.NewVec3(0.8, 0.8, 0.8)
	if got := averageRadiance(newTracer(t, func(c *Config) { c.MaxDepth = 1 }), ray, scene, 1, 1); !vecClose(got, want, 1e-12) {
		t.Errorf("MaxDepth=1: radiance = %v, want %v", got, want)
	}
}

func TestPathTracer_DiscardsInvalidEmission(t *testing.T) {
	tests := []struct {
		name     string
		emission core.Vec3
	}{
		{"NaN", core.NewVec3(math.NaN(), 1, 1)},
		{"infinite", core.NewVec3(math.Inf(1), 1, 1)},
		{"negative", core.NewVec3(-1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := geometry.NewSphere(core.NewVec3(0, 0, -3), 1, material.NewEmissive(tt.emission))
			scene := newTestScene([]geometry.Shape{emitter}, nil, nil)
			got := averageRadiance(newTracer(t, nil), core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, 8, 5)
			if !got.IsZero() {
				t.Errorf("radiance = %v, want zero", got)
			}
		})
	}
}

// An emissive sphere above a diffuse plane with direct lighting only. The reflected radiance is
// albedo · Le · (R/d)² · cosθ, the irradiance of a uniformly bright sphere above the horizon.
func TestPathTracer_DirectLightingFromEmissiveSphere(t *testing.T) {
	const (
		albedo = 0.5
		le     = 4.0
		radius = 0.5
	)
	center := core.NewVec3(0, 2, 0)

	sphere := geometry.NewSphere(center, radius, material.NewEmissive(core.NewVec3(le, le, le)))
	plane := groundPlane(material.NewLambertian(core.NewVec3(albedo, albedo, albedo)))
	scene := newTestScene([]geometry.Shape{plane, sphere}, []lights.Light{lights.NewSphereLight(sphere)}, nil)

	expected := func(p core.Vec3) float64 {
		toCenter := center.Subtract(p)
		d := toCenter.Length()
		cosTheta := toCenter.Y / d
		return albedo * le * (radius / d) * (radius / d) * cosTheta
	}

	tests := []struct {
		name      string
		heuristic Heuristic
		pLight    float64
		points    []float64
		samples   int
		tolerance float64
	}{
		{"power", HeuristicPower, 0.5, []float64{0, 1, 2}, 20000, 0.05},
		{"balance", HeuristicBalance, 0.5, []float64{0, 1, 2}, 20000, 0.05},
		{"light heavy", HeuristicPower, 0.9, []float64{0, 1.5}, 20000, 0.05},
		{"bsdf only", HeuristicPower, 0, []float64{0}, 40000, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := newTracer(t, func(c *Config) {
				c.MaxDepth = 1
				c.Heuristic = tt.heuristic
				c.LightSamplingProbability = tt.pLight
			})

			for i, x := range tt.points {
				p := core.NewVec3(x, 0, 0)
				origin := p.Add(core.NewVec3(0, 0.1, 0.1))
				ray := core.NewRay(origin, p.Subtract(origin).Normalize())

				got := averageRadiance(pt, ray, scene, tt.samples, uint64(100+i))
				want := expected(p)
				if math.Abs(got.X-want) > tt.tolerance*want {
					t.Errorf("x=%v: radiance %v, want %v (±%.0f%%)", x, got.X, want, tt.tolerance*100)
				}
			}
		})
	}
}

// Behind the portal exit sits an emitter: the portal must not change the throughput
func TestPathTracer_PortalPassthrough(t *testing.T) {
	emission := core.NewVec3(1, 2, 3)
	offset := core.NewVec3(10, 0, 0)

	portalA := geometry.NewQuad(core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewPortalOffset(offset, core.Identity()))
	portalB := geometry.NewQuad(core.NewVec3(9, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewPortalOffset(offset.Negate(), core.Identity()))
	// Facing +z, toward rays leaving B
	emitter := geometry.NewQuad(core.NewVec3(9, -1, -3), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewEmissive(emission))

	scene := newTestScene([]geometry.Shape{portalA, portalB, emitter}, nil, nil)
	ray := core.NewRay(core.NewVec3(0.2, 0.1, 0), core.NewVec3(0, 0, -1))

	for _, maxDepth := range []int{1, 5} {
		pt := newTracer(t, func(c *Config) { c.MaxDepth = maxDepth })
		if got := averageRadiance(pt, ray, scene, 16, 9); !vecClose(got, emission, 1e-12) {
			t.Errorf("MaxDepth=%d: radiance = %v, want %v", maxDepth, got, emission)
		}
	}

	tinted := geometry.NewQuad(core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewPortalOffset(offset, core.Identity()).WithAttenuation(core.NewVec3(0.5, 0.5, 0.5)))
	tintedScene := newTestScene([]geometry.Shape{tinted, emitter}, nil, nil)
	if got := averageRadiance(newTracer(t, nil), ray, tintedScene, 4, 9); !vecClose(got, emission.Multiply(0.5), 1e-12) {
		t.Errorf("tinted portal radiance = %v, want %v", got, emission.Multiply(0.5))
	}
}

func TestPathTracer_PortalLoopTerminates(t *testing.T) {
	// The exit sits one unit in front of the entry, so the ray re-enters forever
	loop := geometry.NewQuad(core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		material.NewPortalOffset(core.NewVec3(0, 0, 1), core.Identity()))
	scene := newTestScene([]geometry.Shape{loop}, nil, material.NewUniformEnvironment(core.NewVec3(1, 1, 1)))

	pt := newTracer(t, func(c *Config) { c.MaxPassThrough = 8 })
	if got := averageRadiance(pt, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, 1, 1); !got.IsZero() {
		t.Errorf("radiance = %v, want zero", got)
	}
}

func TestPathTracer_TransparentCutoutIsInvisible(t *testing.T) {
	emission := core.NewVec3(0.7, 0.7, 0.7)
	quadAt := func(z float64, mat material.Material) *geometry.Quad {
		return geometry.NewQuad(core.NewVec3(-1, -1, z), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), mat)
	}
	emitter := quadAt(-3, material.NewEmissive(emission))
	ray := core.NewRay(core.NewVec3(0.3, -0.2, 0), core.NewVec3(0, 0, -1))

	t.Run("alpha zero", func(t *testing.T) {
		hole := quadAt(-1, material.NewCutout(material.NewLambertian(core.NewVec3(1, 0, 0)), texture.ConstantAlpha(0)))
		scene := newTestScene([]geometry.Shape{hole, emitter}, nil, nil)
		pt := newTracer(t, nil)
		sampler := core.NewSeededSampler(11, 13)
		for i := 0; i < 500; i++ {
			if got := pt.Radiance(ray, scene, sampler); !vecClose(got, emission, 1e-12) {
				t.Fatalf("sample %d: radiance = %v, want %v", i, got, emission)
			}
		}
	})

	t.Run("alpha one", func(t *testing.T) {
		solid := quadAt(-1, material.NewCutout(material.NewEmissive(core.NewVec3(0, 0, 1)), texture.ConstantAlpha(1)))
		scene := newTestScene([]geometry.Shape{solid, emitter}, nil, nil)
		got := averageRadiance(newTracer(t, nil), ray, scene, 100, 17)
		if !vecClose(got, core.NewVec3(0, 0, 1), 1e-12) {
			t.Errorf("radiance = %v, want the cutout's own emission", got)
		}
	})

	t.Run("stacked holes stop at cap", func(t *testing.T) {
		shapes := []geometry.Shape{emitter}
		for i := 0; i < 5; i++ {
			shapes = append(shapes, quadAt(-0.5-0.3*float64(i), material.NewCutout(material.NewLambertian(core.NewVec3(1, 1, 1)), texture.ConstantAlpha(0))))
		}
		scene := newTestScene(shapes, nil, nil)

		if got := averageRadiance(newTracer(t, func(c *Config) { c.MaxPassThrough = 2 }), ray, scene, 4, 1); !got.IsZero() {
			t.Errorf("capped radiance = %v, want zero", got)
		}
		if got := averageRadiance(newTracer(t, nil), ray, scene, 4, 1); !vecClose(got, emission, 1e-12) {
			t.Errorf("uncapped radiance = %v, want %v", got, emission)
		}
	})
}

func TestPathTracer_RussianRouletteUnbiased(t *testing.T) {
	plane := groundPlane(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	scene := newTestScene([]geometry.Shape{plane}, nil, material.NewUniformEnvironment(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	pt := newTracer(t, func(c *Config) {
		c.RussianRouletteMinBounces = 0
		c.RussianRouletteThreshold = 1
	})

	// Survivors carry 1.0, the rest 0, averaging the unbiased 0.5
	got := averageRadiance(pt, ray, scene, 20000, 21)
	if math.Abs(got.X-0.5) > 0.02 {
		t.Errorf("mean radiance with roulette = %v, want 0.5", got.X)
	}
}

func TestPathTracer_Deterministic(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5, material.NewEmissive(core.NewVec3(4, 4, 4)))
	plane := groundPlane(material.NewPrincipled(core.NewVec3(0.6, 0.5, 0.4)))
	scene := newTestScene([]geometry.Shape{plane, sphere}, []lights.Light{lights.NewSphereLight(sphere)},
		material.NewUniformEnvironment(core.NewVec3(0.1, 0.1, 0.2)))
	ray := core.NewRay(core.NewVec3(0.5, 1, 2), core.NewVec3(-0.2, -0.5, -1).Normalize())

	pt := newTracer(t, nil)
	a := averageRadiance(pt, ray, scene, 200, 77)
	b := averageRadiance(pt, ray, scene, 200, 77)
	if a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
	if !a.IsFinite() || a.X < 0 {
		t.Errorf("radiance %v is not a valid estimate", a)
	}
}
