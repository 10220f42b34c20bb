package integrator

import (
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Scene is the read-only view of a scene the integrator needs
type Scene interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	Environment() *geometry.Environment // nil when the scene has no environment
	Lights() []lights.Light
	LightSampler() lights.LightSampler
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Radiance estimates the radiance arriving along ray. The sampler is owned by the caller's path.
	Radiance(ray core.Ray, scene Scene, sampler core.Sampler) core.Vec3
}

// Heuristic selects how light and BSDF sampling densities are combined
type Heuristic int

const (
	HeuristicPower Heuristic = iota
	HeuristicBalance
)

func (h Heuristic) String() string {
	switch h {
	case HeuristicPower:
		return "power"
	case HeuristicBalance:
		return "balance"
	default:
		return fmt.Sprintf("Heuristic(%d)", int(h))
	}
}

// ParseHeuristic parses "power" or "balance"
func ParseHeuristic(s string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "power":
		return HeuristicPower, nil
	case "balance":
		return HeuristicBalance, nil
	default:
		return 0, fmt.Errorf("unknown heuristic %q (want power or balance)", s)
	}
}

// Config contains the path tracing parameters
type Config struct {
	MaxDepth                  int       // Maximum number of scattering events per path
	LightSamplingProbability  float64   // Chance of sampling a light instead of the BSDF at each bounce
	Heuristic                 Heuristic // How the two densities are combined
	RussianRouletteMinBounces int       // Bounces before Russian roulette may end a path
	RussianRouletteThreshold  float64   // Throughput luminance below which Russian roulette applies
	RayEpsilon                float64   // tMin for every traced ray
	MaxPassThrough            int       // Cap on cutout and portal crossings per path
}

// DefaultConfig returns the default path tracing parameters
func DefaultConfig() Config {
	return Config{
		MaxDepth:                  8,
		LightSamplingProbability:  0.5,
		Heuristic:                 HeuristicPower,
		RussianRouletteMinBounces: 3,
		RussianRouletteThreshold:  1.0,
		RayEpsilon:                0.001,
		MaxPassThrough:            64,
	}
}

// Validate reports parameter values the integrator cannot use
func (c Config) Validate() error {
	switch {
	case c.MaxDepth < 0:
		return fmt.Errorf("max depth %d must not be negative", c.MaxDepth)
	case !(c.LightSamplingProbability >= 0 && c.LightSamplingProbability <= 1):
		return fmt.Errorf("light sampling probability %v must be in [0, 1]", c.LightSamplingProbability)
	case c.Heuristic != HeuristicPower && c.Heuristic != HeuristicBalance:
		return fmt.Errorf("unknown heuristic %v", c.Heuristic)
	case c.RussianRouletteMinBounces < 0:
		return fmt.Errorf("russian roulette min bounces %d must not be negative", c.RussianRouletteMinBounces)
	case c.RussianRouletteThreshold < 0:
		return fmt.Errorf("russian roulette threshold %v must not be negative", c.RussianRouletteThreshold)
	case !(c.RayEpsilon > 0):
		return fmt.Errorf("ray epsilon %v must be positive", c.RayEpsilon)
	case c.MaxPassThrough < 0:
		return fmt.Errorf("max pass-through %d must not be negative", c.MaxPassThrough)
	}
	return nil
}
