package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

// minSurvival bounds the Russian roulette compensation factor
const minSurvival = 0.05

// PathTracer implements unidirectional path tracing with one-sample multiple importance sampling.
// At every non-delta bounce it either samples a light or the BSDF and continues along the chosen
// direction; emission is picked up when a later ray reaches an emitter.
type PathTracer struct {
	config Config
}

// NewPathTracer creates a new path tracer. Invalid configs are rejected.
func NewPathTracer(config Config) (*PathTracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PathTracer{config: config}, nil
}

// Config returns the parameters the tracer was built with
func (pt *PathTracer) Config() Config {
	return pt.config
}

// MixedPDF is the effective density of a one-sample MIS estimator that picks light sampling with
// probability pLight. Dividing f·cos by it yields the weighted contribution of the chosen technique.
// It is zero when the chosen technique could not have produced the direction.
func MixedPDF(heuristic Heuristic, pLight, lightPDF, bsdfPDF float64, choseLight bool) float64 {
	a := pLight * lightPDF
	b := (1 - pLight) * bsdfPDF

	switch heuristic {
	case HeuristicBalance:
		return a + b
	default:
		chosen := b
		if choseLight {
			chosen = a
		}
		if chosen <= 0 {
			return 0
		}
		return (a*a + b*b) / chosen
	}
}

// Radiance traces one path starting with ray
func (pt *PathTracer) Radiance(ray core.Ray, scene Scene, sampler core.Sampler) core.Vec3 {
	cfg := pt.config
	radiance := core.Vec3{}
	throughput := core.NewVec3(1, 1, 1)

	sceneLights := scene.Lights()
	lightSampler := scene.LightSampler()
	pLight := cfg.LightSamplingProbability
	if len(sceneLights) == 0 || lightSampler == nil {
		pLight = 0
	}

	depth := 0
	passThrough := 0

	for {
		hit, isHit := scene.Hit(ray, cfg.RayEpsilon, math.Inf(1))
		if !isHit {
			radiance = radiance.Add(throughput.MultiplyVec(pt.environmentEmission(ray, scene)))
			break
		}

		// Cutout holes let the ray continue unchanged
		if cutout, ok := hit.Material.(*material.Cutout); ok && cutout.Discard(hit, sampler.Get1D()) {
			passThrough++
			if passThrough > cfg.MaxPassThrough {
				break
			}
			ray = core.NewRay(hit.Point, ray.Direction)
			continue
		}

		radiance = radiance.Add(throughput.MultiplyVec(validEmission(hit.Material.Emitted(ray, hit))))

		if depth >= cfg.MaxDepth {
			break
		}

		if hit.Material.IsDelta() {
			scatter, ok := hit.Material.Scatter(ray, hit, sampler)
			if !ok {
				break
			}
			if _, isPortal := hit.Material.(*material.Portal); isPortal {
				passThrough++
				if passThrough > cfg.MaxPassThrough {
					break
				}
			} else {
				depth++
			}
			throughput = throughput.MultiplyVec(scatter.Attenuation)
			ray = core.NewRay(scatter.Origin, scatter.Direction)
		} else {
			direction, ok := pt.sampleDirection(ray, hit, scene, sampler, pLight)
			if !ok {
				break
			}
			incoming := ray.Direction.Normalize()
			f := hit.Material.BSDF(incoming, direction.dir, hit)
			if f.IsZero() {
				break
			}

			lightPDF := 0.0
			if pLight > 0 {
				lightPDF = lights.CalculateLightPDF(sceneLights, lightSampler, hit.Point, direction.dir)
			}
			bsdfPDF := hit.Material.PDF(incoming, direction.dir, hit)

			mixed := MixedPDF(cfg.Heuristic, pLight, lightPDF, bsdfPDF, direction.fromLight)
			if !(mixed > 0) || math.IsInf(mixed, 0) {
				break
			}

			cosine := math.Abs(direction.dir.Dot(hit.ShadingNormal))
			throughput = throughput.MultiplyVec(f).Multiply(cosine / mixed)
			depth++
			ray = core.NewRay(hit.Point, direction.dir)
		}

		if !throughput.IsFinite() || throughput.IsZero() {
			break
		}

		if depth >= cfg.RussianRouletteMinBounces {
			survive, compensation := pt.applyRussianRoulette(throughput, sampler)
			if !survive {
				break
			}
			throughput = throughput.Multiply(compensation)
		}
	}

	return radiance
}

type sampledDirection struct {
	dir       core.Vec3
	fromLight bool
}

// sampleDirection picks light sampling with probability pLight, otherwise the material's own sampling
func (pt *PathTracer) sampleDirection(ray core.Ray, hit *material.HitRecord, scene Scene, sampler core.Sampler, pLight float64) (sampledDirection, bool) {
	if pLight > 0 && sampler.Get1D() < pLight {
		sample, _, _, ok := lights.SampleLight(scene.Lights(), scene.LightSampler(), hit.Point, sampler)
		if !ok {
			return sampledDirection{}, false
		}
		dir := sample.Direction.Normalize()
		if dir.IsZero() || !dir.IsFinite() {
			return sampledDirection{}, false
		}
		return sampledDirection{dir: dir, fromLight: true}, true
	}

	scatter, ok := hit.Material.Scatter(ray, hit, sampler)
	if !ok {
		return sampledDirection{}, false
	}
	dir := scatter.Direction.Normalize()
	if dir.IsZero() || !dir.IsFinite() {
		return sampledDirection{}, false
	}
	return sampledDirection{dir: dir}, true
}

// environmentEmission is the radiance arriving from infinity along ray
func (pt *PathTracer) environmentEmission(ray core.Ray, scene Scene) core.Vec3 {
	env := scene.Environment()
	if env == nil || env.Material == nil {
		return core.Vec3{}
	}
	hit, ok := env.Hit(ray, pt.config.RayEpsilon, math.Inf(1))
	if !ok {
		return core.Vec3{}
	}
	return validEmission(env.Material.Emitted(ray, hit))
}

// applyRussianRoulette returns whether the path survives and the compensation for surviving.
// Paths with throughput luminance above the threshold always survive.
func (pt *PathTracer) applyRussianRoulette(throughput core.Vec3, sampler core.Sampler) (bool, float64) {
	threshold := pt.config.RussianRouletteThreshold
	luminance := throughput.Luminance()
	if threshold <= 0 || luminance >= threshold {
		return true, 1.0
	}

	survivalProb := math.Max(minSurvival, luminance/threshold)
	if sampler.Get1D() >= survivalProb {
		return false, 0
	}
	return true, 1.0 / survivalProb
}

// validEmission drops emission that would poison the estimate
func validEmission(e core.Vec3) core.Vec3 {
	if !e.IsFinite() || e.X < 0 || e.Y < 0 || e.Z < 0 {
		return core.Vec3{}
	}
	return e
}
