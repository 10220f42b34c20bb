package renderer

import (
	"image"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// TileRenderer takes the samples of individual tiles using an integrator
type TileRenderer struct {
	scene      integrator.Scene
	camera     *geometry.Camera
	integrator integrator.Integrator
	seed       uint64

	adaptiveMinSamples float64 // Fraction of the target every pixel takes before it may stop early
	adaptiveThreshold  float64 // Relative luminance error to stop at; zero disables
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(scene integrator.Scene, camera *geometry.Camera, integ integrator.Integrator, seed uint64) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		camera:     camera,
		integrator: integ,
		seed:       seed,
	}
}

// SetAdaptive enables per-pixel early stopping once the relative error drops below threshold
func (tr *TileRenderer) SetAdaptive(minSamples, threshold float64) {
	tr.adaptiveMinSamples = minSamples
	tr.adaptiveThreshold = threshold
}

// RenderTileBounds brings every pixel in bounds up to targetSamples.
// Sample k of pixel (x, y) always uses the same random stream, so results do not depend
// on how tiles are scheduled.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer, targetSamples int) RenderStats {
	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples,
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			samplesUsed := tr.samplePixel(x, y, fb.Pixel(x, y), targetSamples)
			stats.TotalSamples += samplesUsed
			stats.MinSamples = min(stats.MinSamples, samplesUsed)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats
}

func (tr *TileRenderer) samplePixel(x, y int, ps *PixelStats, maxSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		s1, s2 := SampleSeed(tr.seed, x, y, ps.SampleCount)
		sampler := core.NewSeededSampler(s1, s2)

		ray := tr.camera.GetRay(x, y, sampler)
		ps.AddSample(tr.integrator.Radiance(ray, tr.scene, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	if tr.adaptiveThreshold <= 0 {
		return false
	}

	minSamples := max(1, int(float64(maxSamples)*tr.adaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	variance := ps.Variance()

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	return math.Sqrt(variance)/mean < tr.adaptiveThreshold
}

// SampleSeed derives the random stream of one (pixel, sample) pair from the render seed
func SampleSeed(seed uint64, x, y, sample int) (uint64, uint64) {
	h := splitmix64(seed)
	h = splitmix64(h ^ uint64(x))
	h = splitmix64(h ^ uint64(y))
	h = splitmix64(h ^ uint64(sample))
	return h, splitmix64(h)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
