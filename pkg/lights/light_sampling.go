package lights

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// CalculateLightPDF is the density of choosing direction by light sampling from point:
// the selection-weighted sum of every light's solid angle density
func CalculateLightPDF(lights []Light, lightSampler LightSampler, point, direction core.Vec3) float64 {
	totalPDF := 0.0
	for i, light := range lights {
		selection := lightSampler.GetLightProbability(i, point)
		if selection == 0 {
			continue
		}
		totalPDF += light.PDF(point, direction) * selection
	}
	return totalPDF
}

// SampleLight selects and samples a light. The returned PDF covers only the chosen light;
// use CalculateLightPDF for the density of the direction over all lights.
func SampleLight(lights []Light, lightSampler LightSampler, point core.Vec3, sampler core.Sampler) (LightSample, Light, int, bool) {
	if len(lights) == 0 {
		return LightSample{}, nil, -1, false
	}
	selectedLight, lightSelectionPdf, lightIndex := lightSampler.SampleLight(point, sampler.Get1D())
	if selectedLight == nil || lightSelectionPdf == 0 {
		return LightSample{}, nil, -1, false
	}

	sample := selectedLight.Sample(point, sampler.Get2D())
	sample.PDF *= lightSelectionPdf
	if sample.PDF <= 0 {
		return sample, selectedLight, lightIndex, false
	}

	return sample, selectedLight, lightIndex, true
}
