package lights

import (
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

// WeightedLightSampler implements light sampling with fixed weights.
// Weights must match the order of lights in the scene's Lights array.
type WeightedLightSampler struct {
	lights  []Light
	weights []float64
}

// NewWeightedLightSampler creates a light sampler with specified weights.
// The weights slice must have the same length as lights and is normalized to sum to 1.
func NewWeightedLightSampler(lights []Light, weights []float64) *WeightedLightSampler {
	if len(lights) != len(weights) {
		panic(fmt.Sprintf("lights length (%d) must match weights length (%d)", len(lights), len(weights)))
	}

	normalizedWeights := make([]float64, len(weights))
	totalWeight := 0.0
	for _, weight := range weights {
		if weight < 0 {
			panic("weights must be non-negative")
		}
		totalWeight += weight
	}

	for i, weight := range weights {
		if totalWeight == 0 {
			// All weights are zero, use uniform distribution
			normalizedWeights[i] = 1.0 / float64(len(weights))
		} else {
			normalizedWeights[i] = weight / totalWeight
		}
	}

	return &WeightedLightSampler{
		lights:  lights,
		weights: normalizedWeights,
	}
}

// NewUniformLightSampler creates a light sampler with equal weights for all lights
func NewUniformLightSampler(lights []Light) *WeightedLightSampler {
	return NewWeightedLightSampler(lights, make([]float64, len(lights)))
}

// NewPowerLightSampler weights each light by its estimated emitted power
func NewPowerLightSampler(lights []Light) *WeightedLightSampler {
	weights := make([]float64, len(lights))
	for i, light := range lights {
		weights[i] = max(0, light.Power())
	}
	return NewWeightedLightSampler(lights, weights)
}

// SampleLight selects a light using the fixed weights (independent of surface point)
func (wls *WeightedLightSampler) SampleLight(point core.Vec3, u float64) (Light, float64, int) {
	if len(wls.lights) == 0 {
		return nil, 0.0, -1
	}

	var cumulativeProbability float64
	for i := range wls.lights {
		cumulativeProbability += wls.weights[i]
		if u < cumulativeProbability {
			return wls.lights[i], wls.weights[i], i
		}
	}

	// Rounding can leave the cumulative sum just below 1
	lastIdx := len(wls.lights) - 1
	return wls.lights[lastIdx], wls.weights[lastIdx], lastIdx
}

// GetLightProbability returns the fixed probability for the light at the given index
func (wls *WeightedLightSampler) GetLightProbability(lightIndex int, point core.Vec3) float64 {
	if lightIndex < 0 || lightIndex >= len(wls.weights) {
		return 0.0
	}
	return wls.weights[lightIndex]
}

// GetLightCount returns the number of lights in this sampler
func (wls *WeightedLightSampler) GetLightCount() int {
	return len(wls.lights)
}

// String returns a string representation for debugging
func (wls *WeightedLightSampler) String() string {
	if len(wls.lights) == 0 {
		return "WeightedLightSampler{no lights}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WeightedLightSampler{%d lights with fixed weights:\n", len(wls.lights))
	for i, light := range wls.lights {
		fmt.Fprintf(&b, "  [%d] %T: %.1f%%\n", i, light, wls.weights[i]*100)
	}
	b.WriteString("}")
	return b.String()
}
