package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// PixelSink receives finished linear radiance values. Encoding is the sink's concern.
type PixelSink interface {
	SetPixel(x, y int, linear core.Vec3)
}

// Framebuffer accumulates samples per pixel. Row 0 is the top of the image.
// Concurrent writers must own disjoint pixel sets.
type Framebuffer struct {
	width, height int
	pixels        []PixelStats
}

// NewFramebuffer creates an empty framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Size returns the framebuffer dimensions
func (fb *Framebuffer) Size() (int, int) {
	return fb.width, fb.height
}

// Pixel returns the statistics cell for (x, y)
func (fb *Framebuffer) Pixel(x, y int) *PixelStats {
	return &fb.pixels[y*fb.width+x]
}

// AddSample adds one radiance sample to (x, y)
func (fb *Framebuffer) AddSample(x, y int, radiance core.Vec3) {
	fb.Pixel(x, y).AddSample(radiance)
}

// Color returns the mean radiance at (x, y)
func (fb *Framebuffer) Color(x, y int) core.Vec3 {
	return fb.Pixel(x, y).GetColor()
}

// Resolve writes the mean radiance of every pixel to the sink
func (fb *Framebuffer) Resolve(sink PixelSink) {
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			sink.SetPixel(x, y, fb.Color(x, y))
		}
	}
}

// AverageLuminance returns the mean luminance over all pixels
func (fb *Framebuffer) AverageLuminance() float64 {
	if len(fb.pixels) == 0 {
		return 0
	}
	total := 0.0
	for i := range fb.pixels {
		total += fb.pixels[i].GetColor().Luminance()
	}
	return total / float64(len(fb.pixels))
}

// Stats summarizes sample counts over the whole framebuffer
func (fb *Framebuffer) Stats(targetSamples int) RenderStats {
	stats := RenderStats{
		TotalPixels: len(fb.pixels),
		MaxSamples:  targetSamples,
		MinSamples:  -1,
	}

	for i := range fb.pixels {
		count := fb.pixels[i].SampleCount
		stats.TotalSamples += count
		if stats.MinSamples < 0 || count < stats.MinSamples {
			stats.MinSamples = count
		}
		stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, count)
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	stats.MinSamples = max(stats.MinSamples, 0)
	return stats
}
