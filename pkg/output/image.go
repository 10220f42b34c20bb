package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// nrgbaSink encodes linear radiance into 8-bit sRGB texels
type nrgbaSink struct {
	img *image.NRGBA
}

func (s nrgbaSink) SetPixel(x, y int, linear core.Vec3) {
	s.img.SetNRGBA(x, y, toSRGB(linear))
}

// toSRGB clamps linear radiance to [0, 1] and applies the sRGB transfer curve.
// Non-finite channels become 0.
func toSRGB(linear core.Vec3) color.NRGBA {
	c := colorful.LinearRgb(clampUnit(linear.X), clampUnit(linear.Y), clampUnit(linear.Z))
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

// ToImage resolves the framebuffer into an opaque sRGB image
func ToImage(fb *renderer.Framebuffer) *image.NRGBA {
	width, height := fb.Size()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fb.Resolve(nrgbaSink{img: img})
	return img
}

// EncodePNG writes img as PNG to w
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// WritePNG saves img to path, creating parent directories as needed
func WritePNG(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return EncodePNG(file, img)
}
