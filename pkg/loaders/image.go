package loaders

import (
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// TextureOptions controls how an image file becomes a texture
type TextureOptions struct {
	Linear  bool // Texel values are already linear (normal maps, roughness maps); skip sRGB decoding
	MaxSize int  // Longest side in texels; larger images are downsized. 0 keeps the original size
	Filter  texture.Filter
	Address texture.Address
}

// LoadTexture loads an image file as a linear RGB texture with its alpha plane.
// EXIF orientation is applied, so row 0 is always the visual top of the image.
func LoadTexture(filename string, opts TextureOptions) (*texture.Image, error) {
	if opts.MaxSize < 0 {
		return nil, fmt.Errorf("texture %s: negative max size %d", filename, opts.MaxSize)
	}

	img, err := imaging.Open(filename, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", filename, err)
	}

	if opts.MaxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > opts.MaxSize || bounds.Dy() > opts.MaxSize {
			img = resize.Thumbnail(uint(opts.MaxSize), uint(opts.MaxSize), img, resize.Lanczos3)
		}
	}

	tex, err := textureFromImage(img, opts.Linear)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", filename, err)
	}
	return tex.WithSampling(opts.Filter, opts.Address), nil
}

// textureFromImage converts non-premultiplied 8-bit texels to linear floats.
// The alpha plane is dropped when every texel is opaque.
func textureFromImage(img image.Image, linear bool) (*texture.Image, error) {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pixels := make([]core.Vec3, width*height)
	alphas := make([]float64, width*height)
	opaque := true

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := nrgba.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)
			c := colorful.Color{
				R: float64(nrgba.Pix[i]) / 255.0,
				G: float64(nrgba.Pix[i+1]) / 255.0,
				B: float64(nrgba.Pix[i+2]) / 255.0,
			}
			if !linear {
				r, g, b := c.LinearRgb()
				c = colorful.Color{R: r, G: g, B: b}
			}
			pixels[y*width+x] = core.NewVec3(c.R, c.G, c.B)

			a := float64(nrgba.Pix[i+3]) / 255.0
			alphas[y*width+x] = a
			if a < 1 {
				opaque = false
			}
		}
	}

	if opaque {
		alphas = nil
	}
	return texture.NewImage(width, height, pixels, alphas)
}
