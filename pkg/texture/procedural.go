package texture

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// NewCheckerboardImage creates a checkerboard image with square checks of checkSize texels
func NewCheckerboardImage(width, height, checkSize int, color1, color2 core.Vec3) (*Image, error) {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewImage(width, height, pixels, nil)
}

// NewUVDebugImage maps U to red and V to green, sampled at texel centers
func NewUVDebugImage(width, height int) (*Image, error) {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		// Row 0 is the top of the image, where v approaches 1
		v := 1 - (float64(y)+0.5)/float64(height)
		for x := 0; x < width; x++ {
			u := (float64(x) + 0.5) / float64(width)
			pixels[y*width+x] = core.NewVec3(u, v, 0.0)
		}
	}

	return NewImage(width, height, pixels, nil)
}

// NewGradientImage creates a vertical gradient from top (row 0) to bottom
func NewGradientImage(width, height int, top, bottom core.Vec3) (*Image, error) {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		color := top.Lerp(bottom, t)
		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}

	return NewImage(width, height, pixels, nil)
}

// NewAlphaCheckerImage creates a white image whose alternate checks are fully transparent.
// Used for leaf and fence style cutouts.
func NewAlphaCheckerImage(width, height, checkSize int) (*Image, error) {
	pixels := make([]core.Vec3, width*height)
	alphas := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = core.NewVec3(1, 1, 1)
			if (x/checkSize+y/checkSize)%2 == 0 {
				alphas[y*width+x] = 1
			}
		}
	}

	img, err := NewImage(width, height, pixels, alphas)
	if err != nil {
		return nil, err
	}
	return img.WithSampling(FilterNearest, AddressWrap), nil
}
