package texture

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidTexture is returned when texture dimensions and buffers disagree
var ErrInvalidTexture = errors.New("invalid texture")

// Filter selects how texels are reconstructed between centers
type Filter int

const (
	FilterBilinear Filter = iota
	FilterNearest
)

// Address selects how coordinates outside [0, 1) are handled
type Address int

const (
	AddressWrap Address = iota
	AddressClamp
)

// snapEpsilon absorbs float error in u*width so texel centers resolve to exactly one texel
const snapEpsilon = 1e-9

// Image is a 2D grid of linear RGB texels with an optional alpha plane.
// It is read-only after construction and safe for concurrent use.
type Image struct {
	Width   int
	Height  int
	Pixels  []core.Vec3 // Row-major: Pixels[y*Width + x], row 0 is the top of the image
	Alphas  []float64   // Optional, same layout as Pixels; nil means fully opaque
	Filter  Filter
	Address Address
}

// NewImage creates a new bilinear, wrapping image texture
func NewImage(width, height int, pixels []core.Vec3, alphas []float64) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTexture, width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d image", ErrInvalidTexture, len(pixels), width, height)
	}
	if alphas != nil && len(alphas) != width*height {
		return nil, fmt.Errorf("%w: %d alpha values for %dx%d image", ErrInvalidTexture, len(alphas), width, height)
	}

	return &Image{
		Width:   width,
		Height:  height,
		Pixels:  pixels,
		Alphas:  alphas,
		Filter:  FilterBilinear,
		Address: AddressWrap,
	}, nil
}

// WithSampling returns a copy sharing the texel buffers but using a different filter and address mode
func (t *Image) WithSampling(filter Filter, address Address) *Image {
	c := *t
	c.Filter = filter
	c.Address = address
	return &c
}

// Evaluate implements ColorSource
func (t *Image) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return t.Sample(uv)
}

// Sample returns the filtered color at uv. V=0 is the bottom of the image.
func (t *Image) Sample(uv core.Vec2) core.Vec3 {
	if t.Filter == FilterNearest {
		x, y := t.nearest(uv)
		return t.Pixels[y*t.Width+x]
	}

	x0, x1, fx := t.axis(uv.X, t.Width, false)
	y0, y1, fy := t.axis(uv.Y, t.Height, true)

	top := lerpColor(t.Pixels[y0*t.Width+x0], t.Pixels[y0*t.Width+x1], fx)
	bottom := lerpColor(t.Pixels[y1*t.Width+x0], t.Pixels[y1*t.Width+x1], fx)
	return lerpColor(top, bottom, fy)
}

// Alpha returns the filtered coverage at uv, 1 when the image has no alpha plane
func (t *Image) Alpha(uv core.Vec2) float64 {
	if t.Alphas == nil {
		return 1
	}
	if t.Filter == FilterNearest {
		x, y := t.nearest(uv)
		return t.Alphas[y*t.Width+x]
	}

	x0, x1, fx := t.axis(uv.X, t.Width, false)
	y0, y1, fy := t.axis(uv.Y, t.Height, true)

	top := lerp(t.Alphas[y0*t.Width+x0], t.Alphas[y0*t.Width+x1], fx)
	bottom := lerp(t.Alphas[y1*t.Width+x0], t.Alphas[y1*t.Width+x1], fx)
	return lerp(top, bottom, fy)
}

// axis converts one texture coordinate into the two neighbouring texel indices and the blend factor.
// flip maps v=0 to the last row.
func (t *Image) axis(coord float64, size int, flip bool) (int, int, float64) {
	coord = t.address(coord)
	if flip {
		coord = 1 - coord
	}

	// Continuous texel space: texel i covers [i, i+1) with its center at i+0.5
	c := coord*float64(size) - 0.5
	base := math.Floor(c)
	frac := c - base
	if frac < snapEpsilon {
		frac = 0
	} else if frac > 1-snapEpsilon {
		frac = 0
		base++
	}

	i0 := int(base)
	return t.index(i0, size), t.index(i0+1, size), frac
}

func (t *Image) nearest(uv core.Vec2) (int, int) {
	u := t.address(uv.X)
	v := 1 - t.address(uv.Y)
	x := t.index(int(math.Floor(u*float64(t.Width))), t.Width)
	y := t.index(int(math.Floor(v*float64(t.Height))), t.Height)
	return x, y
}

func (t *Image) address(coord float64) float64 {
	if math.IsNaN(coord) || math.IsInf(coord, 0) {
		return 0
	}
	if t.Address == AddressClamp {
		return math.Max(0, math.Min(1, coord))
	}
	return coord - math.Floor(coord)
}

func (t *Image) index(i, size int) int {
	if t.Address == AddressClamp {
		return max(0, min(size-1, i))
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

func lerp(a, b, f float64) float64 {
	if f == 0 {
		return a
	}
	return a*(1-f) + b*f
}

func lerpColor(a, b core.Vec3, f float64) core.Vec3 {
	if f == 0 {
		return a
	}
	return a.Multiply(1 - f).Add(b.Multiply(f))
}
