package core

import (
	"math"
	"math/rand/v2"
)

// Sampler provides random numbers to sampling routines.
// Every path owns its own sampler; samplers are never shared between goroutines.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler backed by a PCG generator with the given seed pair
func NewSeededSampler(seed1, seed2 uint64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewPCG(seed1, seed2))}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// ONB is an orthonormal basis with W as the "up" axis
type ONB struct {
	U, V, W Vec3
}

// NewONB builds an orthonormal basis around the (unit) vector n
func NewONB(n Vec3) ONB {
	w := n.Normalize()
	var a Vec3
	if math.Abs(w.X) > 0.9 {
		a = NewVec3(0, 1, 0)
	} else {
		a = NewVec3(1, 0, 0)
	}
	v := w.Cross(a).Normalize()
	u := v.Cross(w)
	return ONB{U: u, V: v, W: w}
}

// Local converts local coordinates (x along U, y along V, z along W) to world space
func (o ONB) Local(x, y, z float64) Vec3 {
	return o.U.Multiply(x).Add(o.V.Multiply(y)).Add(o.W.Multiply(z))
}

// ToLocal projects a world vector onto the basis
func (o ONB) ToLocal(v Vec3) Vec3 {
	return NewVec3(v.Dot(o.U), v.Dot(o.V), v.Dot(o.W))
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere around normal.
// The density is cos(theta)/pi.
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	phi := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)

	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1.0-sample.Y))

	return NewONB(normal).Local(x, y, z)
}

// SampleCone samples a direction uniformly within a cone
func SampleCone(direction Vec3, cosTotalWidth float64, sample Vec2) Vec3 {
	cosTheta := 1.0 - sample.X*(1.0-cosTotalWidth)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	return NewONB(direction).Local(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// UniformConePDF is the solid angle density of SampleCone
func UniformConePDF(cosTotalWidth float64) float64 {
	return 1.0 / (2.0 * math.Pi * (1.0 - cosTotalWidth))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SamplePointInUnitDisk maps a square sample to the unit disk with the concentric mapping
func SamplePointInUnitDisk(sample Vec2) Vec3 {
	ox := 2*sample.X - 1
	oy := 2*sample.Y - 1
	if ox == 0 && oy == 0 {
		return NewVec3(0, 0, 0)
	}

	var theta, r float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}

	return NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}

// SampleGGXHalfVector samples a microfacet normal from the GGX (GTR2) distribution.
// The result is in the local frame where z is the surface normal.
func SampleGGXHalfVector(alpha float64, sample Vec2) Vec3 {
	a2 := alpha * alpha
	cosTheta := math.Sqrt((1 - sample.X) / (1 + (a2-1)*sample.X))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// GGX evaluates the GGX (GTR2) normal distribution for cos(theta_h)
func GGX(cosThetaH, alpha float64) float64 {
	if cosThetaH <= 0 {
		return 0
	}
	a2 := alpha * alpha
	t := 1 + (a2-1)*cosThetaH*cosThetaH
	return a2 / (math.Pi * t * t)
}

// SampleGTR1HalfVector samples a microfacet normal from the GTR1 (Berry) distribution used for clearcoat.
// alpha must be in (0, 1).
func SampleGTR1HalfVector(alpha float64, sample Vec2) Vec3 {
	a2 := alpha * alpha
	cosTheta := math.Sqrt(math.Max(0, (1-math.Pow(a2, 1-sample.X))/(1-a2)))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// GTR1 evaluates the GTR1 distribution for cos(theta_h)
func GTR1(cosThetaH, alpha float64) float64 {
	if cosThetaH <= 0 {
		return 0
	}
	a2 := alpha * alpha
	t := 1 + (a2-1)*cosThetaH*cosThetaH
	return (a2 - 1) / (math.Pi * math.Log(a2) * t)
}

// SmithG1GGX is the Smith masking term for GGX
func SmithG1GGX(cosTheta, alpha float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	a2 := alpha * alpha
	return 2 * cosTheta / (cosTheta + math.Sqrt(a2+(1-a2)*cosTheta*cosTheta))
}

// BalanceHeuristic computes the balance heuristic weight for MIS
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f+g == 0 {
		return 0
	}
	return f / (f + g)
}

// PowerHeuristic computes the power heuristic weight (beta = 2) for MIS
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f*f+g*g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}
