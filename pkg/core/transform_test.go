package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vecClose(a, b Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestTransform_BasicMappings(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		point     Vec3
		expected  Vec3
	}{
		{"identity", Identity(), NewVec3(1, 2, 3), NewVec3(1, 2, 3)},
		{"translate", Translate(NewVec3(1, -2, 3)), NewVec3(1, 1, 1), NewVec3(2, -1, 4)},
		{"scale", Scale(NewVec3(2, 3, 4)), NewVec3(1, 1, 1), NewVec3(2, 3, 4)},
		{"rotate z 90", RotateZ(math.Pi / 2), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"rotate y 90", RotateY(math.Pi / 2), NewVec3(1, 0, 0), NewVec3(0, 0, -1)},
		{"rotate x 90", RotateX(math.Pi / 2), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"rotate axis", Rotate(NewVec3(0, 0, 2), math.Pi/2), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.transform.Point(tt.point)
			if !vecClose(got, tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			back := tt.transform.InversePoint(got)
			if !vecClose(back, tt.point, 1e-9) {
				t.Errorf("Inverse round trip: expected %v, got %v", tt.point, back)
			}
		})
	}
}

func TestTransform_TranslationDoesNotMoveVectors(t *testing.T) {
	tr := Translate(NewVec3(5, 5, 5))
	v := NewVec3(0, 1, 0)
	if got := tr.Vector(v); !vecClose(got, v, 1e-12) {
		t.Errorf("Expected direction unchanged, got %v", got)
	}
}

func TestTransform_ComposeOrder(t *testing.T) {
	T := Translate(NewVec3(10, 0, 0))
	R := RotateZ(math.Pi / 2)

	// T∘R rotates first, then translates
	tr := T.Compose(R)
	got := tr.Point(NewVec3(1, 0, 0))
	if !vecClose(got, NewVec3(10, 1, 0), 1e-9) {
		t.Errorf("Expected (10,1,0), got %v", got)
	}

	// Then is the reverse reading order
	same := R.Then(T)
	if !vecClose(same.Point(NewVec3(1, 0, 0)), got, 1e-12) {
		t.Error("Then should match Compose with swapped operands")
	}

	// Composed inverse must undo the composed forward
	back := tr.InversePoint(got)
	if !vecClose(back, NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("Expected (1,0,0) after inverse, got %v", back)
	}
}

func TestTransform_ComposeIsAssociative(t *testing.T) {
	a := Translate(NewVec3(1, 2, 3))
	b := Rotate(NewVec3(1, 1, 0), 0.7)
	c := Scale(NewVec3(2, 0.5, 1.5))
	p := NewVec3(0.3, -1.2, 2.5)

	left := a.Compose(b).Compose(c).Point(p)
	right := a.Compose(b.Compose(c)).Point(p)
	if !vecClose(left, right, 1e-9) {
		t.Errorf("Composition not associative: %v vs %v", left, right)
	}
}

func TestTransform_NonUniformScaleNormal(t *testing.T) {
	// Plane x + y = 0 has normal (1,1,0)/√2. Scaling x by 2 turns it into x/2 + y = 0,
	// whose normal is (1,2,0)/√5. Transforming the normal as a vector would give (2,1,0).
	s := Scale(NewVec3(2, 1, 1))
	n := NewVec3(1, 1, 0).Normalize()

	got := s.Normal(n)
	expected := NewVec3(1, 2, 0).Normalize()
	if !vecClose(got, expected, 1e-9) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// Transformed normal stays perpendicular to transformed tangent vectors
	tangent := NewVec3(1, -1, 0)
	if d := s.Vector(tangent).Dot(got); math.Abs(d) > 1e-9 {
		t.Errorf("Normal not perpendicular to transformed tangent: dot=%f", d)
	}
}

func TestTransform_Degenerate(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
	}{
		{"zero scale", Scale(NewVec3(1, 0, 1))},
		{"zero matrix", NewTransform(mgl64.Mat4{})},
		{"composed with degenerate", Translate(NewVec3(1, 1, 1)).Compose(Scale(NewVec3(0, 1, 1)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.transform.IsInvertible() {
				t.Error("Expected transform to be flagged as non-invertible")
			}
			if tt.transform.Inverse().IsInvertible() {
				t.Error("Inverse of a degenerate transform must stay degenerate")
			}
		})
	}

	if !Identity().IsInvertible() {
		t.Error("Identity must be invertible")
	}
}

func TestTransform_RayPreservesParameter(t *testing.T) {
	tr := Translate(NewVec3(0, 0, -5)).Compose(Scale(NewVec3(3, 3, 3)))
	world := NewRay(NewVec3(1, 2, 3), NewVec3(0.2, -0.4, 1))

	local := tr.InverseRay(world)
	for _, param := range []float64{0, 0.5, 2, 7.25} {
		expected := world.At(param)
		got := tr.Point(local.At(param))
		if !vecClose(got, expected, 1e-9) {
			t.Errorf("t=%f: expected %v, got %v", param, expected, got)
		}
	}
}

func TestTransform_BoundingBox(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	tr := Translate(NewVec3(5, 0, 0)).Compose(RotateZ(math.Pi / 4))

	got := tr.BoundingBox(box)
	half := math.Sqrt2
	if math.Abs(got.Min.X-(5-half)) > 1e-9 || math.Abs(got.Max.X-(5+half)) > 1e-9 {
		t.Errorf("Unexpected X extent: %v", got)
	}
	if math.Abs(got.Min.Z+1) > 1e-9 || math.Abs(got.Max.Z-1) > 1e-9 {
		t.Errorf("Unexpected Z extent: %v", got)
	}
}
