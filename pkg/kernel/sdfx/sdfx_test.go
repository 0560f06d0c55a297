package sdfx

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestBoxDistance(t *testing.T) {
	k := New()
	box, err := k.Box(2, 2, 2)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}

	if d := box.Distance(v3.Vec{}); d >= 0 {
		t.Errorf("center distance = %f, want negative", d)
	}
	if d := box.Distance(v3.Vec{X: 3}); math.Abs(d-2) > 1e-9 {
		t.Errorf("distance at x=3 = %f, want 2", d)
	}
}

func TestSphereDistance(t *testing.T) {
	k := New()
	s, err := k.Sphere(1)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	const tol = 1e-9
	if d := s.Distance(v3.Vec{}); math.Abs(d+1) > tol {
		t.Errorf("center distance = %f, want -1", d)
	}
	if d := s.Distance(v3.Vec{Y: 2}); math.Abs(d-1) > tol {
		t.Errorf("distance at y=2 = %f, want 1", d)
	}
}

func TestInvalidPrimitives(t *testing.T) {
	k := New()
	if _, err := k.Sphere(-1); err == nil {
		t.Error("expected error for negative sphere radius")
	}
}

func TestDifference(t *testing.T) {
	k := New()
	box, err := k.Box(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	cyl, err := k.Cylinder(20, 2)
	if err != nil {
		t.Fatal(err)
	}
	diff := k.Difference(box, cyl)

	// The axis of the cylinder is now empty space.
	if d := diff.Distance(v3.Vec{}); d <= 0 {
		t.Errorf("distance on drilled axis = %f, want positive", d)
	}
	// Material remains away from the hole.
	if d := diff.Distance(v3.Vec{X: 4, Y: 4}); d >= 0 {
		t.Errorf("distance in remaining material = %f, want negative", d)
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New()
	a, _ := k.Sphere(1)
	b, _ := k.Sphere(1)
	b = k.Translate(b, 1.5, 0, 0)

	u := k.Union(a, b)
	if d := u.Distance(v3.Vec{X: 2}); d >= 0 {
		t.Errorf("union distance at x=2 = %f, want negative", d)
	}
	i := k.Intersection(a, b)
	if d := i.Distance(v3.Vec{X: -0.5}); d <= 0 {
		t.Errorf("intersection distance at x=-0.5 = %f, want positive", d)
	}
	if d := i.Distance(v3.Vec{X: 0.75}); d >= 0 {
		t.Errorf("intersection distance at overlap = %f, want negative", d)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box, _ := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}
