package kernel_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/chazu/proctex/pkg/kernel"
	"github.com/chazu/proctex/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestShapeBuild(t *testing.T) {
	k := sdfx.New()
	tests := []struct {
		name   string
		shape  kernel.Shape
		inside v3.Vec
		out    v3.Vec
	}{
		{"box", kernel.Box(2, 2, 2), v3.Vec{}, v3.Vec{X: 1.5}},
		{"sphere", kernel.Sphere(1), v3.Vec{Y: 0.5}, v3.Vec{Y: 1.5}},
		{"cylinder", kernel.Cylinder(4, 1), v3.Vec{Z: 1.5}, v3.Vec{X: 1.5}},
		{"translate", kernel.Translate(kernel.Sphere(1), 5, 0, 0), v3.Vec{X: 5}, v3.Vec{}},
		{"union", kernel.Union(kernel.Sphere(1), kernel.Translate(kernel.Sphere(1), 3, 0, 0)), v3.Vec{X: 3}, v3.Vec{X: 1.5}},
		{"difference", kernel.Difference(kernel.Box(4, 4, 4), kernel.Sphere(1)), v3.Vec{X: 1.5}, v3.Vec{}},
		{"intersection", kernel.Intersection(kernel.Box(4, 4, 4), kernel.Sphere(1)), v3.Vec{}, v3.Vec{X: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.shape.Build(k)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !kernel.Inside(f, tt.inside) {
				t.Errorf("%v should be inside, distance %f", tt.inside, f.Distance(tt.inside))
			}
			if kernel.Inside(f, tt.out) {
				t.Errorf("%v should be outside, distance %f", tt.out, f.Distance(tt.out))
			}
		})
	}
}

func TestShapeBuildErrors(t *testing.T) {
	k := sdfx.New()
	bad := []kernel.Shape{
		{Op: "box", Size: []float64{1, 2}},
		{Op: "sphere"},
		{Op: "cylinder", Size: []float64{1}},
		{Op: "translate", Size: []float64{1, 2, 3}},
		{Op: "union"},
		{Op: "torus", Size: []float64{1, 2}},
		kernel.Union(kernel.Sphere(1), kernel.Shape{Op: "nope"}),
	}
	for _, s := range bad {
		if _, err := s.Build(k); !errors.Is(err, kernel.ErrBadShape) {
			t.Errorf("Build(%+v) error = %v, want ErrBadShape", s, err)
		}
	}
}

func TestShapeJSON(t *testing.T) {
	in := kernel.Difference(kernel.Box(2, 2, 2), kernel.Translate(kernel.Sphere(1), 0, 0, 1))
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out kernel.Shape
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Op != "difference" || len(out.Args) != 2 || out.Args[1].Args[0].Op != "sphere" {
		t.Errorf("decoded %+v", out)
	}
}
