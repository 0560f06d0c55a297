package kernel

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// planeField is the slab of the half-space z <= 0 inside its bounds.
type planeField struct{}

func (planeField) Distance(p v3.Vec) float64 { return p.Z }
func (planeField) BoundingBox() (min, max [3]float64) {
	return [3]float64{-1, -1, -1}, [3]float64{1, 1, 0}
}

func TestInside(t *testing.T) {
	tests := []struct {
		name string
		p    v3.Vec
		want bool
	}{
		{"below", v3.Vec{Z: -1}, true},
		{"on surface", v3.Vec{}, true},
		{"above", v3.Vec{Z: 0.5}, false},
		{"below the bounds", v3.Vec{Z: -5}, false},
		{"beside the bounds", v3.Vec{X: 2, Z: -0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inside(planeField{}, tt.p); got != tt.want {
				t.Errorf("Inside(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
