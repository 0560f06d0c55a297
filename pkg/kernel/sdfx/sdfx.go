// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/proctex/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxField wraps an sdf.SDF3 to implement kernel.Field.
type sdfxField struct {
	s sdf.SDF3
}

// Distance evaluates the underlying SDF at p.
func (f *sdfxField) Distance(p v3.Vec) float64 {
	return f.s.Evaluate(p)
}

// BoundingBox returns the axis-aligned bounding box.
func (f *sdfxField) BoundingBox() (min, max [3]float64) {
	bb := f.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3. Fields passed to this kernel
// must have been built by it.
func unwrap(f kernel.Field) sdf.SDF3 {
	return f.(*sdfxField).s
}

func wrap(s sdf.SDF3) kernel.Field {
	return &sdfxField{s: s}
}

// Box creates a box with the given dimensions, centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Field, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx box: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere of the given radius.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Field, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a Z-axis cylinder with the given height and radius.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Field, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx cylinder: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two fields.
func (k *SdfxKernel) Union(a, b kernel.Field) kernel.Field {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Field) kernel.Field {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two fields.
func (k *SdfxKernel) Intersection(a, b kernel.Field) kernel.Field {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a field by (x, y, z).
func (k *SdfxKernel) Translate(f kernel.Field, x, y, z float64) kernel.Field {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(f), m))
}
