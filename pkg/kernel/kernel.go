// Package kernel defines the abstract solid kernel used by procedural
// nodes that depend on geometry. Solids are exposed as signed distance
// fields: negative inside, zero on the surface, positive outside.
// Implementations (sdfx) live in subpackages so the rest of the system
// never imports a geometry library directly.
package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Field is an opaque handle to a solid that can be sampled by distance.
type Field interface {
	// Distance returns the signed distance from p to the surface.
	Distance(p v3.Vec) float64
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds fields. Primitives are centered on the origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Field, error)
	Sphere(radius float64) (Field, error)
	Cylinder(height, radius float64) (Field, error)

	// Boolean operations
	Union(a, b Field) Field
	Difference(a, b Field) Field
	Intersection(a, b Field) Field

	// Transforms
	Translate(f Field, x, y, z float64) Field
}

// Inside reports whether p lies inside or on the surface of f. Points
// outside the bounding box are rejected without sampling the field.
func Inside(f Field, p v3.Vec) bool {
	min, max := f.BoundingBox()
	if p.X < min[0] || p.Y < min[1] || p.Z < min[2] ||
		p.X > max[0] || p.Y > max[1] || p.Z > max[2] {
		return false
	}
	return f.Distance(p) <= 0
}
