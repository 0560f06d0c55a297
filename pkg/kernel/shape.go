package kernel

import (
	"errors"
	"fmt"
)

// ErrBadShape is returned by Shape.Build for malformed descriptions.
var ErrBadShape = errors.New("bad shape")

// Shape is a serializable description of a solid. It is what procedures
// persist; Build turns it into a Field using a particular kernel.
//
//	{"op": "difference", "args": [
//	    {"op": "box", "size": [2, 2, 2]},
//	    {"op": "sphere", "size": [1.2]}]}
type Shape struct {
	Op   string    `json:"op"`
	Size []float64 `json:"size,omitempty"`
	Args []Shape   `json:"args,omitempty"`
}

// Box, Sphere and Cylinder describe primitives.
func Box(x, y, z float64) Shape             { return Shape{Op: "box", Size: []float64{x, y, z}} }
func Sphere(radius float64) Shape           { return Shape{Op: "sphere", Size: []float64{radius}} }
func Cylinder(height, radius float64) Shape { return Shape{Op: "cylinder", Size: []float64{height, radius}} }

// Union, Difference and Intersection combine shapes left to right.
func Union(s ...Shape) Shape        { return Shape{Op: "union", Args: s} }
func Difference(s ...Shape) Shape   { return Shape{Op: "difference", Args: s} }
func Intersection(s ...Shape) Shape { return Shape{Op: "intersection", Args: s} }

// Translate moves s by (x, y, z).
func Translate(s Shape, x, y, z float64) Shape {
	return Shape{Op: "translate", Size: []float64{x, y, z}, Args: []Shape{s}}
}

// Build constructs the field s describes.
func (s Shape) Build(k Kernel) (Field, error) {
	switch s.Op {
	case "box":
		if len(s.Size) != 3 {
			return nil, fmt.Errorf("box needs 3 sizes, got %d: %w", len(s.Size), ErrBadShape)
		}
		return k.Box(s.Size[0], s.Size[1], s.Size[2])
	case "sphere":
		if len(s.Size) != 1 {
			return nil, fmt.Errorf("sphere needs a radius: %w", ErrBadShape)
		}
		return k.Sphere(s.Size[0])
	case "cylinder":
		if len(s.Size) != 2 {
			return nil, fmt.Errorf("cylinder needs height and radius: %w", ErrBadShape)
		}
		return k.Cylinder(s.Size[0], s.Size[1])
	case "translate":
		if len(s.Size) != 3 || len(s.Args) != 1 {
			return nil, fmt.Errorf("translate needs one shape and an offset: %w", ErrBadShape)
		}
		f, err := s.Args[0].Build(k)
		if err != nil {
			return nil, err
		}
		return k.Translate(f, s.Size[0], s.Size[1], s.Size[2]), nil
	case "union", "difference", "intersection":
		if len(s.Args) == 0 {
			return nil, fmt.Errorf("%s of nothing: %w", s.Op, ErrBadShape)
		}
		acc, err := s.Args[0].Build(k)
		if err != nil {
			return nil, err
		}
		for _, arg := range s.Args[1:] {
			f, err := arg.Build(k)
			if err != nil {
				return nil, err
			}
			switch s.Op {
			case "union":
				acc = k.Union(acc, f)
			case "difference":
				acc = k.Difference(acc, f)
			default:
				acc = k.Intersection(acc, f)
			}
		}
		return acc, nil
	}
	return nil, fmt.Errorf("op %q: %w", s.Op, ErrBadShape)
}
