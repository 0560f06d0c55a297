package procedure

import (
	"fmt"

	"github.com/chazu/proctex/pkg/color"
)

// NumberNode produces a constant.
type NumberNode struct {
	Base
	value float64
}

// NewNumber returns a constant v.
func NewNumber(v float64) *NumberNode {
	return &NumberNode{
		Base:  NewBase(fmt.Sprintf("%g", v), nil, []Port{NumberOut("Value")}),
		value: v,
	}
}

func (n *NumberNode) Kind() string   { return "number" }
func (n *NumberNode) Params() Params { return Params{"value": n.value} }

func (n *NumberNode) Value(in Inputs, which int, blur float64) float64 {
	return n.value
}

// ColorNode produces a constant color.
type ColorNode struct {
	Base
	c color.RGB
}

// NewColor returns a constant c.
func NewColor(c color.RGB) *ColorNode {
	return &ColorNode{
		Base: NewBase("Color", nil, []Port{ColorOut("Color")}),
		c:    c,
	}
}

func (n *ColorNode) Kind() string { return "color" }

func (n *ColorNode) Params() Params {
	return Params{"color": []float64{n.c.R, n.c.G, n.c.B}}
}

func (n *ColorNode) Color(in Inputs, which int, blur float64) color.RGB {
	return n.c
}

// CoordinatesNode exposes the sample position and time as outputs
// X, Y, Z and T.
type CoordinatesNode struct {
	Base
}

// NewCoordinates returns a coordinates node.
func NewCoordinates() *CoordinatesNode {
	return &CoordinatesNode{
		Base: NewBase("Coordinates", nil, []Port{
			NumberOut("X"), NumberOut("Y"), NumberOut("Z"), NumberOut("Time"),
		}),
	}
}

func (n *CoordinatesNode) Kind() string { return "coordinates" }

func (n *CoordinatesNode) Value(in Inputs, which int, blur float64) float64 {
	p := in.Point()
	switch which {
	case 0:
		return p.Pos.X
	case 1:
		return p.Pos.Y
	case 2:
		return p.Pos.Z
	case 3:
		return p.T
	}
	return 0
}

// ParameterNode reads one per-object texture parameter. Samples that carry
// fewer parameters than index get the node's default.
type ParameterNode struct {
	Base
	index int
	def   float64
}

// NewParameter reads parameter index, falling back to def.
func NewParameter(index int, def float64) *ParameterNode {
	return &ParameterNode{
		Base:  NewBase(fmt.Sprintf("Parameter %d", index), nil, []Port{NumberOut("Value")}),
		index: index,
		def:   def,
	}
}

func (n *ParameterNode) Kind() string { return "parameter" }

func (n *ParameterNode) Params() Params {
	return Params{"index": n.index, "default": n.def}
}

func (n *ParameterNode) Value(in Inputs, which int, blur float64) float64 {
	params := in.Point().Params
	if n.index < 0 || n.index >= len(params) {
		return n.def
	}
	return params[n.index]
}
