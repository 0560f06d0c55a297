package procedure

import (
	"fmt"

	"github.com/chazu/proctex/pkg/color"
)

// OutputNode is one named result of a procedure. It has a single input and
// passes it through, or yields its default when the input is unlinked.
type OutputNode struct {
	Base
	typ      ValueType
	defValue float64
	defColor color.RGB
}

// NewNumberOutput returns a numeric output.
func NewNumberOutput(name string, def float64) *OutputNode {
	return &OutputNode{
		Base:     NewBase(name, []Port{NumberIn(Left, name, fmt.Sprintf("(%g)", def))}, []Port{NumberOut(name)}),
		typ:      Number,
		defValue: def,
	}
}

// NewColorOutput returns a color output.
func NewColorOutput(name string, def color.RGB) *OutputNode {
	return &OutputNode{
		Base:     NewBase(name, []Port{ColorIn(Left, name, colorHint(def))}, []Port{ColorOut(name)}),
		typ:      Color,
		defColor: def,
	}
}

func colorHint(c color.RGB) string {
	switch c {
	case color.White:
		return "(White)"
	case color.Black:
		return "(Black)"
	}
	return fmt.Sprintf("(%g, %g, %g)", c.R, c.G, c.B)
}

func (o *OutputNode) Kind() string { return "output" }

// Type is the value type the output carries.
func (o *OutputNode) Type() ValueType { return o.typ }

func (o *OutputNode) Params() Params {
	p := Params{"name": o.Name(), "type": o.typ.String()}
	if o.typ == Color {
		p["default"] = []float64{o.defColor.R, o.defColor.G, o.defColor.B}
	} else {
		p["default"] = o.defValue
	}
	return p
}

func (o *OutputNode) Value(in Inputs, which int, blur float64) float64 {
	if o.typ != Number {
		return 0
	}
	if !in.Linked(0) {
		return o.defValue
	}
	return in.Value(0, blur)
}

func (o *OutputNode) Color(in Inputs, which int, blur float64) color.RGB {
	if o.typ != Color {
		return color.Black
	}
	if !in.Linked(0) {
		return o.defColor
	}
	return in.Color(0, blur)
}

// Texture output positions in a procedure built by NewTextureProcedure.
const (
	OutDiffuse = iota
	OutSpecular
	OutTransparent
	OutEmissive
	OutTransparency
	OutSpecularity
	OutShininess
	OutRoughness
	OutCloudiness
	OutBumpHeight
	OutDisplacement
)

// NewTextureProcedure returns an empty procedure with the standard
// texture outputs.
func NewTextureProcedure() *Procedure {
	return New(
		NewColorOutput("Diffuse", color.White),
		NewColorOutput("Specular", color.White),
		NewColorOutput("Transparent", color.White),
		NewColorOutput("Emissive", color.Black),
		NewNumberOutput("Transparency", 0),
		NewNumberOutput("Specularity", 0),
		NewNumberOutput("Shininess", 0),
		NewNumberOutput("Roughness", 0),
		NewNumberOutput("Cloudiness", 0),
		NewNumberOutput("BumpHeight", 0),
		NewNumberOutput("Displacement", 0),
	)
}
