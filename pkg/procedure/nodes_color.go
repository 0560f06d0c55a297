package procedure

import (
	"math"

	"github.com/chazu/proctex/pkg/color"
)

// RGBToHSVNode converts three numeric channels to hue, saturation and
// value outputs. Hue is normalized to [0,1).
type RGBToHSVNode struct {
	Base
}

// NewRGBToHSV returns an RGB to HSV converter with all channels at 0.
func NewRGBToHSV() *RGBToHSVNode {
	return &RGBToHSVNode{
		Base: NewBase("RGB to HSV",
			[]Port{
				NumberIn(Left, "Red", "(0)"),
				NumberIn(Left, "Green", "(0)"),
				NumberIn(Left, "Blue", "(0)"),
			},
			[]Port{NumberOut("Hue"), NumberOut("Saturation"), NumberOut("Value")}),
	}
}

func (n *RGBToHSVNode) Kind() string { return "rgb-to-hsv" }

func (n *RGBToHSVNode) Value(in Inputs, which int, blur float64) float64 {
	if which < 0 || which > 2 {
		return 0
	}
	return color.HSVComponent(in.Value(0, blur), in.Value(1, blur), in.Value(2, blur), which)
}

// HSVNode builds a color from hue (a fraction of a full turn), saturation
// and value.
type HSVNode struct {
	Base
}

// NewHSV returns an HSV color node. Unlinked inputs give white.
func NewHSV() *HSVNode {
	return &HSVNode{
		Base: NewBase("HSV",
			[]Port{
				NumberIn(Left, "Hue", "(1)"),
				NumberIn(Left, "Saturation", "(1)"),
				NumberIn(Left, "Value", "(1)"),
			},
			[]Port{ColorOut("Color")}),
	}
}

func (n *HSVNode) Kind() string { return "hsv" }

func (n *HSVNode) Color(in Inputs, which int, blur float64) color.RGB {
	hue := in.Value(0, blur)
	hue -= math.Floor(hue)
	return color.HSVToRGB(hue*360, in.Value(1, blur), in.Value(2, blur))
}

// RGBNode builds a color from three channels.
type RGBNode struct {
	Base
}

// NewRGB returns an RGB color node. Unlinked channels are 1.
func NewRGB() *RGBNode {
	return &RGBNode{
		Base: NewBase("RGB",
			[]Port{
				NumberIn(Left, "Red", "(1)"),
				NumberIn(Left, "Green", "(1)"),
				NumberIn(Left, "Blue", "(1)"),
			},
			[]Port{ColorOut("Color")}),
	}
}

func (n *RGBNode) Kind() string { return "rgb" }

func (n *RGBNode) Color(in Inputs, which int, blur float64) color.RGB {
	return color.RGB{R: in.Value(0, blur), G: in.Value(1, blur), B: in.Value(2, blur)}
}

// ColorEqualityNode outputs 1 when its two colors are exactly equal and 0
// otherwise. Both colors are sampled without blur.
type ColorEqualityNode struct {
	Base
}

// NewColorEquality compares white to black until linked, so it starts at 0.
func NewColorEquality() *ColorEqualityNode {
	return &ColorEqualityNode{
		Base: NewBase("Color Equality",
			[]Port{
				ColorIn(Top, "Color 1", "(White)"),
				ColorIn(Bottom, "Color 2", "(Black)"),
			},
			[]Port{NumberOut("Equal")}),
	}
}

func (n *ColorEqualityNode) Kind() string { return "color-equality" }

func (n *ColorEqualityNode) Value(in Inputs, which int, blur float64) float64 {
	if in.Color(0, 0).Equal(in.Color(1, 0)) {
		return 1
	}
	return 0
}

// colorOp is a color node with two inputs and one output.
type colorOp struct {
	Base
	kind string
	fn   func(a, b color.RGB) color.RGB
}

func (n *colorOp) Kind() string { return n.kind }

func (n *colorOp) Color(in Inputs, which int, blur float64) color.RGB {
	return n.fn(in.Color(0, blur), in.Color(1, blur))
}

// NewColorSum adds two colors channel by channel.
func NewColorSum() Node {
	return &colorOp{
		Base: NewBase("+",
			[]Port{ColorIn(Top, "Color 1", "(Black)"), ColorIn(Bottom, "Color 2", "(Black)")},
			[]Port{ColorOut("Sum")}),
		kind: "color-sum",
		fn:   func(a, b color.RGB) color.RGB { return a.Add(b) },
	}
}

// NewColorProduct multiplies two colors channel by channel.
func NewColorProduct() Node {
	return &colorOp{
		Base: NewBase("×",
			[]Port{ColorIn(Top, "Color 1", "(White)"), ColorIn(Bottom, "Color 2", "(White)")},
			[]Port{ColorOut("Product")}),
		kind: "color-product",
		fn:   func(a, b color.RGB) color.RGB { return a.Mul(b) },
	}
}

// NewColorDifference subtracts Color 2 from Color 1. Channels may go
// negative.
func NewColorDifference() Node {
	return &colorOp{
		Base: NewBase("-",
			[]Port{ColorIn(Top, "Color 1", "(Black)"), ColorIn(Bottom, "Color 2", "(Black)")},
			[]Port{ColorOut("Difference")}),
		kind: "color-difference",
		fn:   func(a, b color.RGB) color.RGB { return a.Sub(b) },
	}
}

// NewColorDarken passes on the darker of its colors by brightness. Ties
// go to Color 2.
func NewColorDarken() Node {
	return &colorOp{
		Base: NewBase("Darker",
			[]Port{ColorIn(Top, "Color 1", "(White)"), ColorIn(Bottom, "Color 2", "(White)")},
			[]Port{ColorOut("Darker")}),
		kind: "color-darken",
		fn: func(a, b color.RGB) color.RGB {
			if a.Brightness() < b.Brightness() {
				return a
			}
			return b
		},
	}
}

// NewColorLighten passes on the brighter of its colors. Ties go to
// Color 2.
func NewColorLighten() Node {
	return &colorOp{
		Base: NewBase("Lighter",
			[]Port{ColorIn(Top, "Color 1", "(White)"), ColorIn(Bottom, "Color 2", "(White)")},
			[]Port{ColorOut("Lighter")}),
		kind: "color-lighten",
		fn: func(a, b color.RGB) color.RGB {
			if a.Brightness() > b.Brightness() {
				return a
			}
			return b
		},
	}
}

// ColorScaleNode multiplies a color by a number.
type ColorScaleNode struct {
	Base
}

// NewColorScale returns a node scaling Color by Scale.
func NewColorScale() *ColorScaleNode {
	return &ColorScaleNode{
		Base: NewBase("×",
			[]Port{ColorIn(Top, "Color", "(White)"), NumberIn(Bottom, "Scale", "(1.0)")},
			[]Port{ColorOut("Product")}),
	}
}

func (n *ColorScaleNode) Kind() string { return "color-scale" }

func (n *ColorScaleNode) Color(in Inputs, which int, blur float64) color.RGB {
	return in.Color(0, blur).Scale(in.Value(1, blur))
}

// BlendNode interpolates from Color 1 to Color 2 by Fraction.
type BlendNode struct {
	Base
}

// NewBlend returns a black to white blend at Fraction 0.5.
func NewBlend() *BlendNode {
	return &BlendNode{
		Base: NewBase("Blend",
			[]Port{
				ColorIn(Top, "Color 1", "(Black)"),
				ColorIn(Bottom, "Color 2", "(White)"),
				NumberIn(Left, "Fraction", "(0.5)"),
			},
			[]Port{ColorOut("Blend")}),
	}
}

func (n *BlendNode) Kind() string { return "blend" }

func (n *BlendNode) Color(in Inputs, which int, blur float64) color.RGB {
	return in.Color(0, blur).Lerp(in.Color(1, blur), in.Value(2, blur))
}
