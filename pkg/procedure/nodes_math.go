package procedure

import (
	"math"
)

// NumberEqualityNode outputs 1 when Value 1 and Value 2 differ by less
// than Tolerance, else 0. It outputs 0 whenever either value is unlinked;
// the value ports' literal defaults are never compared.
type NumberEqualityNode struct {
	Base
}

// NewNumberEquality returns an equality test with the default tolerance
// of 1e-12.
func NewNumberEquality() *NumberEqualityNode {
	return &NumberEqualityNode{
		Base: NewBase("Equality",
			[]Port{
				NumberIn(Top, "Value 1", "(0)"),
				NumberIn(Bottom, "Value 2", "(0)"),
				NumberIn(Left, "Tolerance", "(1.0E-12D)"),
			},
			[]Port{NumberOut("Equal")}),
	}
}

func (n *NumberEqualityNode) Kind() string { return "number-equality" }

// RequiredInputs lists the inputs without which the output is always 0.
func (n *NumberEqualityNode) RequiredInputs() []int { return []int{0, 1} }

func (n *NumberEqualityNode) Value(in Inputs, which int, blur float64) float64 {
	if !in.Linked(0) || !in.Linked(1) {
		return 0
	}
	v1 := in.Value(0, 0)
	v2 := in.Value(1, 0)
	tol := in.Value(2, 0)
	if math.Abs(v1-v2) < tol {
		return 1
	}
	return 0
}

// InterpNode mixes Value 1 and Value 2 by Fraction, which is clamped to
// [0,1]. An input whose weight is zero is not evaluated.
type InterpNode struct {
	Base
}

// NewInterp returns an interpolation from 0 to 1 at Fraction 0.
func NewInterp() *InterpNode {
	return &InterpNode{
		Base: NewBase("Interpolate",
			[]Port{
				NumberIn(Top, "Value 1", "(0)"),
				NumberIn(Bottom, "Value 2", "(1)"),
				NumberIn(Left, "Fraction", "(0)"),
			},
			[]Port{NumberOut("Interpolate")}),
	}
}

func (n *InterpNode) Kind() string { return "interp" }

func (n *InterpNode) Value(in Inputs, which int, blur float64) float64 {
	f := math.Max(0, math.Min(1, in.Value(2, blur)))
	v1, v2 := 0.0, 1.0
	if f < 1 {
		v1 = in.Value(0, blur)
	}
	if f > 0 {
		v2 = in.Value(1, blur)
	}
	return (1-f)*v1 + f*v2
}

// BlurNode reads Input with Blur added to the requested blur. It is the
// only node that widens the footprint of what it reads.
type BlurNode struct {
	Base
}

// NewBlur returns a blur node adding 0.05 until Blur is linked.
func NewBlur() *BlurNode {
	return &BlurNode{
		Base: NewBase("Blur",
			[]Port{
				NumberIn(Bottom, "Blur", "(0.05)"),
				NumberIn(Left, "Input", "(0)"),
			},
			[]Port{NumberOut("Output")}),
	}
}

func (n *BlurNode) Kind() string { return "blur" }

// RequiredInputs lists Input, without which the output is always 0.
func (n *BlurNode) RequiredInputs() []int { return []int{1} }

func (n *BlurNode) Value(in Inputs, which int, blur float64) float64 {
	if !in.Linked(1) {
		return 0
	}
	return in.Value(1, blur+in.Value(0, blur))
}

// binaryOp is a numeric node with two inputs and one output.
type binaryOp struct {
	Base
	kind string
	fn   func(a, b float64) float64
}

func (n *binaryOp) Kind() string { return n.kind }

func (n *binaryOp) Value(in Inputs, which int, blur float64) float64 {
	return n.fn(in.Value(0, blur), in.Value(1, blur))
}

// unaryOp is a numeric node with one input and one output.
type unaryOp struct {
	Base
	kind string
	fn   func(float64) float64
}

func (n *unaryOp) Kind() string { return n.kind }

func (n *unaryOp) Value(in Inputs, which int, blur float64) float64 {
	return n.fn(in.Value(0, blur))
}

type binaryDef struct {
	name   string
	labels [2][]string
	out    string
	fn     func(a, b float64) float64
}

var binaryOps = map[string]binaryDef{
	"sum": {"+", [2][]string{{"Value 1", "(0)"}, {"Value 2", "(0)"}}, "Sum",
		func(a, b float64) float64 { return a + b }},
	"difference": {"-", [2][]string{{"Value 1", "(0)"}, {"Value 2", "(0)"}}, "Difference",
		func(a, b float64) float64 { return a - b }},
	"product": {"×", [2][]string{{"Value 1", "(0)"}, {"Value 2", "(0)"}}, "Product",
		func(a, b float64) float64 { return a * b }},
	"min": {"Min", [2][]string{{"Value 1", "(0)"}, {"Value 2", "(0)"}}, "Minimum", math.Min},
	"max": {"Max", [2][]string{{"Value 1", "(0)"}, {"Value 2", "(0)"}}, "Maximum", math.Max},
	"power": {"Pow", [2][]string{{"Base", "(1)"}, {"Exponent", "(1)"}}, "Power", Power},
}

type unaryDef struct {
	name  string
	label []string
	out   string
	fn    func(float64) float64
}

var unaryOps = map[string]unaryDef{
	"abs": {"Abs", []string{"Value", "(0)"}, "Absolute", math.Abs},
	"cos": {"Cos", []string{"Value", "(0)"}, "Cosine", math.Cos},
	"exp": {"Exp", []string{"Value", "(1)"}, "Exponential", math.Exp},
}

// NewBinary returns the two-input operator registered as kind.
func NewBinary(kind string) (Node, error) {
	d, ok := binaryOps[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return &binaryOp{
		Base: NewBase(d.name,
			[]Port{NumberIn(Top, d.labels[0]...), NumberIn(Bottom, d.labels[1]...)},
			[]Port{NumberOut(d.out)}),
		kind: kind,
		fn:   d.fn,
	}, nil
}

// NewUnary returns the one-input operator registered as kind.
func NewUnary(kind string) (Node, error) {
	d, ok := unaryOps[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return &unaryOp{
		Base: NewBase(d.name, []Port{NumberIn(Left, d.label...)}, []Port{NumberOut(d.out)}),
		kind: kind,
		fn:   d.fn,
	}, nil
}

// Power raises base to exp. Integer exponents behave as math.Pow. A
// negative base with a fractional exponent yields -(|base|^exp) rather
// than NaN.
func Power(base, exp float64) float64 {
	if base >= 0 || exp == math.Trunc(exp) {
		return math.Pow(base, exp)
	}
	return -math.Pow(-base, exp)
}
