package procedure

import (
	"github.com/chazu/proctex/pkg/color"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NodeID is a stable handle to a node inside a Procedure.
type NodeID int

// NoNode marks an unlinked input.
const NoNode NodeID = -1

// PointInfo describes the sample at which a procedure is evaluated.
type PointInfo struct {
	Pos       v3.Vec    // position in texture space
	Size      v3.Vec    // extent of the sample region, for antialiasing
	ViewAngle float64   // cosine of the angle to the viewer
	T         float64   // time
	Params    []float64 // per-object texture parameters
}

// Inputs is the view a node reads its inputs through during evaluation.
// Unlinked inputs yield the port's declared default.
type Inputs interface {
	// Linked reports whether input i has an upstream link.
	Linked(i int) bool
	// Value pulls input i from the output its link names.
	Value(i int, blur float64) float64
	// Color pulls input i from the output its link names.
	Color(i int, blur float64) color.RGB
	// ValueFrom pulls input i from output which of the upstream node.
	ValueFrom(i, which int, blur float64) float64
	// ColorFrom pulls input i from output which of the upstream node.
	ColorFrom(i, which int, blur float64) color.RGB
	// Point returns the sample being evaluated.
	Point() PointInfo
}

// Node is one unit of a procedure graph. Implementations must be pure:
// outputs depend only on inputs, parameters and the sample point, and a
// node must not be mutated once added to a Procedure.
type Node interface {
	// Kind is the stable registry tag, e.g. "rgb-to-hsv".
	Kind() string
	Name() string
	Inputs() []Port
	Outputs() []Port
	// Value returns the numeric output which. Color outputs return 0.
	Value(in Inputs, which int, blur float64) float64
	// Color returns the color output which. Numeric outputs return black.
	Color(in Inputs, which int, blur float64) color.RGB
	// Params returns the persisted parameters, or nil.
	Params() Params
}

// Base carries the name and ports every node has and supplies the zero
// behavior for outputs a node does not produce.
type Base struct {
	name string
	in   []Port
	out  []Port
}

// NewBase returns a Base with the given ports.
func NewBase(name string, in, out []Port) Base {
	return Base{name: name, in: in, out: out}
}

func (b *Base) Name() string    { return b.name }
func (b *Base) Inputs() []Port  { return b.in }
func (b *Base) Outputs() []Port { return b.out }
func (b *Base) Params() Params  { return nil }

func (b *Base) Value(in Inputs, which int, blur float64) float64 {
	return 0
}

func (b *Base) Color(in Inputs, which int, blur float64) color.RGB {
	return color.Black
}

// requirer is implemented by nodes whose output is meaningless unless
// certain inputs are linked.
type requirer interface {
	RequiredInputs() []int
}
