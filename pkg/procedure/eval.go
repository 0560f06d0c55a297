package procedure

import (
	"errors"

	"github.com/chazu/proctex/pkg/color"
)

// ErrDepthExceeded is reported by Evaluator.Err when a request recursed
// past Options.MaxDepth, which in practice means the graph has a cycle.
var ErrDepthExceeded = errors.New("evaluation depth limit exceeded")

// DefaultMaxDepth bounds recursion when Options.MaxDepth is unset.
const DefaultMaxDepth = 256

type source struct {
	node NodeID
	port int
}

// Snapshot is an immutable copy of a Procedure at one version. Nodes are
// shared with the procedure, which is safe because nodes never change
// after being added.
type Snapshot struct {
	version uint64
	nodes   []Node
	sources [][]source
	links   []Link
	outputs []NodeID
}

// Snapshot freezes the current graph.
func (p *Procedure) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := &Snapshot{
		version: p.version,
		nodes:   append([]Node(nil), p.nodes...),
		sources: make([][]source, len(p.nodes)),
		links:   append([]Link(nil), p.links...),
		outputs: append([]NodeID(nil), p.outputs...),
	}
	for i, n := range p.nodes {
		if n == nil {
			continue
		}
		src := make([]source, len(n.Inputs()))
		for j := range src {
			src[j] = source{node: NoNode}
		}
		s.sources[i] = src
	}
	for _, l := range p.links {
		s.sources[l.To][l.ToPort] = source{node: l.From, port: l.FromPort}
	}
	return s
}

// Version is the procedure version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// Node returns the node at id, or nil.
func (s *Snapshot) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id]
}

// NodeIDs returns the handles of all live nodes in ascending order.
func (s *Snapshot) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(s.nodes))
	for i, n := range s.nodes {
		if n != nil {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Links returns the snapshot's links. The slice must not be modified.
func (s *Snapshot) Links() []Link { return s.links }

// Outputs returns the output node handles. The slice must not be modified.
func (s *Snapshot) Outputs() []NodeID { return s.outputs }

// OutputIndex returns the position of the named output.
func (s *Snapshot) OutputIndex(name string) (int, bool) {
	for i, id := range s.outputs {
		if s.nodes[id].Name() == name {
			return i, true
		}
	}
	return -1, false
}

// Source reports which upstream output feeds input port of node id.
// The node is NoNode for unlinked inputs.
func (s *Snapshot) Source(id NodeID, port int) (NodeID, int) {
	if s.Node(id) == nil || port < 0 || port >= len(s.sources[id]) {
		return NoNode, 0
	}
	src := s.sources[id][port]
	return src.node, src.port
}

// Options tune an Evaluator.
type Options struct {
	MaxDepth   int     // recursion limit per request; 0 means DefaultMaxDepth
	ErrorValue float64 // produced by a request that trips the limit
	Memoize    bool    // cache outputs within one sample
}

type memoKey struct {
	node  NodeID
	which int
	blur  float64
}

// memoEntry remembers how many levels below the request a value needed,
// so a cached value is only reused where recomputing it would also fit
// under the depth limit.
type memoEntry[T any] struct {
	val    T
	height int
}

// Evaluator pulls values out of a snapshot for one sample at a time. An
// Evaluator is not safe for concurrent use; give each goroutine its own.
type Evaluator struct {
	snap   *Snapshot
	opts   Options
	point  PointInfo
	depth  int
	peak   int // deepest level reached by the request in progress
	err    error
	values map[memoKey]memoEntry[float64]
	colors map[memoKey]memoEntry[color.RGB]
}

// NewEvaluator returns an evaluator over s.
func (s *Snapshot) NewEvaluator(opts Options) *Evaluator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	e := &Evaluator{snap: s, opts: opts}
	if opts.Memoize {
		e.values = make(map[memoKey]memoEntry[float64])
		e.colors = make(map[memoKey]memoEntry[color.RGB])
	}
	return e
}

// Snapshot returns the snapshot being evaluated.
func (e *Evaluator) Snapshot() *Snapshot { return e.snap }

// Init starts a new sample. It clears the memo and any recorded error.
func (e *Evaluator) Init(p PointInfo) {
	e.point = p
	e.depth = 0
	e.peak = 0
	e.err = nil
	if e.opts.Memoize {
		clear(e.values)
		clear(e.colors)
	}
}

// Point returns the current sample.
func (e *Evaluator) Point() PointInfo { return e.point }

// Err returns ErrDepthExceeded if any request since Init tripped the
// depth limit.
func (e *Evaluator) Err() error { return e.err }

// Value evaluates numeric output which of node id. Missing nodes yield 0.
func (e *Evaluator) Value(id NodeID, which int, blur float64) float64 {
	n := e.snap.Node(id)
	if n == nil {
		return 0
	}
	return pull(e, e.values, memoKey{id, which, blur}, e.opts.ErrorValue, func() float64 {
		return n.Value(view{e, id}, which, blur)
	})
}

// Color evaluates color output which of node id. Missing nodes yield black.
func (e *Evaluator) Color(id NodeID, which int, blur float64) color.RGB {
	n := e.snap.Node(id)
	if n == nil {
		return color.Black
	}
	v := e.opts.ErrorValue
	return pull(e, e.colors, memoKey{id, which, blur}, color.RGB{R: v, G: v, B: v}, func() color.RGB {
		return n.Color(view{e, id}, which, blur)
	})
}

// pull runs one request one level below the current depth. A memo hit is
// used only when its recorded height fits under the limit from here, so
// cached and uncached evaluation trip the limit on the same paths.
func pull[T any](e *Evaluator, memo map[memoKey]memoEntry[T], key memoKey, limit T, compute func() T) T {
	if memo != nil {
		if m, ok := memo[key]; ok && e.depth+m.height <= e.opts.MaxDepth {
			e.peak = max(e.peak, e.depth+m.height)
			return m.val
		}
	}
	if e.depth >= e.opts.MaxDepth {
		e.err = ErrDepthExceeded
		return limit
	}
	start, outer := e.depth, e.peak
	e.depth++
	e.peak = e.depth
	v := compute()
	e.depth--
	height := e.peak - start
	e.peak = max(outer, e.peak)
	// Values computed under a tripped limit depend on the path taken, so
	// they are never cached.
	if memo != nil && e.err == nil {
		memo[key] = memoEntry[T]{val: v, height: height}
	}
	return v
}

// OutputValue evaluates the i-th output node as a number.
func (e *Evaluator) OutputValue(i int, blur float64) float64 {
	if i < 0 || i >= len(e.snap.outputs) {
		return 0
	}
	return e.Value(e.snap.outputs[i], 0, blur)
}

// OutputColor evaluates the i-th output node as a color.
func (e *Evaluator) OutputColor(i int, blur float64) color.RGB {
	if i < 0 || i >= len(e.snap.outputs) {
		return color.Black
	}
	return e.Color(e.snap.outputs[i], 0, blur)
}

// view is the Inputs a node sees while the evaluator runs it.
type view struct {
	e  *Evaluator
	id NodeID
}

func (v view) source(i int) (source, Port, bool) {
	ins := v.e.snap.nodes[v.id].Inputs()
	if i < 0 || i >= len(ins) {
		return source{node: NoNode}, Port{}, false
	}
	return v.e.snap.sources[v.id][i], ins[i], true
}

func (v view) Linked(i int) bool {
	src, _, ok := v.source(i)
	return ok && src.node != NoNode
}

func (v view) Value(i int, blur float64) float64 {
	src, port, ok := v.source(i)
	if !ok {
		return 0
	}
	return v.valueFrom(src, src.port, blur, port)
}

func (v view) Color(i int, blur float64) color.RGB {
	src, port, ok := v.source(i)
	if !ok {
		return color.Black
	}
	return v.colorFrom(src, src.port, blur, port)
}

func (v view) ValueFrom(i, which int, blur float64) float64 {
	src, port, ok := v.source(i)
	if !ok {
		return 0
	}
	return v.valueFrom(src, which, blur, port)
}

func (v view) ColorFrom(i, which int, blur float64) color.RGB {
	src, port, ok := v.source(i)
	if !ok {
		return color.Black
	}
	return v.colorFrom(src, which, blur, port)
}

func (v view) Point() PointInfo { return v.e.point }

func (v view) valueFrom(src source, which int, blur float64, port Port) float64 {
	if src.node == NoNode {
		return port.DefaultNumber()
	}
	return v.e.Value(src.node, which, blur)
}

func (v view) colorFrom(src source, which int, blur float64, port Port) color.RGB {
	if src.node == NoNode {
		return port.DefaultColor()
	}
	return v.e.Color(src.node, which, blur)
}
