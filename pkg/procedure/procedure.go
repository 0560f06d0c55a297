// Package procedure implements procedural texture graphs: typed ports,
// nodes addressed by stable handles, links between them, and the pull-based
// evaluator that computes per-sample values.
//
// A Procedure is edited during authoring; rendering never reads it
// directly. Snapshot freezes the current graph into an immutable value
// that any number of Evaluators may read concurrently.
package procedure

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoSuchNode   = errors.New("no such node")
	ErrNoSuchLink   = errors.New("no such link")
	ErrPortRange    = errors.New("port index out of range")
	ErrTypeMismatch = errors.New("port value types differ")
	ErrFeedback     = errors.New("link would create a feedback loop")
	ErrOutputNode   = errors.New("output nodes cannot be removed")
)

// Link connects output FromPort of node From to input ToPort of node To.
type Link struct {
	From     NodeID `json:"from"`
	FromPort int    `json:"from_port"`
	To       NodeID `json:"to"`
	ToPort   int    `json:"to_port"`
}

func (l Link) String() string {
	return fmt.Sprintf("%d.%d -> %d.%d", l.From, l.FromPort, l.To, l.ToPort)
}

// Procedure is the editable graph. Nodes live in an arena indexed by
// NodeID; removed slots stay empty so handles never shift. All methods are
// safe for concurrent use.
type Procedure struct {
	mu            sync.RWMutex
	nodes         []Node
	links         []Link
	outputs       []NodeID
	version       uint64
	allowFeedback bool
}

// New creates a procedure whose outputs are the given output nodes, in order.
func New(outputs ...*OutputNode) *Procedure {
	p := &Procedure{}
	for _, o := range outputs {
		id := p.addNodeLocked(o)
		p.outputs = append(p.outputs, id)
	}
	return p
}

// SetAllowFeedback controls whether AddLink accepts links that close a
// cycle. Cyclic graphs are then bounded only by the evaluator's depth
// limit.
func (p *Procedure) SetAllowFeedback(allow bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowFeedback = allow
}

// AddNode adds n and returns its handle.
func (p *Procedure) AddNode(n Node) NodeID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addNodeLocked(n)
}

func (p *Procedure) addNodeLocked(n Node) NodeID {
	p.nodes = append(p.nodes, n)
	p.version++
	return NodeID(len(p.nodes) - 1)
}

// ReplaceNode swaps the node at id for n, keeping links whose ports still
// exist with matching types and dropping the rest.
func (p *Procedure) ReplaceNode(id NodeID, n Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nodeLocked(id) == nil {
		return fmt.Errorf("replace %d: %w", id, ErrNoSuchNode)
	}
	p.nodes[id] = n
	kept := p.links[:0]
	for _, l := range p.links {
		if (l.From == id || l.To == id) && p.checkPortsLocked(l) != nil {
			continue
		}
		kept = append(kept, l)
	}
	p.links = kept
	p.version++
	return nil
}

// RemoveNode deletes a node and every link touching it.
func (p *Procedure) RemoveNode(id NodeID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nodeLocked(id) == nil {
		return fmt.Errorf("remove %d: %w", id, ErrNoSuchNode)
	}
	for _, o := range p.outputs {
		if o == id {
			return fmt.Errorf("remove %d: %w", id, ErrOutputNode)
		}
	}
	kept := p.links[:0]
	for _, l := range p.links {
		if l.From != id && l.To != id {
			kept = append(kept, l)
		}
	}
	p.links = kept
	p.nodes[id] = nil
	p.version++
	return nil
}

// AddLink connects two ports. A link into an input that is already linked
// replaces the old link.
func (p *Procedure) AddLink(l Link) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkPortsLocked(l); err != nil {
		return fmt.Errorf("link %s: %w", l, err)
	}
	if !p.allowFeedback && p.reachesLocked(l.From, l) {
		return fmt.Errorf("link %s: %w", l, ErrFeedback)
	}
	for i, old := range p.links {
		if old.To == l.To && old.ToPort == l.ToPort {
			p.links = append(p.links[:i], p.links[i+1:]...)
			break
		}
	}
	p.links = append(p.links, l)
	p.version++
	return nil
}

// RemoveLink deletes an existing link.
func (p *Procedure) RemoveLink(l Link) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, old := range p.links {
		if old == l {
			p.links = append(p.links[:i], p.links[i+1:]...)
			p.version++
			return nil
		}
	}
	return fmt.Errorf("remove link %s: %w", l, ErrNoSuchLink)
}

// Node returns the node at id, or nil.
func (p *Procedure) Node(id NodeID) Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nodeLocked(id)
}

// NodeIDs returns the handles of all live nodes in ascending order.
func (p *Procedure) NodeIDs() []NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]NodeID, 0, len(p.nodes))
	for i, n := range p.nodes {
		if n != nil {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Links returns a copy of the link list.
func (p *Procedure) Links() []Link {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Link(nil), p.links...)
}

// Outputs returns the handles of the output nodes.
func (p *Procedure) Outputs() []NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]NodeID(nil), p.outputs...)
}

// OutputByName returns the handle of the output node with the given name.
func (p *Procedure) OutputByName(name string) (NodeID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, id := range p.outputs {
		if p.nodes[id].Name() == name {
			return id, true
		}
	}
	return NoNode, false
}

// Version increases on every edit.
func (p *Procedure) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// NodeCount returns the number of live nodes, outputs included.
func (p *Procedure) NodeCount() int {
	return len(p.NodeIDs())
}

func (p *Procedure) nodeLocked(id NodeID) Node {
	if id < 0 || int(id) >= len(p.nodes) {
		return nil
	}
	return p.nodes[id]
}

func (p *Procedure) checkPortsLocked(l Link) error {
	from, to := p.nodeLocked(l.From), p.nodeLocked(l.To)
	if from == nil {
		return fmt.Errorf("from %d: %w", l.From, ErrNoSuchNode)
	}
	if to == nil {
		return fmt.Errorf("to %d: %w", l.To, ErrNoSuchNode)
	}
	outs, ins := from.Outputs(), to.Inputs()
	if l.FromPort < 0 || l.FromPort >= len(outs) {
		return fmt.Errorf("output %d of %s: %w", l.FromPort, from.Kind(), ErrPortRange)
	}
	if l.ToPort < 0 || l.ToPort >= len(ins) {
		return fmt.Errorf("input %d of %s: %w", l.ToPort, to.Kind(), ErrPortRange)
	}
	if outs[l.FromPort].Type != ins[l.ToPort].Type {
		return fmt.Errorf("%s into %s: %w", outs[l.FromPort].Type, ins[l.ToPort].Type, ErrTypeMismatch)
	}
	return nil
}

// reachesLocked reports whether start depends, directly or transitively,
// on the node link l feeds. Adding l closes a cycle exactly when this
// holds. Any link l would replace is ignored.
func (p *Procedure) reachesLocked(start NodeID, l Link) bool {
	target := l.To
	if start == target {
		return true
	}
	upstream := make(map[NodeID][]NodeID)
	for _, old := range p.links {
		if old.To == l.To && old.ToPort == l.ToPort {
			continue
		}
		upstream[old.To] = append(upstream[old.To], old.From)
	}
	seen := make(map[NodeID]bool)
	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, upstream[id]...)
	}
	return false
}
