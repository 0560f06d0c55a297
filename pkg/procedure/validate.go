package procedure

import "fmt"

// ValidationSeverity indicates whether a validation finding makes the
// procedure unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // evaluation is unreliable
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID // NoNode for graph-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID == NoNode {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.NodeID, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs the structural checks on a snapshot. An empty result means
// the procedure is well formed. Validation never changes evaluation: a
// procedure with findings still evaluates, degrading to defaults.
func Validate(s *Snapshot) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateLinks(s)...)
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateRequired(s)...)
	errs = append(errs, validateReachable(s)...)
	return errs
}

// validateLinks checks that each link names live nodes, existing ports and
// matching value types.
func validateLinks(s *Snapshot) []ValidationError {
	var errs []ValidationError
	for _, l := range s.links {
		from, to := s.Node(l.From), s.Node(l.To)
		if from == nil || to == nil {
			errs = append(errs, ValidationError{
				NodeID:   l.To,
				Message:  fmt.Sprintf("link %s references a missing node", l),
				Severity: SeverityError,
			})
			continue
		}
		outs, ins := from.Outputs(), to.Inputs()
		if l.FromPort < 0 || l.FromPort >= len(outs) || l.ToPort < 0 || l.ToPort >= len(ins) {
			errs = append(errs, ValidationError{
				NodeID:   l.To,
				Message:  fmt.Sprintf("link %s references a missing port", l),
				Severity: SeverityError,
			})
			continue
		}
		if outs[l.FromPort].Type != ins[l.ToPort].Type {
			errs = append(errs, ValidationError{
				NodeID: l.To,
				Message: fmt.Sprintf("link %s carries %s into %s input %q",
					l, outs[l.FromPort].Type, ins[l.ToPort].Type, ins[l.ToPort].Name()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = on the current path, black (2) = done.
// Reaching a gray node means a cycle.
func validateDAG(s *Snapshot) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(s.nodes))
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "node is part of a feedback loop",
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		for _, src := range s.sources[id] {
			if src.node != NoNode && visit(src.node) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range s.NodeIDs() {
		if color[id] == white && visit(id) {
			// One cycle is enough.
			break
		}
	}
	return errs
}

// validateRequired warns about nodes whose result is constant because an
// input they need is unlinked.
func validateRequired(s *Snapshot) []ValidationError {
	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		r, ok := s.nodes[id].(requirer)
		if !ok {
			continue
		}
		ins := s.nodes[id].Inputs()
		for _, i := range r.RequiredInputs() {
			if src, _ := s.Source(id, i); src == NoNode {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("%s input %q is unlinked", s.nodes[id].Kind(), ins[i].Name()),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// validateReachable warns about nodes that no output depends on.
func validateReachable(s *Snapshot) []ValidationError {
	reached := make([]bool, len(s.nodes))
	stack := append([]NodeID(nil), s.outputs...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		for _, src := range s.sources[id] {
			if src.node != NoNode {
				stack = append(stack, src.node)
			}
		}
	}

	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		if !reached[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s %q does not feed any output", s.nodes[id].Kind(), s.nodes[id].Name()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
