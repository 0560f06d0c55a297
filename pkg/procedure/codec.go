package procedure

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/chazu/proctex/pkg/logger"
)

// FormatVersion is written to every encoded procedure.
const FormatVersion = 1

type document struct {
	Version int               `json:"version"`
	Outputs []NodeID          `json:"outputs"`
	Nodes   []json.RawMessage `json:"nodes"`
	Links   []json.RawMessage `json:"links"`
}

type nodeRecord struct {
	ID     NodeID `json:"id"`
	Kind   string `json:"kind"`
	Params Params `json:"params,omitempty"`
}

// Encode writes p as JSON.
func Encode(w io.Writer, p *Procedure) error {
	s := p.Snapshot()
	doc := document{Version: FormatVersion, Outputs: s.Outputs()}
	for _, id := range s.NodeIDs() {
		n := s.Node(id)
		raw, err := json.Marshal(nodeRecord{ID: id, Kind: n.Kind(), Params: n.Params()})
		if err != nil {
			return fmt.Errorf("encode node %d: %w", id, err)
		}
		doc.Nodes = append(doc.Nodes, raw)
	}
	for _, l := range s.Links() {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode link %s: %w", l, err)
		}
		doc.Links = append(doc.Links, raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Decoder rebuilds procedures from JSON.
type Decoder struct {
	Registry      *Registry
	AllowFeedback bool
}

// Decode reads a procedure using reg with feedback loops rejected.
func Decode(r io.Reader, reg *Registry) (*Procedure, error) {
	return Decoder{Registry: reg}.Decode(r)
}

// Decode reads one procedure. Only an unreadable document is an error:
// node records of unknown kind or with bad parameters, and links that no
// longer fit, are logged and skipped. Node handles are renumbered.
func (d Decoder) Decode(r io.Reader) (*Procedure, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode procedure: %w", err)
	}
	if doc.Version != FormatVersion {
		logger.Log.Warn("procedure format version differs",
			zap.Int("version", doc.Version), zap.Int("supported", FormatVersion))
	}

	isOutput := make(map[NodeID]int, len(doc.Outputs))
	for i, id := range doc.Outputs {
		isOutput[id] = i
	}

	outputs := make([]*OutputNode, len(doc.Outputs))
	outputIDs := make([]NodeID, len(doc.Outputs))
	var others []nodeRecord
	var built []Node
	for i, raw := range doc.Nodes {
		var rec nodeRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Log.Warn("skipping malformed node record", zap.Int("index", i), zap.Error(err))
			continue
		}
		n, err := d.Registry.New(rec.Kind, rec.Params)
		if err != nil {
			logger.Log.Warn("skipping node", zap.Int("id", int(rec.ID)), zap.String("kind", rec.Kind), zap.Error(err))
			continue
		}
		if slot, ok := isOutput[rec.ID]; ok {
			if o, ok := n.(*OutputNode); ok {
				outputs[slot] = o
				outputIDs[slot] = rec.ID
				continue
			}
			logger.Log.Warn("output entry is not an output node", zap.Int("id", int(rec.ID)))
		}
		others = append(others, rec)
		built = append(built, n)
	}

	ids := make(map[NodeID]NodeID)
	var present []*OutputNode
	for i, o := range outputs {
		if o == nil {
			logger.Log.Warn("missing output node", zap.Int("id", int(doc.Outputs[i])))
			continue
		}
		ids[outputIDs[i]] = NodeID(len(present))
		present = append(present, o)
	}
	p := New(present...)
	p.SetAllowFeedback(d.AllowFeedback)
	for i, rec := range others {
		if _, dup := ids[rec.ID]; dup {
			logger.Log.Warn("skipping node with duplicate id", zap.Int("id", int(rec.ID)))
			continue
		}
		ids[rec.ID] = p.AddNode(built[i])
	}

	for i, raw := range doc.Links {
		var l Link
		if err := json.Unmarshal(raw, &l); err != nil {
			logger.Log.Warn("skipping malformed link record", zap.Int("index", i), zap.Error(err))
			continue
		}
		from, okFrom := ids[l.From]
		to, okTo := ids[l.To]
		if !okFrom || !okTo {
			logger.Log.Warn("skipping link to a skipped node", zap.Stringer("link", l))
			continue
		}
		mapped := Link{From: from, FromPort: l.FromPort, To: to, ToPort: l.ToPort}
		if err := p.AddLink(mapped); err != nil {
			logger.Log.Warn("skipping link", zap.Stringer("link", l), zap.Error(err))
		}
	}
	return p, nil
}
