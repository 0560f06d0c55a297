package procedure

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/proctex/pkg/color"
)

// ErrUnknownKind is returned when no constructor is registered for a kind.
var ErrUnknownKind = errors.New("unknown node kind")

// Params are the persisted settings of a node. Values are whatever JSON
// decoding produces, so the accessors accept several representations.
type Params map[string]any

// Float returns key as a float64, or def if it is absent or not numeric.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// Int returns key truncated to an int.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key].(int); ok {
		return v
	}
	return int(p.Float(key, float64(def)))
}

// String returns key as a string.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Color accepts an RGB value, a three-element list, or a color name.
func (p Params) Color(key string, def color.RGB) color.RGB {
	switch v := p[key].(type) {
	case color.RGB:
		return v
	case string:
		if c, ok := color.Named(v); ok {
			return c
		}
	case []float64:
		if len(v) == 3 {
			return color.RGB{R: v[0], G: v[1], B: v[2]}
		}
	case []any:
		if len(v) == 3 {
			tmp := Params{"r": v[0], "g": v[1], "b": v[2]}
			return color.RGB{R: tmp.Float("r", 0), G: tmp.Float("g", 0), B: tmp.Float("b", 0)}
		}
	}
	return def
}

// Decode converts key into dst by way of JSON, for structured values such
// as solid descriptions.
func (p Params) Decode(key string, dst any) error {
	v, ok := p[key]
	if !ok {
		return fmt.Errorf("param %q: missing", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("param %q: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("param %q: %w", key, err)
	}
	return nil
}

// Constructor builds a node of one kind from its parameters.
type Constructor func(params Params) (Node, error)

// Registry maps stable kind tags to constructors. It replaces any kind of
// reflective lookup when loading saved procedures.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register installs c for kind, replacing any earlier constructor.
func (r *Registry) Register(kind string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[kind] = c
}

// New constructs a node of the given kind.
func (r *Registry) New(kind string, params Params) (Node, error) {
	r.mu.RLock()
	c, ok := r.ctors[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	if params == nil {
		params = Params{}
	}
	n, err := c(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return n, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[kind]
	return ok
}

// Kinds returns the registered tags in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
