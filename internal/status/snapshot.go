package status

import "encoding/json"

// Snapshot is a read-only view of the printer status at one point in time.
// Every accessor tolerates missing branches: a printer without an outer bed
// heater simply reports "not present".
type Snapshot struct {
	tree Tree
}

// NewSnapshot wraps a tree. The tree is copied.
func NewSnapshot(tree Tree) Snapshot {
	copied, _ := clone(tree).(map[string]any)
	return Snapshot{tree: copied}
}

// Tree returns a deep copy of the underlying tree.
func (s Snapshot) Tree() Tree {
	copied, _ := clone(s.tree).(map[string]any)
	if copied == nil {
		return Tree{}
	}
	return copied
}

// Empty reports whether the snapshot holds no objects.
func (s Snapshot) Empty() bool {
	return len(s.tree) == 0
}

// Lookup walks path and returns the value found there.
func (s Snapshot) Lookup(path ...string) (any, bool) {
	var cur any = s.tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether path exists.
func (s Snapshot) Has(path ...string) bool {
	_, ok := s.Lookup(path...)
	return ok
}

// Float returns a numeric leaf. JSON numbers arrive as float64; json.Number
// and integer types are accepted too.
func (s Snapshot) Float(path ...string) (float64, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Int returns a numeric leaf truncated toward zero.
func (s Snapshot) Int(path ...string) (int, bool) {
	f, ok := s.Float(path...)
	return int(f), ok
}

// String returns a string leaf.
func (s Snapshot) String(path ...string) (string, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Index returns element i of a numeric list leaf, such as toolhead.position.
func (s Snapshot) Index(i int, path ...string) (float64, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return 0, false
	}
	list, ok := v.([]any)
	if !ok || i < 0 || i >= len(list) {
		return 0, false
	}
	return toFloat(list[i])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
