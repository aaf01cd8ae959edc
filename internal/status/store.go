package status

import (
	"sync"
)

// Tree is a printer status tree as reported by Moonraker: object name to
// attribute map, nested arbitrarily.
type Tree = map[string]any

// Merge returns the deep union of base and delta. Where both sides hold a
// mapping the merge recurses; otherwise the delta value replaces the base
// value. Neither input is modified.
func Merge(base, delta Tree) Tree {
	out := make(Tree, len(base)+len(delta))
	for k, v := range base {
		out[k] = v
	}

	for k, dv := range delta {
		dm, deltaIsMap := dv.(map[string]any)
		bm, baseIsMap := out[k].(map[string]any)
		if deltaIsMap && baseIsMap {
			out[k] = Merge(bm, dm)
			continue
		}
		out[k] = clone(dv)
	}
	return out
}

// clone deep-copies maps and slices so snapshots never alias store state.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = clone(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = clone(val)
		}
		return s
	default:
		return v
	}
}

// Store holds the latest known printer status. It is written by the ingest
// task and read by the render loop.
type Store struct {
	mu   sync.RWMutex
	tree Tree
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tree: Tree{}}
}

// Replace installs a complete status tree, as returned by a subscribe call.
func (s *Store) Replace(tree Tree) Snapshot {
	copied, _ := clone(tree).(map[string]any)
	if copied == nil {
		copied = Tree{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = copied
	return Snapshot{tree: clone(copied).(map[string]any)}
}

// Merge applies a partial update and returns the resulting snapshot. Deltas
// must be applied in arrival order.
func (s *Store) Merge(delta Tree) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = Merge(s.tree, delta)
	return Snapshot{tree: clone(s.tree).(map[string]any)}
}

// Snapshot returns a copy of the current tree.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{tree: clone(s.tree).(map[string]any)}
}

// Empty reports whether no status has been received yet.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tree) == 0
}
