package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/muurk/neptune-screen/internal/protocol"
)

//go:embed default_routes.yaml
var defaultRoutes []byte

// tableVersion is the only routing file format understood.
const tableVersion = 1

// Key identifies one input on the display.
type Key struct {
	Page   int
	Kind   protocol.InputKind
	Action int
}

// String returns a compact representation such as "8/button/3".
func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%d", k.Page, k.Kind, k.Action)
}

// Target names the view operation an input is bound to.
type Target struct {
	View      string
	Operation string
	Args      Args
}

// Op returns the operation key of the target.
func (t Target) Op() OpKey {
	return OpKey{View: t.View, Operation: t.Operation}
}

// String returns "View.operation(args)".
func (t Target) String() string {
	return fmt.Sprintf("%s.%s(%s)", t.View, t.Operation, t.Args.Format())
}

// Table is the static routing table. It is built once at startup and only
// read afterwards.
type Table struct {
	routes map[Key]Target
	names  map[int]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		routes: make(map[Key]Target),
		names:  make(map[int]string),
	}
}

// Set binds key to target, replacing any existing binding.
func (t *Table) Set(key Key, target Target) {
	t.routes[key] = target
}

// Lookup returns the target bound to key.
func (t *Table) Lookup(key Key) (Target, bool) {
	target, ok := t.routes[key]
	return target, ok
}

// Len returns the number of bound keys.
func (t *Table) Len() int {
	return len(t.routes)
}

// PageName returns the descriptive name of a page, if the routing file gave one.
func (t *Table) PageName(page int) string {
	return t.names[page]
}

// Keys returns every bound key ordered by page, kind and action.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Action < b.Action
	})
	return keys
}

// routeFile is the YAML layout of a routing file.
type routeFile struct {
	Version int         `yaml:"version"`
	Pages   []routePage `yaml:"pages"`
}

type routePage struct {
	Page   int           `yaml:"page"`
	Name   string        `yaml:"name,omitempty"`
	Button map[int][]any `yaml:"button,omitempty"`
	Text   map[int][]any `yaml:"text,omitempty"`
}

// LoadTable parses a routing file.
//
// Each binding is a list: view, operation, then literal arguments.
//
//	pages:
//	  - page: 8
//	    name: prepare-move
//	    button:
//	      1: [PrepareMove, move_width, 10, 0.1]
func LoadTable(r io.Reader) (*Table, error) {
	var file routeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse routing table: %w", err)
	}

	if file.Version != tableVersion {
		return nil, fmt.Errorf("unsupported routing table version: %d (expected %d)", file.Version, tableVersion)
	}

	table := NewTable()
	for _, p := range file.Pages {
		if p.Name != "" {
			table.names[p.Page] = p.Name
		}
		if err := table.addBindings(p.Page, protocol.KindButton, p.Button); err != nil {
			return nil, err
		}
		if err := table.addBindings(p.Page, protocol.KindText, p.Text); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (t *Table) addBindings(page int, kind protocol.InputKind, bindings map[int][]any) error {
	for action, binding := range bindings {
		key := Key{Page: page, Kind: kind, Action: action}
		if len(binding) < 2 {
			return fmt.Errorf("route %s: want [view, operation, args...], got %v", key, binding)
		}
		view, ok1 := binding[0].(string)
		op, ok2 := binding[1].(string)
		if !ok1 || !ok2 {
			return fmt.Errorf("route %s: view and operation must be strings, got %v", key, binding[:2])
		}
		if _, dup := t.routes[key]; dup {
			return fmt.Errorf("route %s: bound twice", key)
		}
		var args Args
		if len(binding) > 2 {
			args = append(Args(nil), binding[2:]...)
		}
		t.routes[key] = Target{View: view, Operation: op, Args: args}
	}
	return nil
}

// LoadFile reads a routing table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open routing table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadTable(f)
}

// DefaultTable returns the routing table for the stock Neptune 4 screen layout.
func DefaultTable() (*Table, error) {
	return LoadTable(bytes.NewReader(defaultRoutes))
}
