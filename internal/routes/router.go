package routes

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/muurk/neptune-screen/internal/protocol"
)

// OpKey names one operation of one view.
type OpKey struct {
	View      string
	Operation string
}

// String returns "View.operation".
func (k OpKey) String() string {
	return k.View + "." + k.Operation
}

// Operation is a view operation invoked by the router.
type Operation func(ctx context.Context, args Args) error

// Operations is the closed table of callable view operations.
type Operations map[OpKey]Operation

// Add registers op under view.name.
func (o Operations) Add(view, name string, op Operation) {
	o[OpKey{View: view, Operation: name}] = op
}

// Validate checks that every route in table points at a registered operation.
// All dangling references are reported together.
func Validate(table *Table, ops Operations) error {
	var errs []error
	for _, key := range table.Keys() {
		target, _ := table.Lookup(key)
		if _, ok := ops[target.Op()]; !ok {
			errs = append(errs, fmt.Errorf("route %s: %w %s", key, ErrUnknownOperation, target.Op()))
		}
	}
	return errors.Join(errs...)
}

// Router resolves display input to view operations.
type Router struct {
	table *Table
	ops   Operations
}

// NewRouter validates table against ops and returns a router over them.
func NewRouter(table *Table, ops Operations) (*Router, error) {
	if table == nil {
		return nil, errors.New("routes: table required")
	}
	if err := Validate(table, ops); err != nil {
		return nil, fmt.Errorf("routing table references missing operations: %w", err)
	}
	return &Router{table: table, ops: ops}, nil
}

// Table returns the routing table.
func (r *Router) Table() *Table {
	return r.table
}

// OperationKeys returns the registered operations in sorted order.
func (r *Router) OperationKeys() []OpKey {
	keys := make([]OpKey, 0, len(r.ops))
	for k := range r.ops {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Resolve looks up the target for an input. It returns ErrUnmapped when the
// key has no binding.
func (r *Router) Resolve(page int, kind protocol.InputKind, action int) (Target, error) {
	key := Key{Page: page, Kind: kind, Action: action}
	target, ok := r.table.Lookup(key)
	if !ok {
		return Target{}, &RouteError{Key: key, Err: ErrUnmapped}
	}
	return target, nil
}

// Dispatch resolves ev and invokes the bound operation. Text events pass the
// decoded value as the only argument; button events pass the table's literal
// arguments. Ack events are ignored.
//
// Every failure is returned as a *RouteError and is local to this event.
func (r *Router) Dispatch(ctx context.Context, ev protocol.Event) (err error) {
	if ev.IsAck() {
		return nil
	}

	target, err := r.Resolve(ev.Page, ev.Kind, ev.Action)
	if err != nil {
		return err
	}
	key := Key{Page: ev.Page, Kind: ev.Kind, Action: ev.Action}

	op, ok := r.ops[target.Op()]
	if !ok {
		// Validate rejects this at construction; a table mutated afterwards lands here.
		return &RouteError{Key: key, Target: target, Err: ErrUnmapped}
	}

	args := target.Args
	if ev.Kind == protocol.KindText {
		args = Args{ev.Value}
	}

	defer func() {
		if p := recover(); p != nil {
			err = &RouteError{Key: key, Target: target, Err: fmt.Errorf("operation panicked: %v", p)}
		}
	}()

	if opErr := op(ctx, args); opErr != nil {
		return &RouteError{Key: key, Target: target, Err: opErr}
	}
	return nil
}
