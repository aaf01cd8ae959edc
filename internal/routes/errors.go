package routes

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmapped is returned when no route exists for a (page, kind, action) key.
	ErrUnmapped = errors.New("no route for input")
	// ErrInvalidArgument is returned when a route's literal arguments do not
	// fit the operation they are bound to.
	ErrInvalidArgument = errors.New("invalid route argument")
	// ErrUnknownOperation is returned by Validate for a dangling route target.
	ErrUnknownOperation = errors.New("unknown operation")
)

// RouteError reports a dispatch that did not complete. It is always local to
// one input event.
type RouteError struct {
	Key    Key
	Target Target
	Err    error
}

// Error implements the error interface
func (e *RouteError) Error() string {
	if e.Target.View == "" {
		return fmt.Sprintf("route %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("route %s -> %s: %v", e.Key, e.Target, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RouteError) Unwrap() error {
	return e.Err
}
