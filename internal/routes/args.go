package routes

import (
	"fmt"
	"math"
	"strings"
)

// Args are the literal arguments bound to a route. Button routes carry the
// values written in the routing table; text routes carry the decoded value.
type Args []any

// Len returns the number of arguments.
func (a Args) Len() int {
	return len(a)
}

// Int returns argument i as an integer. Floats with no fractional part are
// accepted because YAML authors write 10 and 10.0 interchangeably.
func (a Args) Int(i int) (int, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("%w: argument %d is %T(%v), want integer", ErrInvalidArgument, i, v, v)
}

// Float returns argument i as a float.
func (a Args) Float(i int) (float64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: argument %d is %T(%v), want number", ErrInvalidArgument, i, v, v)
}

// String returns argument i as a string.
func (a Args) String(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is %T(%v), want string", ErrInvalidArgument, i, v, v)
	}
	return s, nil
}

// StringOr returns argument i as a string, or def when the argument is absent.
func (a Args) StringOr(i int, def string) (string, error) {
	if i >= len(a) {
		return def, nil
	}
	return a.String(i)
}

func (a Args) at(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: missing argument %d (have %d)", ErrInvalidArgument, i, len(a))
	}
	return a[i], nil
}

// Format renders the arguments for logs and the routes listing.
func (a Args) Format() string {
	parts := make([]string, len(a))
	for i, v := range a {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
