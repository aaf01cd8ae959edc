package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// InputKind is the leading byte of an inbound display frame.
type InputKind byte

const (
	// KindButton is sent when a touch component is released.
	KindButton InputKind = 0x65
	// KindText carries a numeric value entered on a keypad page.
	KindText InputKind = 0x71
	// KindAck is the display's acknowledgement of a command. It carries no
	// payload and is always ignored.
	KindAck InputKind = 0x1A
)

// String returns the lowercase name used in routing tables.
func (k InputKind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindText:
		return "text"
	case KindAck:
		return "ack"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Valid reports whether k belongs to the closed set of input kinds.
func (k InputKind) Valid() bool {
	switch k {
	case KindButton, KindText, KindAck:
		return true
	}
	return false
}

// ParseInputKind maps a routing-table name back to an InputKind.
func ParseInputKind(name string) (InputKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "button":
		return KindButton, nil
	case "text":
		return KindText, nil
	case "ack":
		return KindAck, nil
	default:
		return 0, fmt.Errorf("unknown input kind %q", name)
	}
}

// MarshalYAML implements yaml.Marshaler so kinds round-trip through routing files.
func (k InputKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *InputKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseInputKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Event is one decoded inbound frame.
type Event struct {
	Kind   InputKind
	Page   int
	Action int
	Value  int
}

// IsAck reports whether the event is a display acknowledgement.
func (e Event) IsAck() bool {
	return e.Kind == KindAck
}

// String returns a debug representation of the event
func (e Event) String() string {
	if e.IsAck() {
		return "Event{ack}"
	}
	return fmt.Sprintf("Event{%s page=%d action=%d value=%d}", e.Kind, e.Page, e.Action, e.Value)
}

// Sentinel causes carried by DecodeError.
var (
	ErrEmptyFrame     = errors.New("empty frame")
	ErrUnknownKind    = errors.New("unknown input kind")
	ErrMalformedFrame = errors.New("malformed frame")
)

// DecodeError describes an inbound frame that could not be decoded. The frame
// is dropped by the caller and reading resumes with the next one.
type DecodeError struct {
	Raw []byte
	Err error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode display frame % x: %v", e.Raw, e.Err)
}

// Unwrap returns the underlying cause for errors.Is checks.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
