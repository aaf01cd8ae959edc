package moonraker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by calls made before Connect or after the
	// connection ended.
	ErrNotConnected = errors.New("moonraker: not connected")

	// ErrConnectionLost ends calls that were in flight when the websocket failed.
	ErrConnectionLost = errors.New("moonraker: connection lost")

	// ErrClosed is the reason recorded when Close was called.
	ErrClosed = errors.New("moonraker: client closed")
)

// RPCError is a JSON-RPC error object returned by Moonraker.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("moonraker error %d: %s", e.Code, e.Message)
}

// ConnectionError is returned when the websocket cannot be opened.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
