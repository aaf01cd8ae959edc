package protocol

import (
	"bytes"
	"fmt"
	"time"
)

// Terminator ends every frame in both directions.
var Terminator = []byte{0xFF, 0xFF, 0xFF}

// DefaultSettleDelay is how long the display needs after each write before it
// can accept the next one. Writers must wait this long after every send.
const DefaultSettleDelay = 50 * time.Millisecond

const (
	// minEventFrame is kind, page, action and a one byte value.
	minEventFrame = 4
	// maxEventFrame allows a four byte little-endian value.
	maxEventFrame = 7
)

// Encode frames each command and concatenates them into a single buffer so a
// batch goes out in one physical write.
func Encode(commands ...string) []byte {
	size := 0
	for _, c := range commands {
		size += len(c) + len(Terminator)
	}

	buf := make([]byte, 0, size)
	for _, c := range commands {
		buf = append(buf, c...)
		buf = append(buf, Terminator...)
	}
	return buf
}

// Decode parses one inbound frame. A trailing terminator is tolerated.
//
// Layout: byte 0 is the InputKind code, byte 1 the page, byte 2 the action,
// and the remaining one to four bytes the value in little-endian order. Ack
// frames only need byte 0.
func Decode(raw []byte) (Event, error) {
	frame := bytes.TrimSuffix(raw, Terminator)

	if len(frame) == 0 {
		return Event{}, &DecodeError{Raw: raw, Err: ErrEmptyFrame}
	}

	kind := InputKind(frame[0])
	if !kind.Valid() {
		return Event{}, &DecodeError{Raw: raw, Err: fmt.Errorf("%w: 0x%02x", ErrUnknownKind, frame[0])}
	}

	if kind == KindAck {
		return Event{Kind: KindAck}, nil
	}

	if len(frame) < minEventFrame || len(frame) > maxEventFrame {
		return Event{}, &DecodeError{
			Raw: raw,
			Err: fmt.Errorf("%w: %s frame has %d bytes, want %d-%d", ErrMalformedFrame, kind, len(frame), minEventFrame, maxEventFrame),
		}
	}

	value := 0
	for i, b := range frame[3:] {
		value |= int(b) << (8 * i)
	}

	return Event{
		Kind:   kind,
		Page:   int(frame[1]),
		Action: int(frame[2]),
		Value:  value,
	}, nil
}

// ScanFrames is a bufio.SplitFunc that yields inbound frames delimited by the
// terminator. Bytes still buffered at EOF are returned as a final frame.
//
// After line noise the scanner resynchronizes on the next terminator; frames
// straddling the corruption are lost.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, Terminator); i >= 0 {
		return i + len(Terminator), data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
