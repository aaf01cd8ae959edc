// Package protocol implements the serial wire format of the TJC/Nextion
// touchscreen.
//
// # Outbound
//
// Commands are plain text instructions for the display firmware ("page 8",
// `nozzletemp.txt="205°C"`, "vis q5,1"). Each one is followed by three 0xFF
// bytes:
//
//	<UTF-8 command><0xFF><0xFF><0xFF>
//
// Encode concatenates a batch of framed commands into one buffer. The display
// cannot absorb back-to-back writes, so every logical send must be followed by
// DefaultSettleDelay before the next one. That timing is enforced by the
// transport, not here.
//
// # Inbound
//
// The display reports touch and keypad events as short binary frames:
//   - Byte 0: input kind (0x65 button, 0x71 text, 0x1A ack)
//   - Byte 1: page id
//   - Byte 2: component/action id
//   - Bytes 3..6: value, little-endian, one to four bytes
//
// Decode turns one frame into an Event; ScanFrames splits a byte stream into
// frames on the terminator. Ack events are valid but carry no meaning.
//
// # Usage Example
//
//	scanner := bufio.NewScanner(port)
//	scanner.Split(protocol.ScanFrames)
//	for scanner.Scan() {
//	    event, err := protocol.Decode(scanner.Bytes())
//	    if err != nil {
//	        continue // logged and dropped
//	    }
//	    ...
//	}
//
//	_, err := port.Write(protocol.Encode(protocol.Page(1), protocol.SetPic("p0", 11)))
//
// # Error Handling
//
// Decode never panics. An unknown leading byte or a frame of the wrong length
// produces a *DecodeError wrapping ErrUnknownKind or ErrMalformedFrame.
// Resynchronization after garbled bytes is best-effort: a value byte of 0xFF
// directly before the terminator is indistinguishable from the terminator.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package protocol
