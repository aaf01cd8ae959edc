// Package display owns the serial link to the TJC touchscreen.
//
// Open configures the UART (8N1, RTS de-asserted) through go.bug.st/serial.
// A reader goroutine splits the inbound byte stream on the frame terminator,
// decodes each frame and queues the resulting events in arrival order. Acks
// are dropped at this point; the protocol is fire-and-forget.
//
// Send writes a batch of commands in one burst and always waits the settle
// delay afterwards. When the port fails, Done is closed and Err reports why.
package display
