// Package navigation runs the screen.
//
// The Engine keeps the page history and is the only writer of it and of
// the outbound serial stream. Run ticks at a fixed interval; each tick first
// projects the current printer status onto the screen fields and then
// handles at most one queued input event through the router. Losing the
// display or the Moonraker connection ends Run with ErrTransportLost.
//
// Startup covers the boot sequence: boot page, a readiness poll that stays
// responsive to cancellation, then the home page and Run.
package navigation
