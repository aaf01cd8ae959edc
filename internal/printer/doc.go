// Package printer keeps the screen's view of the printer current.
//
// A Controller owns the Moonraker subscription: it replaces the status store
// with the subscription snapshot and merges every notify_status_update delta
// into it in arrival order. It tracks the Klippy state for the startup
// readiness poll and resubscribes when Klippy restarts.
//
// The controller is also the views' handle on the printer: G-code, print
// control and the gcodes file listing.
package printer
