// Package moonraker is a JSON-RPC 2.0 client for the Moonraker websocket API.
//
// A Client holds one websocket. Calls are multiplexed by request ID and may
// be made from any goroutine; server notifications (notify_status_update,
// notify_klippy_ready and friends) are handed to a single NotificationHandler
// in arrival order.
//
// When the connection fails, Done is closed, in-flight calls return
// ErrConnectionLost and later calls return ErrNotConnected. The client does
// not reconnect; the caller decides whether to restart.
package moonraker
