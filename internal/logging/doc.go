// Package logging provides structured logging for the display bridge.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used throughout the bridge: transport lifecycle, outbound
// display command batches, Moonraker RPC traffic and page navigation.
//
// # Log Levels
//
//   - Debug: Serial hex dumps, display command batches, RPC ids, navigation
//   - Info: Connections, readiness, startup and shutdown
//   - Warn: Dropped frames, unmapped routes, rejected operations
//   - Error: Failed controller calls, transport loss
//
// # Configuration
//
// Initialize logging once at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given the NEPTUNE_LOG_LEVEL environment variable is
// consulted; when that is empty too the logger is a no-op.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The global logger is set
// once during startup and not replaced while goroutines are running.
package logging
