// Package logging provides structured logging for the INDIGO client.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the client. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw wire messages, dispatch decisions)
//   - Info: Normal operations (connections, enumeration, state changes)
//   - Warn: Non-fatal issues (protocol anomalies, unknown verbs, drops)
//   - Error: Serious issues (transport failures, write errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Property defined",
//	    zap.String("device", "CCD Imager Simulator"),
//	    zap.String("property", "CCD_EXPOSURE"),
//	)
//
// # Configuration
//
// Logging is silent by default so library output never pollutes CLI usage.
// Set INDIGO_LOG_LEVEL=debug (or info/warn/error) to enable output, or call
// Initialize explicitly:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
