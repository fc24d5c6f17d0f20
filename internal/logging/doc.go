// Package logging provides structured logging for the wave tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns. It is silent by default so CLI output stays clean; set
// WAVE_LOG_LEVEL (or pass --log-level) to turn it on.
//
// # Log Levels
//
//   - Debug: websocket traffic, form edits, dropped status events
//   - Info: params reads, acknowledged writes, HTTP requests
//   - Warn: failed live writes, contract violations in production mode
//   - Error: startup failures
//
// # Structured Logging
//
//	logging.Info("Simulator listening",
//	    zap.String("addr", ":8080"),
//	    zap.String("instance", id),
//	)
//
// # Specialized Logging
//
//	logging.LogParamsRead(endpoint, params.Painter, elapsed)
//	logging.LogParamsWrite(writeID, seq, endpoint, elapsed, err)
//	logging.LogHTTPRequest(remoteAddr, method, path, status, elapsed)
//	logging.LogWebSocketMessage(remoteAddr, "sent", msgType, payload)
//
// # Configuration
//
//	if err := logging.InitializeWithOptions(logging.Options{Level: "debug"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The terminal editor owns stdout, so it routes logs to WAVE_LOG_FILE.
package logging
