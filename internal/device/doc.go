// Package device provides an HTTP client for a wave painter's /api endpoint.
//
// The device exposes exactly two operations:
//
//	GET  /api   returns the current painter params as JSON
//	POST /api   applies a full params object (Content-Type: application/json)
//
// Only the status code of a POST is inspected. Devices and the simulator may
// additionally push every applied params object over a websocket at
// /api/ws, which Watch consumes.
//
// # Usage Example
//
//	client, err := device.NewClientWithURL("http://wave.local:8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	params, err := client.GetParams(ctx)
//	if err != nil {
//	    log.Fatal(device.GetShortErrorMessage(err))
//	}
//
//	params.Painter = "rain"
//	if err := client.PostParams(ctx, params); err != nil {
//	    log.Fatal(err)
//	}
//
// # Retries
//
// Reads are retried with exponential backoff for retryable errors. Writes
// are never retried: a later edit always supersedes an earlier one, so a
// retried stale write could only overwrite newer state.
//
// # Errors
//
// All failures are *DeviceError values. errors.Is(err, ErrNetworkFailure)
// matches transport problems and errors.Is(err, painter.ErrMalformedParams)
// matches payloads that do not decode.
package device
