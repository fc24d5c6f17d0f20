// Package simulator implements an in-process painter.
//
// The simulator serves the same params resource a real painter does:
//
//	GET  /api     current params as JSON
//	POST /api     replace params; 400 when the body is not a complete params object
//	GET  /api/ws  websocket that pushes every accepted params object
//
// Accepted params are stored as sent and rendered with global brightness
// applied to every colour, which is what the firmware does before driving
// the LEDs. The simulator can advertise itself over mDNS so that
// "wave-cfg scan" finds it.
//
// Example:
//
//	srv := simulator.New(&simulator.Config{Port: 8080, Advertise: true})
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package simulator
