// Package painter defines the parameter model of a wave painter device.
//
// A painter is the lighting animation running on the device. Its runtime
// parameters are exchanged as a single JSON object over the device's /api
// endpoint:
//
//	{
//	  "painter": "hex",
//	  "global_brightness": 0.5,
//	  "speed": 1,
//	  "color": {"r": 255, "g": 0, "b": 0},
//	  "secondary_colors": [{"r": 66, "g": 103, "b": 178}],
//	  "fade": 0,
//	  "bidirectional": false
//	}
//
// # Types
//
//   - Color: immutable 3-channel value, each channel 0-255
//   - Params: the full parameter set of one painter
//   - Option: a painter identifier the editor offers, with its display name
//
// Decode is strict about the shape of the payload and reports problems as
// ErrMalformedParams. Painter identifiers that are not in the known list
// are preserved untouched so a newer device never loses its setting.
package painter
