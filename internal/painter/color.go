package painter

import (
	"encoding/json"
	"fmt"
)

// Color is a 24-bit RGB value. Channels are always within 0-255.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Black is the seed value for newly appended colors.
var Black = Color{}

// RGB builds a Color from channel values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Hex builds a Color from a 0xRRGGBB integer.
func Hex(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// ClampColor builds a Color from arbitrary integers, clamping each channel.
func ClampColor(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Channel returns the value of channel "r", "g" or "b".
func (c Color) Channel(name string) (uint8, bool) {
	switch name {
	case "r":
		return c.R, true
	case "g":
		return c.G, true
	case "b":
		return c.B, true
	}
	return 0, false
}

// WithChannel returns a copy of c with one channel replaced.
func (c Color) WithChannel(name string, v uint8) (Color, bool) {
	switch name {
	case "r":
		c.R = v
	case "g":
		c.G = v
	case "b":
		c.B = v
	default:
		return c, false
	}
	return c, true
}

// Scale multiplies every channel by factor, truncating toward zero.
// Factors outside 0-1 are clamped.
func (c Color) Scale(factor float64) Color {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return Color{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}

// Uint32 returns the color as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String returns the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalJSON requires all three channels to be present and integral.
func (c *Color) UnmarshalJSON(data []byte) error {
	var wire struct {
		R *uint8 `json:"r"`
		G *uint8 `json:"g"`
		B *uint8 `json:"b"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.R == nil || wire.G == nil || wire.B == nil {
		return fmt.Errorf("color requires r, g and b channels")
	}
	*c = Color{R: *wire.R, G: *wire.G, B: *wire.B}
	return nil
}
