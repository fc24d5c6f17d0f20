package painter

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedParams is returned when a payload does not have the painter
// parameter shape.
var ErrMalformedParams = errors.New("malformed painter params")

// Params is the full runtime configuration of one painter.
type Params struct {
	// Painter selects the animation ("hex", "line", "pulse", ...)
	Painter string `json:"painter"`

	// GlobalBrightness scales every color on the device (0-1)
	GlobalBrightness float64 `json:"global_brightness"`

	// Speed is the animation rate
	Speed float64 `json:"speed"`

	// Color is the primary color
	Color Color `json:"color"`

	// SecondaryColors is the gradient/palette, order is significant
	SecondaryColors []Color `json:"secondary_colors"`

	// Fade controls the fade-out behaviour of trailing pixels
	Fade float64 `json:"fade"`

	// Bidirectional makes moving painters bounce instead of wrap
	Bidirectional bool `json:"bidirectional"`
}

// wireParams mirrors Params with pointers so missing keys can be detected.
type wireParams struct {
	Painter          *string  `json:"painter"`
	GlobalBrightness *float64 `json:"global_brightness"`
	Speed            *float64 `json:"speed"`
	Color            *Color   `json:"color"`
	SecondaryColors  *[]Color `json:"secondary_colors"`
	Fade             *float64 `json:"fade"`
	Bidirectional    *bool    `json:"bidirectional"`
}

// Decode parses a JSON payload into Params.
//
// painter, global_brightness, speed, color and secondary_colors are
// required. fade and bidirectional default to their zero values because
// older firmware does not report them. Unknown keys are ignored.
func Decode(data []byte) (Params, error) {
	var wire wireParams
	if err := json.Unmarshal(data, &wire); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrMalformedParams, err)
	}

	missing := func(name string) error {
		return fmt.Errorf("%w: missing field %q", ErrMalformedParams, name)
	}
	switch {
	case wire.Painter == nil:
		return Params{}, missing("painter")
	case wire.GlobalBrightness == nil:
		return Params{}, missing("global_brightness")
	case wire.Speed == nil:
		return Params{}, missing("speed")
	case wire.Color == nil:
		return Params{}, missing("color")
	case wire.SecondaryColors == nil:
		return Params{}, missing("secondary_colors")
	}

	p := Params{
		Painter:          *wire.Painter,
		GlobalBrightness: *wire.GlobalBrightness,
		Speed:            *wire.Speed,
		Color:            *wire.Color,
		SecondaryColors:  append([]Color{}, (*wire.SecondaryColors)...),
	}
	if wire.Fade != nil {
		p.Fade = *wire.Fade
	}
	if wire.Bidirectional != nil {
		p.Bidirectional = *wire.Bidirectional
	}
	return p, nil
}

// UnmarshalJSON applies the same rules as Decode.
func (p *Params) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// MarshalJSON always encodes secondary_colors as an array, never null.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	out := plain(p)
	if out.SecondaryColors == nil {
		out.SecondaryColors = []Color{}
	}
	return json.Marshal(out)
}

// Encode serialises p in the device wire format.
func (p Params) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// Clone returns a deep copy of p. The copy never shares the secondary
// color slice with p.
func (p Params) Clone() Params {
	out := p
	out.SecondaryColors = make([]Color, len(p.SecondaryColors))
	copy(out.SecondaryColors, p.SecondaryColors)
	return out
}

// Equal reports whether p and other hold the same values.
// A nil and an empty secondary color list are equal.
func (p Params) Equal(other Params) bool {
	if p.Painter != other.Painter ||
		p.GlobalBrightness != other.GlobalBrightness ||
		p.Speed != other.Speed ||
		p.Color != other.Color ||
		p.Fade != other.Fade ||
		p.Bidirectional != other.Bidirectional {
		return false
	}
	if len(p.SecondaryColors) != len(other.SecondaryColors) {
		return false
	}
	for i := range p.SecondaryColors {
		if p.SecondaryColors[i] != other.SecondaryColors[i] {
			return false
		}
	}
	return true
}

// Dimmed returns a copy with every color scaled by GlobalBrightness.
// This is what the device renders; the undimmed values are what it reports.
func (p Params) Dimmed() Params {
	out := p.Clone()
	out.Color = p.Color.Scale(p.GlobalBrightness)
	for i, c := range out.SecondaryColors {
		out.SecondaryColors[i] = c.Scale(p.GlobalBrightness)
	}
	return out
}

// Defaults returns the parameters a freshly booted device starts with.
func Defaults() Params {
	return Params{
		Painter:          "fade",
		GlobalBrightness: 0.5,
		Speed:            0.5,
		Color:            Hex(0xFFFFFF),
		SecondaryColors: []Color{
			Hex(0x4267B2),
			Hex(0x898F9C),
		},
	}
}
