// Package colorconv converts between picker color text and painter.Color.
//
// Accepted input:
//
//	#rgb  #rgba  #rrggbb  #rrggbbaa
//	rgb(r, g, b)      rgba(r, g, b, a)      channels 0-255 or 0%-100%
//	hsv(h, s%, v%)    hsva(h, s%, v%, a)    h in degrees
//	hsl(h, s%, l%)    hsla(h, s%, l%, a)
//
// Alpha is parsed and dropped. Fractional channel values are truncated
// with floor, never rounded, because that is what the device expects.
// Every function in the package is pure.
package colorconv

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/muurk/wave/internal/painter"
)

// ErrInvalidColorText is returned for text that is not a supported color.
var ErrInvalidColorText = errors.New("invalid color text")

// ToColor parses picker output into a Color.
func ToColor(text string) (painter.Color, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return painter.Color{}, invalid(text, "empty")
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(text, s[1:])
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return painter.Color{}, invalid(text, "unrecognised format")
	}
	fn := strings.TrimSpace(s[:open])
	args, err := splitArgs(s[open+1 : len(s)-1])
	if err != nil {
		return painter.Color{}, invalid(text, err.Error())
	}

	switch fn {
	case "rgb", "rgba":
		return parseRGB(text, fn, args)
	case "hsv", "hsva", "hsb", "hsba":
		return parseCylindrical(text, fn, args, colorful.Hsv)
	case "hsl", "hsla":
		return parseCylindrical(text, fn, args, colorful.Hsl)
	}
	return painter.Color{}, invalid(text, fmt.Sprintf("unknown function %q", fn))
}

// ToText renders c the way the picker expects to receive it.
func ToText(c painter.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ToHex renders c as #rrggbb.
func ToHex(c painter.Color) string {
	return c.String()
}

func invalid(text, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidColorText, text, reason)
}

func parseHex(text, digits string) (painter.Color, error) {
	if _, err := strconv.ParseUint(digits, 16, 32); err != nil {
		return painter.Color{}, invalid(text, "bad hex digits")
	}

	switch len(digits) {
	case 3, 4:
		expanded := make([]byte, 0, 6)
		for i := 0; i < 3; i++ {
			expanded = append(expanded, digits[i], digits[i])
		}
		digits = string(expanded)
	case 6, 8:
	default:
		return painter.Color{}, invalid(text, "hex color needs 3, 4, 6 or 8 digits")
	}

	v, _ := strconv.ParseUint(digits[:6], 16, 32)
	return painter.Hex(uint32(v)), nil
}

// splitArgs accepts "a, b, c", "a b c" and "a b c / alpha".
func splitArgs(inner string) ([]string, error) {
	alpha := ""
	if slash := strings.IndexByte(inner, '/'); slash >= 0 {
		alpha = strings.TrimSpace(inner[slash+1:])
		inner = inner[:slash]
		if alpha == "" || strings.Contains(alpha, "/") {
			return nil, errors.New("bad alpha after /")
		}
	}

	var parts []string
	if strings.Contains(inner, ",") {
		parts = strings.Split(inner, ",")
	} else {
		parts = strings.Fields(inner)
	}
	out := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.New("empty argument")
		}
		out = append(out, p)
	}
	if alpha != "" {
		out = append(out, alpha)
	}
	return out, nil
}

func checkArity(fn string, args []string) error {
	if strings.HasSuffix(fn, "a") {
		if len(args) != 4 {
			return fmt.Errorf("%s takes 4 arguments, got %d", fn, len(args))
		}
	} else if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%s takes 3 arguments, got %d", fn, len(args))
	}
	if len(args) == 4 {
		if _, err := parseUnit(args[3]); err != nil {
			return fmt.Errorf("alpha: %v", err)
		}
	}
	return nil
}

func parseRGB(text, fn string, args []string) (painter.Color, error) {
	if err := checkArity(fn, args); err != nil {
		return painter.Color{}, invalid(text, err.Error())
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		var (
			v   float64
			err error
		)
		if strings.HasSuffix(args[i], "%") {
			v, err = parsePercent(args[i])
			v = truncate(v)
		} else {
			v, err = strconv.ParseFloat(args[i], 64)
			if err == nil && (math.IsNaN(v) || v < 0 || v > 255) {
				err = fmt.Errorf("channel %v outside 0-255", v)
			}
			v = math.Floor(v)
		}
		if err != nil {
			return painter.Color{}, invalid(text, err.Error())
		}
		ch[i] = uint8(v)
	}
	return painter.RGB(ch[0], ch[1], ch[2]), nil
}

func parseCylindrical(text, fn string, args []string, convert func(h, s, x float64) colorful.Color) (painter.Color, error) {
	if err := checkArity(fn, args); err != nil {
		return painter.Color{}, invalid(text, err.Error())
	}

	hue, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil || math.IsNaN(hue) || math.IsInf(hue, 0) {
		return painter.Color{}, invalid(text, "bad hue")
	}
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}

	sat, err := parseUnit(args[1])
	if err != nil {
		return painter.Color{}, invalid(text, "saturation: "+err.Error())
	}
	third, err := parseUnit(args[2])
	if err != nil {
		return painter.Color{}, invalid(text, err.Error())
	}

	c := convert(hue, sat, third).Clamped()
	return painter.RGB(uint8(truncate(c.R)), uint8(truncate(c.G)), uint8(truncate(c.B))), nil
}

// parseUnit reads "50%" or a 0-1 fraction into 0-1.
func parseUnit(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		return parsePercent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%v outside 0-1", v)
	}
	return v, nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("bad percentage %q", s)
	}
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%v%% outside 0-100%%", v)
	}
	return v / 100, nil
}

// truncate maps a 0-1 component to 0-255 with floor. The epsilon absorbs
// float error so that exact fractions like 128/255 land on 128.
func truncate(unit float64) float64 {
	v := math.Floor(unit*255 + 1e-9)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
