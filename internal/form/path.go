package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names accepted at the root of a path.
const (
	FieldPainter          = "painter"
	FieldGlobalBrightness = "global_brightness"
	FieldSpeed            = "speed"
	FieldFade             = "fade"
	FieldBidirectional    = "bidirectional"
	FieldColor            = "color"
	FieldSecondaryColors  = "secondary_colors"
)

// Path addresses one editable value in the form.
type Path struct {
	Field   string
	Index   int    // -1 unless Field is secondary_colors
	Channel string // "", "r", "g" or "b"
}

// Kind classifies what a path points at.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindColor
	KindChannel
)

// ParsePath parses a path such as "secondary_colors[2].g". It validates
// syntax only; index bounds are checked against the live list.
func ParsePath(s string) (Path, error) {
	p := Path{Index: -1}
	rest := strings.TrimSpace(s)

	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		p.Channel = rest[dot+1:]
		rest = rest[:dot]
		switch p.Channel {
		case "r", "g", "b":
		default:
			return Path{}, fmt.Errorf("%w: %q: unknown channel %q", ErrInvalidPath, s, p.Channel)
		}
	}

	if open := strings.IndexByte(rest, '['); open >= 0 {
		if !strings.HasSuffix(rest, "]") {
			return Path{}, fmt.Errorf("%w: %q: unterminated index", ErrInvalidPath, s)
		}
		idx, err := strconv.Atoi(rest[open+1 : len(rest)-1])
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q: bad index", ErrInvalidPath, s)
		}
		if idx < 0 {
			return Path{}, fmt.Errorf("%w: %q: %w", ErrInvalidPath, s, ErrIndexOutOfRange)
		}
		p.Index = idx
		rest = rest[:open]
	}
	p.Field = rest

	switch p.Field {
	case FieldPainter, FieldGlobalBrightness, FieldSpeed, FieldFade, FieldBidirectional:
		if p.Index >= 0 || p.Channel != "" {
			return Path{}, fmt.Errorf("%w: %q: %s is a scalar", ErrInvalidPath, s, p.Field)
		}
	case FieldColor:
		if p.Index >= 0 {
			return Path{}, fmt.Errorf("%w: %q: color is not a list", ErrInvalidPath, s)
		}
	case FieldSecondaryColors:
		if p.Index < 0 {
			return Path{}, fmt.Errorf("%w: %q: secondary_colors needs an index", ErrInvalidPath, s)
		}
	default:
		return Path{}, fmt.Errorf("%w: %q: unknown field", ErrInvalidPath, s)
	}
	return p, nil
}

// Kind returns the value kind the path addresses.
func (p Path) Kind() Kind {
	switch {
	case p.Channel != "":
		return KindChannel
	case p.Field == FieldColor || p.Field == FieldSecondaryColors:
		return KindColor
	case p.Field == FieldPainter:
		return KindString
	case p.Field == FieldBidirectional:
		return KindBool
	default:
		return KindNumber
	}
}

// String formats the path back into its textual form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.Field)
	if p.Index >= 0 {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(p.Index))
		b.WriteString("]")
	}
	if p.Channel != "" {
		b.WriteString(".")
		b.WriteString(p.Channel)
	}
	return b.String()
}

// ColorPath returns the path of the primary color (index < 0) or of a
// secondary color.
func ColorPath(index int) string {
	if index < 0 {
		return FieldColor
	}
	return fmt.Sprintf("%s[%d]", FieldSecondaryColors, index)
}
