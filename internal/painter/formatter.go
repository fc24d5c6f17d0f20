package painter

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the parameters.
func (p Params) Summary() string {
	return fmt.Sprintf("%s @ %.0f%% brightness, speed %g, %d secondary color(s)",
		p.Painter, p.GlobalBrightness*100, p.Speed, len(p.SecondaryColors))
}

// FormatCompact returns a short multi-line rendering.
func (p Params) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Painter:    %s\n", p.Painter))
	b.WriteString(fmt.Sprintf("Brightness: %g  Speed: %g  Fade: %g\n", p.GlobalBrightness, p.Speed, p.Fade))
	b.WriteString(fmt.Sprintf("Color:      %s\n", p.Color))
	b.WriteString(fmt.Sprintf("Palette:    %s\n", FormatPalette(p.SecondaryColors)))

	return b.String()
}

// FormatDetailed returns every field, one per line, with display names
// resolved from options.
func (p Params) FormatDetailed(options []Option) string {
	var b strings.Builder

	b.WriteString("=== Painter ===\n")
	b.WriteString(fmt.Sprintf("Painter:           %s (%s)\n", DisplayName(options, p.Painter), p.Painter))
	b.WriteString(fmt.Sprintf("Global Brightness: %g\n", p.GlobalBrightness))
	b.WriteString(fmt.Sprintf("Speed:             %g\n", p.Speed))
	b.WriteString(fmt.Sprintf("Fade:              %g\n", p.Fade))
	b.WriteString(fmt.Sprintf("Bidirectional:     %v\n", p.Bidirectional))
	b.WriteString("\n")

	b.WriteString("=== Colors ===\n")
	b.WriteString(fmt.Sprintf("Primary:      %s  rgb(%d,%d,%d)\n", p.Color, p.Color.R, p.Color.G, p.Color.B))
	if len(p.SecondaryColors) == 0 {
		b.WriteString("Secondary:    (none)\n")
	}
	for i, c := range p.SecondaryColors {
		b.WriteString(fmt.Sprintf("Secondary %-2d: %s  rgb(%d,%d,%d)\n", i, c, c.R, c.G, c.B))
	}

	return b.String()
}

// FormatPalette renders colors as a space separated list of hex values.
func FormatPalette(colors []Color) string {
	if len(colors) == 0 {
		return "(none)"
	}
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
