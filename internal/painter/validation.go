package painter

import (
	"fmt"
	"math"
	"strings"
)

// Validate reports problems with p that the device would accept but an
// operator probably did not intend. Every returned error is a warning;
// the device never rejects these values.
func Validate(p Params, options []Option) []error {
	var warnings []error

	if p.Painter == "" {
		warnings = append(warnings, fmt.Errorf("warning: painter is empty"))
	} else if _, ok := FindOption(options, p.Painter); !ok {
		warnings = append(warnings, fmt.Errorf("warning: painter %q is not a known painter", p.Painter))
	}

	if err := checkUnit("global_brightness", p.GlobalBrightness); err != nil {
		warnings = append(warnings, err)
	} else if p.GlobalBrightness == 0 {
		warnings = append(warnings, fmt.Errorf("warning: global_brightness is 0 (all pixels off)"))
	}

	if math.IsNaN(p.Speed) || math.IsInf(p.Speed, 0) || p.Speed < 0 {
		warnings = append(warnings, fmt.Errorf("warning: speed must be a non-negative number, got %v", p.Speed))
	}

	if err := checkUnit("fade", p.Fade); err != nil {
		warnings = append(warnings, err)
	}

	if needsPalette(p.Painter) && len(p.SecondaryColors) == 0 {
		warnings = append(warnings, fmt.Errorf("warning: painter %q uses secondary_colors but none are set", p.Painter))
	}

	return warnings
}

func checkUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("warning: %s should be within 0-1, got %v", name, v)
	}
	return nil
}

// needsPalette reports painters that cycle through secondary colors.
func needsPalette(name string) bool {
	switch name {
	case "line", "fade":
		return true
	}
	return false
}

// FormatWarnings renders warnings as a numbered list.
func FormatWarnings(warnings []error) string {
	if len(warnings) == 0 {
		return "No warnings"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d warning(s):\n", len(warnings)))
	for i, err := range warnings {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, strings.TrimPrefix(err.Error(), "warning: ")))
	}
	return sb.String()
}
