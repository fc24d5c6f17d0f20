package painter

// Option is a painter identifier offered by the editor.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Name  string `yaml:"name" json:"name"`
}

// KnownPainters lists the painters shipped with current firmware.
var KnownPainters = []Option{
	{Value: "hex", Name: "Hex"},
	{Value: "line", Name: "Line"},
	{Value: "pulse", Name: "Pulse"},
	{Value: "rain", Name: "Rain"},
	{Value: "fade", Name: "Fade"},
	{Value: "disco", Name: "Disco"},
}

// FindOption returns the option with the given value.
func FindOption(options []Option, value string) (Option, bool) {
	for _, o := range options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// DisplayName returns the display name for value, or the raw value when
// the painter is not in options.
func DisplayName(options []Option, value string) string {
	if o, ok := FindOption(options, value); ok {
		return o.Name
	}
	return value
}

// NextOption cycles through options starting from current. An unknown
// current value moves to the first option.
func NextOption(options []Option, current string, step int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o.Value == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0].Value
	}
	n := len(options)
	return options[((idx+step)%n+n)%n].Value
}
