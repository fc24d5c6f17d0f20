package editor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/muurk/wave/internal/form"
	"github.com/muurk/wave/internal/painter"
)

type rowKind int

const (
	rowPainter rowKind = iota
	rowBrightness
	rowSpeed
	rowColor
	rowFade
	rowBidirectional
	rowSecondary
	rowAddColor
)

// row is one line of the form
type row struct {
	kind  rowKind
	path  string
	label string
	index int // secondary colour index, -1 otherwise
}

// buildRows lays out the form for p: scalar fields, then one row per
// secondary colour, then the add row.
func buildRows(p painter.Params) []row {
	rows := []row{
		{kind: rowPainter, path: form.FieldPainter, label: "Painter", index: -1},
		{kind: rowBrightness, path: form.FieldGlobalBrightness, label: "Brightness", index: -1},
		{kind: rowSpeed, path: form.FieldSpeed, label: "Speed", index: -1},
		{kind: rowColor, path: form.FieldColor, label: "Color", index: -1},
		{kind: rowFade, path: form.FieldFade, label: "Fade", index: -1},
		{kind: rowBidirectional, path: form.FieldBidirectional, label: "Bidirectional", index: -1},
	}
	for i := range p.SecondaryColors {
		rows = append(rows, row{
			kind:  rowSecondary,
			path:  form.ColorPath(i),
			label: fmt.Sprintf("Secondary %d", i+1),
			index: i,
		})
	}
	return append(rows, row{kind: rowAddColor, label: "+ add color", index: -1})
}

func (r row) isColor() bool {
	return r.kind == rowColor || r.kind == rowSecondary
}

func (r row) isNumber() bool {
	return r.kind == rowBrightness || r.kind == rowSpeed || r.kind == rowFade
}

// step is the left/right increment of a numeric row
func (r row) step() float64 {
	if r.kind == rowSpeed {
		return 0.1
	}
	return 0.05
}

// nudge moves a numeric value by n steps, keeping unit fields in 0..1
// and speed non-negative.
func (r row) nudge(v float64, n int) float64 {
	v += float64(n) * r.step()
	v = math.Round(v*1000) / 1000
	if v < 0 {
		v = 0
	}
	if r.kind != rowSpeed && v > 1 {
		v = 1
	}
	return v
}

// numberValue reads the numeric field r displays
func (r row) numberValue(p painter.Params) float64 {
	switch r.kind {
	case rowBrightness:
		return p.GlobalBrightness
	case rowSpeed:
		return p.Speed
	case rowFade:
		return p.Fade
	}
	return 0
}

// colorValue reads the colour r displays
func (r row) colorValue(p painter.Params) painter.Color {
	if r.kind == rowSecondary && r.index < len(p.SecondaryColors) {
		return p.SecondaryColors[r.index]
	}
	return p.Color
}

// text is the editable text of r, used to prefill the input
func (r row) text(p painter.Params) string {
	switch {
	case r.kind == rowPainter:
		return p.Painter
	case r.isNumber():
		return formatNumber(r.numberValue(p))
	case r.isColor():
		return r.colorValue(p).String()
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
