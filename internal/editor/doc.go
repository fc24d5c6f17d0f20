// Package editor is the terminal front end for painter params.
//
// The picker screen browses mDNS for painters (or takes a URL typed by
// the operator). The editor screen renders a paramsync.Engine's form as
// one row per field and colour, with swatches and validation warnings,
// and maps keys onto form edits:
//
//	↑/↓      move between rows
//	←/→      cycle the painter, nudge numbers, toggle bidirectional
//	enter    type a value; colours accept #hex, rgb(), hsv() and hsl()
//	a / x    append a colour / remove the selected one
//	s        save (manual mode)
//	u        discard edits back to the last acknowledged state
//	r        re-read the device
//
// Whether edits are written immediately or on save is the engine's
// decision; the editor only reports what the engine does.
package editor
