// Package form holds the editable working copy of a painter's parameters.
//
// A Controller mirrors painter.Params with every leaf independently
// addressable by a path:
//
//	painter
//	global_brightness
//	speed
//	fade
//	bidirectional
//	color            color.r   color.g   color.b
//	secondary_colors[i]        secondary_colors[i].g ...
//
// Each successful Load, SetField, AppendColor or RemoveColorAt publishes a
// Change carrying the full snapshot to every subscriber. Nothing is ever
// dropped; a subscriber that stops reading applies backpressure to editors.
//
// Rejected edits never touch the working copy. Invalid paths and indices
// are wiring bugs: with Options.Strict they panic, otherwise they are
// logged as warnings and returned.
package form
