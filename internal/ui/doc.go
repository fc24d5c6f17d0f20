// Package ui renders the one-shot output of the wave-cfg commands.
//
// Commands print a Header describing what they are about to do and a
// Result box describing the outcome. Details are ordered key/value
// lines. The interactive editor lives in package editor; this package
// only formats text and never reads input.
//
// Zap logging is silent unless WAVE_LOG_LEVEL is set, so this output is
// normally all the operator sees.
package ui
