package paramsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/wave/internal/painter"
)

// Mode selects when edits are written to the device
type Mode string

const (
	// ModeLive writes after every edit
	ModeLive Mode = "live"
	// ModeManual writes only on Save
	ModeManual Mode = "manual"
)

// ParseMode parses "live" or "manual".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive:
		return ModeLive, nil
	case ModeManual:
		return ModeManual, nil
	}
	return "", fmt.Errorf("unknown sync mode %q (want live or manual)", s)
}

// Config is passed to New
type Config struct {
	// Mode selects live or manual sync (default: manual)
	Mode Mode

	// Endpoint identifies the remote in logs
	Endpoint string

	// Painters is the enumeration offered to the operator
	// (default: painter.KnownPainters)
	Painters []painter.Option

	// Strict makes form contract violations panic
	Strict bool

	// WriteTimeout bounds each write; zero leaves it to the transport
	WriteTimeout time.Duration

	// HistorySize is how many acknowledged snapshots are kept
	// (default: DefaultHistorySize)
	HistorySize int

	// EventBuffer sizes the Events channel (default: 64)
	EventBuffer int
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeManual
	}
	if len(c.Painters) == 0 {
		c.Painters = painter.KnownPainters
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	return c
}
