package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wave/internal/painter"
)

// Printer writes styled command output
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer that writes to w.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the width used for boxes
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf formats to the output
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	h := NewHeader(title, command, params...)
	h.Width = p.width
	p.Println(h.Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	r := NewSuccessResult(title, details...)
	r.Width = p.width
	p.Println(r.Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	r := NewWarningResult(title, details...)
	r.Width = p.width
	p.Println(r.Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	r := NewFailureResult(title, err, troubleshooting...)
	r.Width = p.width
	p.Println(r.Render())
}

// Palette renders colors as a strip of swatches followed by their hex values
func Palette(colors []painter.Color) string {
	if len(colors) == 0 {
		return "(none)"
	}
	swatches := make([]string, len(colors))
	for i, c := range colors {
		swatches[i] = lipgloss.NewStyle().Background(lipgloss.Color(c.String())).Render("  ")
	}
	return strings.Join(swatches, "") + " " + painter.FormatPalette(colors)
}
