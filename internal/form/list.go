package form

import (
	"fmt"

	"github.com/muurk/wave/internal/painter"
)

// ColorList is the ordered list of secondary colors being edited.
// It is not safe for concurrent use; Controller serialises access.
type ColorList struct {
	entries []painter.Color
}

// NewColorList returns a list holding a copy of colors.
func NewColorList(colors []painter.Color) *ColorList {
	l := &ColorList{}
	l.Reset(colors)
	return l
}

// Reset replaces the whole list with a copy of colors.
func (l *ColorList) Reset(colors []painter.Color) {
	l.entries = make([]painter.Color, len(colors))
	copy(l.entries, colors)
}

// Append adds a black entry at the end and returns its index.
func (l *ColorList) Append() int {
	l.entries = append(l.entries, painter.Black)
	return len(l.entries) - 1
}

// RemoveAt deletes the entry at index, shifting later entries down.
// The list is unchanged when index is out of range.
func (l *ColorList) RemoveAt(index int) error {
	if err := l.check(index); err != nil {
		return err
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return nil
}

// Len returns the number of entries.
func (l *ColorList) Len() int {
	return len(l.entries)
}

// At returns the entry at index.
func (l *ColorList) At(index int) (painter.Color, error) {
	if err := l.check(index); err != nil {
		return painter.Color{}, err
	}
	return l.entries[index], nil
}

// Set replaces the entry at index.
func (l *ColorList) Set(index int, c painter.Color) error {
	if err := l.check(index); err != nil {
		return err
	}
	l.entries[index] = c
	return nil
}

// Values returns a copy of the entries.
func (l *ColorList) Values() []painter.Color {
	out := make([]painter.Color, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ColorList) check(index int) error {
	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(l.entries))
	}
	return nil
}
