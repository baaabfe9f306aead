// Package display draws line-oriented text screens on the device display.
package display

import (
	"errors"
	"fmt"
)

// Rows available on the 128x32 panel.
const (
	Row1 = 1
	Row2 = 2
	Row3 = 3

	// Rows is the number of text rows.
	Rows = 3
)

// ErrInvalidRow is returned for a row outside 1..Rows.
var ErrInvalidRow = errors.New("invalid display row")

// Renderer is a text display surface.
type Renderer interface {
	// Clear blanks the whole screen.
	Clear() error

	// DrawLine draws text on row (1-based), replacing what was on that row.
	DrawLine(text string, row int) error
}

// Screen is a full screen of text; empty rows are left blank.
type Screen [Rows]string

// NewScreen builds a screen from up to three lines.
func NewScreen(lines ...string) Screen {
	var s Screen
	copy(s[:], lines)
	return s
}

// Show clears r and draws every non-empty row of s.
func Show(r Renderer, s Screen) error {
	if err := r.Clear(); err != nil {
		return fmt.Errorf("clearing display: %w", err)
	}
	for i, line := range s {
		if line == "" {
			continue
		}
		if err := r.DrawLine(line, i+1); err != nil {
			return fmt.Errorf("drawing row %d: %w", i+1, err)
		}
	}
	return nil
}

func checkRow(row int) error {
	if row < Row1 || row > Rows {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return nil
}
