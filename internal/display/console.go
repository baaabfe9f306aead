package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultColumns approximates how many glyphs fit on the panel.
const DefaultColumns = 21

// Console renders the display as a boxed text frame on a writer. Every change
// reprints the whole frame.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	columns int
	rows    Screen
}

// NewConsole creates a console display. columns <= 0 uses DefaultColumns.
func NewConsole(w io.Writer, columns int) *Console {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Console{w: w, columns: columns}
}

// Clear blanks all rows.
func (c *Console) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = Screen{}
	return c.flush()
}

// DrawLine sets row to text, truncated to the display width.
func (c *Console) DrawLine(text string, row int) error {
	if err := checkRow(row); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[row-1] = truncate(text, c.columns)
	return c.flush()
}

// Lines returns the current contents of every row.
func (c *Console) Lines() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

func (c *Console) flush() error {
	var b strings.Builder
	border := "+" + strings.Repeat("-", c.columns) + "+\n"
	b.WriteString(border)
	for _, line := range c.rows {
		pad := c.columns - utf8.RuneCountInString(line)
		fmt.Fprintf(&b, "|%s%s|\n", line, strings.Repeat(" ", pad))
	}
	b.WriteString(border)

	_, err := io.WriteString(c.w, b.String())
	return err
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
