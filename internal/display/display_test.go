package display_test

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/breatheroute/weatherpager/internal/display"
)

func TestConsole_DrawAndClear(t *testing.T) {
	var out bytes.Buffer
	c := display.NewConsole(&out, 0)

	require.NoError(t, c.DrawLine("Location:", display.Row1))
	require.NoError(t, c.DrawLine("Potton,uk", display.Row2))
	assert.Equal(t, display.Screen{"Location:", "Potton,uk", ""}, c.Lines())
	assert.Contains(t, out.String(), "|Potton,uk            |")

	require.NoError(t, c.Clear())
	assert.Equal(t, display.Screen{}, c.Lines())
}

func TestConsole_Truncates(t *testing.T) {
	c := display.NewConsole(&bytes.Buffer{}, 5)

	require.NoError(t, c.DrawLine("Getting weather for", display.Row1))
	assert.Equal(t, "Getti", c.Lines()[0])
}

func TestConsole_InvalidRow(t *testing.T) {
	c := display.NewConsole(&bytes.Buffer{}, 0)

	assert.ErrorIs(t, c.DrawLine("x", 0), display.ErrInvalidRow)
	assert.ErrorIs(t, c.DrawLine("x", 4), display.ErrInvalidRow)
}

func TestShow_ReplacesScreen(t *testing.T) {
	c := display.NewConsole(&bytes.Buffer{}, 0)
	require.NoError(t, c.DrawLine("stale", display.Row3))

	require.NoError(t, display.Show(c, display.NewScreen("End of forecast")))
	assert.Equal(t, display.Screen{"End of forecast", "", ""}, c.Lines())
}

func TestNewScreen_IgnoresExtraLines(t *testing.T) {
	s := display.NewScreen("a", "b", "c", "d")
	assert.Equal(t, display.Screen{"a", "b", "c"}, s)
}

type fakePanel struct {
	bounds image.Rectangle
	draws  int
	last   *image1bit.VerticalLSB
}

func (p *fakePanel) Bounds() image.Rectangle { return p.bounds }

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, _ image.Point) error {
	p.draws++
	img := image1bit.NewVerticalLSB(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, src.At(x, y))
		}
	}
	p.last = img
	return nil
}

func litPixels(img *image1bit.VerticalLSB, minY, maxY int) int {
	n := 0
	for y := minY; y < maxY; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestSSD1306_DrawLineLightsOnlyItsRow(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, display.PanelWidth, display.PanelHeight)}
	d := display.NewSSD1306(panel)

	require.NoError(t, d.Clear())
	require.NoError(t, d.DrawLine("Weather obtained", display.Row3))

	require.NotNil(t, panel.last)
	assert.Equal(t, 2, panel.draws)
	assert.Zero(t, litPixels(panel.last, 0, 16), "rows 1 and 2 stay blank")
	assert.Positive(t, litPixels(panel.last, 16, display.PanelHeight))
}

func TestSSD1306_RedrawReplacesRow(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, display.PanelWidth, display.PanelHeight)}
	d := display.NewSSD1306(panel)

	require.NoError(t, d.DrawLine(strings.Repeat("#", 18), display.Row1))
	full := litPixels(d.Frame(), 0, 10)

	require.NoError(t, d.DrawLine(".", display.Row1))
	assert.Less(t, litPixels(d.Frame(), 0, 10), full)
}

func TestSSD1306_Clear(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, display.PanelWidth, display.PanelHeight)}
	d := display.NewSSD1306(panel)

	require.NoError(t, d.DrawLine("Location:", display.Row1))
	require.NoError(t, d.Clear())

	assert.Zero(t, litPixels(panel.last, 0, display.PanelHeight))
}

func TestSSD1306_InvalidRow(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, display.PanelWidth, display.PanelHeight)}
	d := display.NewSSD1306(panel)

	assert.ErrorIs(t, d.DrawLine("x", 9), display.ErrInvalidRow)
	assert.Zero(t, panel.draws)
}
