package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel geometry of the 128x32 OLED.
const (
	PanelWidth  = 128
	PanelHeight = 32
)

// rowBaselines are the glyph baselines for rows 1-3, in pixels from the top.
var rowBaselines = [Rows]int{9, 19, 29}

// rowHeight is the band cleared before a row is redrawn.
const rowHeight = 10

// Panel is the subset of the SSD1306 driver the renderer uses.
type Panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// SSD1306 renders text rows onto a monochrome OLED through a local framebuffer.
type SSD1306 struct {
	panel Panel
	fb    *image1bit.VerticalLSB
	face  font.Face
}

// OpenSSD1306 initializes a 128x32 SSD1306 on bus at the default address.
func OpenSSD1306(bus i2c.Bus) (*SSD1306, *ssd1306.Dev, error) {
	opts := ssd1306.DefaultOpts
	opts.W = PanelWidth
	opts.H = PanelHeight
	opts.Sequential = true

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing ssd1306: %w", err)
	}

	return NewSSD1306(dev), dev, nil
}

// NewSSD1306 creates a renderer drawing onto panel.
func NewSSD1306(panel Panel) *SSD1306 {
	return &SSD1306{
		panel: panel,
		fb:    image1bit.NewVerticalLSB(panel.Bounds()),
		face:  basicfont.Face7x13,
	}
}

// Clear blanks the framebuffer and the panel.
func (d *SSD1306) Clear() error {
	d.fill(d.fb.Bounds(), image1bit.Off)
	return d.flush()
}

// DrawLine blanks the band of row and draws text into it.
func (d *SSD1306) DrawLine(text string, row int) error {
	if err := checkRow(row); err != nil {
		return err
	}

	baseline := rowBaselines[row-1]
	band := image.Rect(0, baseline-rowHeight+1, d.fb.Bounds().Dx(), baseline+1).Intersect(d.fb.Bounds())
	d.fill(band, image1bit.Off)

	drawer := font.Drawer{
		Dst:  d.fb,
		Src:  &image.Uniform{C: image1bit.On},
		Face: d.face,
		Dot:  fixed.P(0, baseline),
	}
	drawer.DrawString(text)

	return d.flush()
}

// Frame returns the framebuffer, for inspection.
func (d *SSD1306) Frame() *image1bit.VerticalLSB {
	return d.fb
}

func (d *SSD1306) fill(r image.Rectangle, c image1bit.Bit) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d.fb.SetBit(x, y, c)
		}
	}
}

func (d *SSD1306) flush() error {
	if err := d.panel.Draw(d.fb.Bounds(), d.fb, image.Point{}); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
