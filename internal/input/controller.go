// Package input turns three active-low button lines into debounced events.
package input

import (
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"github.com/breatheroute/weatherpager/internal/clock"
)

// DefaultDebounce is the window after an event during which the same button is ignored.
const DefaultDebounce = 500 * time.Millisecond

// Button identifies one of the three logical inputs.
type Button int

// Buttons in the order they are evaluated each poll.
const (
	NextLocation Button = iota
	FetchForecast
	ShowForecast
)

// Buttons lists every button in evaluation order.
var Buttons = []Button{NextLocation, FetchForecast, ShowForecast}

func (b Button) String() string {
	switch b {
	case NextLocation:
		return "next_location"
	case FetchForecast:
		return "fetch_forecast"
	case ShowForecast:
		return "show_forecast"
	default:
		return "unknown"
	}
}

// Line is a digital input. gpio.PinIn satisfies it.
// Lines are pulled up: High when idle, Low while the button is held.
type Line interface {
	Read() gpio.Level
}

// ControllerConfig holds configuration for the input controller.
type ControllerConfig struct {
	// Next, Fetch and Show are the lines for each button (required).
	Next  Line
	Fetch Line
	Show  Line

	// Clock supplies timestamps for debouncing (optional, defaults to the system clock).
	Clock clock.Clock

	// Debounce is the per-button suppression window (default: 500ms).
	Debounce time.Duration

	// Logger for input events.
	Logger zerolog.Logger
}

// Controller polls the button lines synchronously. There is no latching: a press
// that starts and ends between two polls is never seen.
type Controller struct {
	lines     [3]Line
	clock     clock.Clock
	debounce  time.Duration
	logger    zerolog.Logger
	lastFired [3]time.Time
	fired     [3]bool
}

// NewController creates a new input controller.
func NewController(cfg ControllerConfig) *Controller {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	return &Controller{
		lines:    [3]Line{cfg.Next, cfg.Fetch, cfg.Show},
		clock:    clk,
		debounce: debounce,
		logger:   cfg.Logger,
	}
}

// Poll reads every line once and returns the buttons that fired, in evaluation
// order. A held button fires again only once the debounce window since its
// previous event has elapsed.
func (c *Controller) Poll() []Button {
	now := c.clock.Now()

	var events []Button
	for _, b := range Buttons {
		line := c.lines[b]
		if line == nil || line.Read() != gpio.Low {
			continue
		}

		if c.fired[b] && now.Sub(c.lastFired[b]) < c.debounce {
			continue
		}

		c.fired[b] = true
		c.lastFired[b] = now
		events = append(events, b)

		c.logger.Debug().Stringer("button", b).Msg("button pressed")
	}

	return events
}
