// Package pagination plays a forecast back as a timed sequence of screens:
// current conditions, then a capped number of hourly pages, then an end marker.
package pagination

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/weatherpager/internal/clock"
	"github.com/breatheroute/weatherpager/internal/display"
	"github.com/breatheroute/weatherpager/internal/weather"
)

// Playback timing and bounds.
const (
	CurrentHold    = 3 * time.Second
	HourlyHold     = 2 * time.Second
	MaxHourlyPages = 7
)

// Messages shown outside the forecast pages.
const (
	MessageNoData = "No data available"
	MessageEnd    = "End of forecast"
)

// Phase is a playback step.
type Phase int

// Playback phases.
const (
	PhaseNoData Phase = iota
	PhaseCurrent
	PhaseHourly
	PhaseDone
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNoData:
		return "no_data"
	case PhaseCurrent:
		return "current"
	case PhaseHourly:
		return "hourly"
	case PhaseDone:
		return "done"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is a position in the playback. Hour is meaningful only in PhaseHourly.
type State struct {
	Phase Phase
	Hour  int
}

// Finished reports whether playback has nothing left to show.
func (s State) Finished() bool {
	return s.Phase == PhaseFinished
}

// Frame is one screen and how long it stays up.
type Frame struct {
	Phase  Phase
	Hour   int
	Screen display.Screen
	Hold   time.Duration
}

// Start returns the first state for fc. A nil forecast plays the no-data screen.
func Start(fc *weather.Forecast) State {
	if fc == nil {
		return State{Phase: PhaseNoData}
	}
	return State{Phase: PhaseCurrent}
}

// Advance renders s and returns the state that follows it. It is pure, so a
// caller may interleave steps with other work.
func Advance(fc *weather.Forecast, s State) (Frame, State) {
	switch s.Phase {
	case PhaseNoData:
		return Frame{Phase: PhaseNoData, Screen: display.NewScreen(MessageNoData)}, State{Phase: PhaseFinished}

	case PhaseCurrent:
		frame := Frame{
			Phase:  PhaseCurrent,
			Screen: partScreen("C:", fc.Current, false),
			Hold:   CurrentHold,
		}
		return frame, hourlyOrDone(fc, 0)

	case PhaseHourly:
		frame := Frame{
			Phase:  PhaseHourly,
			Hour:   s.Hour,
			Screen: partScreen("F:", fc.Hourly[s.Hour], true),
			Hold:   HourlyHold,
		}
		return frame, hourlyOrDone(fc, s.Hour+1)

	case PhaseDone:
		return Frame{Phase: PhaseDone, Screen: display.NewScreen(MessageEnd)}, State{Phase: PhaseFinished}

	default:
		return Frame{Phase: PhaseFinished}, State{Phase: PhaseFinished}
	}
}

// HourlyPages is the number of hourly pages playback of fc will show.
func HourlyPages(fc *weather.Forecast) int {
	if fc == nil {
		return 0
	}
	return min(len(fc.Hourly), MaxHourlyPages)
}

func hourlyOrDone(fc *weather.Forecast, hour int) State {
	if hour < HourlyPages(fc) {
		return State{Phase: PhaseHourly, Hour: hour}
	}
	return State{Phase: PhaseDone}
}

func partScreen(label string, p weather.ForecastPart, withRain bool) display.Screen {
	conditions := p.Weather
	if withRain && p.Rain != nil {
		conditions += " " + *p.Rain
	}

	return display.NewScreen(
		label+p.DateTime.Formatted+p.DateTime.Zone,
		"Tmp:"+p.FeelsLike+" Hm:"+p.Humidity,
		conditions,
	)
}

// Observer is notified of every frame shown.
type Observer func(Frame)

// EngineConfig holds configuration for the playback engine.
type EngineConfig struct {
	// Renderer is the display surface (required).
	Renderer display.Renderer

	// Clock is used for page holds (optional, defaults to the system clock).
	Clock clock.Clock

	// OnFrame is called after each frame is drawn (optional).
	OnFrame Observer

	// Logger for playback operations.
	Logger zerolog.Logger
}

// Engine drives Advance to completion, holding each frame on screen.
type Engine struct {
	renderer display.Renderer
	clock    clock.Clock
	onFrame  Observer
	logger   zerolog.Logger
}

// NewEngine creates a new playback engine.
func NewEngine(cfg EngineConfig) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	return &Engine{
		renderer: cfg.Renderer,
		clock:    clk,
		onFrame:  cfg.OnFrame,
		logger:   cfg.Logger,
	}
}

// Play shows fc from start to finish and blocks for the whole sequence.
// It cannot be interrupted; a render error aborts it.
func (e *Engine) Play(fc *weather.Forecast) error {
	for s := Start(fc); !s.Finished(); {
		frame, next := Advance(fc, s)

		if err := display.Show(e.renderer, frame.Screen); err != nil {
			return err
		}

		e.logger.Debug().
			Stringer("phase", frame.Phase).
			Int("hour", frame.Hour).
			Dur("hold", frame.Hold).
			Msg("page shown")

		if e.onFrame != nil {
			e.onFrame(frame)
		}

		if frame.Hold > 0 {
			e.clock.Sleep(frame.Hold)
		}
		s = next
	}

	return nil
}
