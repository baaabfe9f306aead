// Package app is the device control loop: it polls the buttons and dispatches
// to location cycling, forecast fetching and playback.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/breatheroute/weatherpager/internal/clock"
	"github.com/breatheroute/weatherpager/internal/display"
	"github.com/breatheroute/weatherpager/internal/input"
	"github.com/breatheroute/weatherpager/internal/location"
	"github.com/breatheroute/weatherpager/internal/weather"
)

// DefaultPollInterval is the pause between loop iterations.
const DefaultPollInterval = 50 * time.Millisecond

// Screen text.
const (
	MessageReady       = "Ready for forecasting"
	MessageLocation    = "Location:"
	MessageFetching    = "Getting weather for"
	MessageObtained    = "Weather obtained"
	MessageFetchFailed = "Weather failed"
	ReasonNetwork      = "Network error"
	ReasonParse        = "Bad response"
	ReasonRateLimited  = "Try again later"
)

// Mode is what the loop is currently doing.
type Mode int

// Loop modes.
const (
	ModeSelectingLocation Mode = iota
	ModeFetching
	ModePlaying
)

func (m Mode) String() string {
	switch m {
	case ModeSelectingLocation:
		return "selecting_location"
	case ModeFetching:
		return "fetching"
	case ModePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// State is the cached forecast and whether it belongs to the selected location.
// Both fields are always replaced together.
type State struct {
	// Forecast is the last successful fetch. It may be stale when HasForecast is false.
	Forecast *weather.Forecast

	// HasForecast is set by a successful fetch and cleared by a location change
	// or a failed fetch.
	HasForecast bool
}

// Poller yields the debounced button events for one loop iteration.
type Poller interface {
	Poll() []input.Button
}

// Player plays a forecast back on the display; nil means no data.
type Player interface {
	Play(fc *weather.Forecast) error
}

// MachineConfig holds configuration for the state machine.
type MachineConfig struct {
	Registry    *location.Registry
	Input       Poller
	Provider    weather.Provider
	Transformer *weather.Transformer
	Player      Player
	Renderer    display.Renderer

	// Clock paces the loop (optional, defaults to the system clock).
	Clock clock.Clock

	// PollInterval is the pause between iterations (default: 50ms).
	PollInterval time.Duration

	// Metrics and Tracer are optional.
	Metrics *Metrics
	Tracer  trace.Tracer

	Logger zerolog.Logger
}

// Machine owns the application state and runs the control loop.
// It is single-threaded: Step and Run must not be called concurrently.
type Machine struct {
	registry     *location.Registry
	input        Poller
	provider     weather.Provider
	transformer  *weather.Transformer
	player       Player
	renderer     display.Renderer
	clock        clock.Clock
	pollInterval time.Duration
	metrics      *Metrics
	tracer       trace.Tracer
	logger       zerolog.Logger

	mode  Mode
	state State
}

// NewMachine creates a new state machine in ModeSelectingLocation with no forecast.
func NewMachine(cfg MachineConfig) *Machine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	transformer := cfg.Transformer
	if transformer == nil {
		transformer = weather.NewTransformer(nil)
	}

	return &Machine{
		registry:     cfg.Registry,
		input:        cfg.Input,
		provider:     cfg.Provider,
		transformer:  transformer,
		player:       cfg.Player,
		renderer:     cfg.Renderer,
		clock:        clk,
		pollInterval: pollInterval,
		metrics:      cfg.Metrics,
		tracer:       tracer,
		logger:       cfg.Logger,
	}
}

// State returns the current application state.
func (m *Machine) State() State {
	return m.state
}

// Mode returns the current loop mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Location returns the selected location.
func (m *Machine) Location() location.Location {
	return m.registry.Current()
}

// Ready draws the idle screen shown once startup has completed.
func (m *Machine) Ready() error {
	return display.Show(m.renderer, display.NewScreen(MessageReady))
}

// Run loops until ctx is cancelled. Cancellation is only observed between
// iterations; a fetch or playback in progress always completes.
// Returns the first rendering error.
func (m *Machine) Run(ctx context.Context) error {
	m.logger.Info().
		Int("locations", m.registry.Len()).
		Str("location", m.registry.Current().Name).
		Msg("control loop started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("control loop stopped")
			return nil
		default:
		}

		if err := m.Step(ctx); err != nil {
			return err
		}

		m.clock.Sleep(m.pollInterval)
	}
}

// Step polls once and handles every event in order: next location, fetch,
// show. Several events in one poll are all handled.
func (m *Machine) Step(ctx context.Context) error {
	for _, b := range m.input.Poll() {
		m.metrics.RecordPress(ctx, b)

		var err error
		switch b {
		case input.NextLocation:
			err = m.nextLocation()
		case input.FetchForecast:
			err = m.fetch(ctx)
		case input.ShowForecast:
			err = m.show()
		}

		m.mode = ModeSelectingLocation
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *Machine) nextLocation() error {
	m.registry.Advance()
	m.state = State{Forecast: m.state.Forecast, HasForecast: false}

	loc := m.registry.Current()
	m.logger.Info().
		Int("index", m.registry.Index()).
		Str("location", loc.Name).
		Msg("location selected")

	return display.Show(m.renderer, display.NewScreen(MessageLocation, loc.Name))
}

// fetch blocks for the whole round trip. The request is detached from ctx so
// a shutdown signal does not abort it halfway; the HTTP timeout still bounds it.
func (m *Machine) fetch(ctx context.Context) error {
	m.mode = ModeFetching
	loc := m.registry.Current()

	if err := display.Show(m.renderer, display.NewScreen(MessageFetching, loc.Name)); err != nil {
		return err
	}

	fetchID := "fetch_" + uuid.New().String()[:22]
	logger := m.logger.With().
		Str("fetch_id", fetchID).
		Str("location", loc.Name).
		Str("provider", m.provider.Name()).
		Logger()

	ctx, span := m.tracer.Start(context.WithoutCancel(ctx), "forecast.fetch",
		trace.WithAttributes(
			attribute.String("fetch.id", fetchID),
			attribute.String("location.name", loc.Name),
		))
	defer span.End()

	start := m.clock.Now()
	raw, err := m.provider.Fetch(ctx, loc)
	if err != nil {
		outcome, reason := classify(err)
		m.state = State{Forecast: m.state.Forecast, HasForecast: false}
		m.metrics.RecordFetch(ctx, loc.Name, outcome, m.clock.Now().Sub(start).Seconds())

		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logger.Error().Err(err).Str("outcome", outcome).Msg("forecast fetch failed")

		return display.Show(m.renderer, display.NewScreen(MessageFetchFailed, reason))
	}

	fc := m.transformer.Transform(raw)
	m.state = State{Forecast: fc, HasForecast: true}
	m.metrics.RecordFetch(ctx, loc.Name, OutcomeSuccess, m.clock.Now().Sub(start).Seconds())

	span.SetAttributes(attribute.Int("forecast.hourly", len(fc.Hourly)))
	logger.Info().
		Int("hourly", len(fc.Hourly)).
		Str("current", fc.Current.Weather).
		Msg("forecast obtained")

	return m.renderer.DrawLine(MessageObtained, display.Row3)
}

func (m *Machine) show() error {
	m.mode = ModePlaying

	var fc *weather.Forecast
	if m.state.HasForecast {
		fc = m.state.Forecast
	}

	m.logger.Info().
		Bool("has_forecast", fc != nil).
		Str("location", m.registry.Current().Name).
		Msg("playing forecast")

	return m.player.Play(fc)
}

func classify(err error) (outcome, reason string) {
	switch {
	case errors.Is(err, weather.ErrRateLimited):
		return OutcomeRateLimited, ReasonRateLimited
	case errors.Is(err, weather.ErrParse):
		return OutcomeParse, ReasonParse
	default:
		return OutcomeNetwork, ReasonNetwork
	}
}
