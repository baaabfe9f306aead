package pagination_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/weatherpager/internal/clock"
	"github.com/breatheroute/weatherpager/internal/display"
	"github.com/breatheroute/weatherpager/internal/pagination"
	"github.com/breatheroute/weatherpager/internal/weather"
)

// recorder captures each full screen shown through display.Show.
type recorder struct {
	current display.Screen
	shown   []display.Screen
	err     error
}

func (r *recorder) Clear() error {
	if r.err != nil {
		return r.err
	}
	if r.current != (display.Screen{}) {
		r.shown = append(r.shown, r.current)
	}
	r.current = display.Screen{}
	return nil
}

func (r *recorder) DrawLine(text string, row int) error {
	r.current[row-1] = text
	return nil
}

func (r *recorder) screens() []display.Screen {
	out := append([]display.Screen{}, r.shown...)
	if r.current != (display.Screen{}) {
		out = append(out, r.current)
	}
	return out
}

func part(hour int, rain *string) weather.ForecastPart {
	return weather.ForecastPart{
		DateTime:  weather.DateTime{Hour: hour, Zone: "UTC", Formatted: "5/3/2023 " + strconv.Itoa(hour) + ":0"},
		Temp:      "10C",
		FeelsLike: "8.5C",
		Humidity:  "80%",
		Wind:      "3m/s",
		Weather:   "Clouds",
		Rain:      rain,
	}
}

func forecast(hours int) *weather.Forecast {
	rain := "20.0%"
	fc := &weather.Forecast{Current: part(0, nil)}
	for i := 0; i < hours; i++ {
		fc.Hourly = append(fc.Hourly, part(i+1, &rain))
	}
	return fc
}

func play(t *testing.T, fc *weather.Forecast) (*recorder, *clock.Fake, []pagination.Frame) {
	t.Helper()

	rec := &recorder{}
	clk := clock.NewFake(time.Unix(0, 0))
	var frames []pagination.Frame

	engine := pagination.NewEngine(pagination.EngineConfig{
		Renderer: rec,
		Clock:    clk,
		OnFrame:  func(f pagination.Frame) { frames = append(frames, f) },
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, engine.Play(fc))

	return rec, clk, frames
}

func phases(frames []pagination.Frame) []pagination.Phase {
	out := make([]pagination.Phase, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Phase)
	}
	return out
}

func TestEngine_NoData(t *testing.T) {
	rec, clk, frames := play(t, nil)

	assert.Equal(t, []pagination.Phase{pagination.PhaseNoData}, phases(frames))
	assert.Equal(t, []display.Screen{{"No data available", "", ""}}, rec.screens())
	assert.Empty(t, clk.Sleeps())
}

func TestEngine_CapsAtSevenHourlyPages(t *testing.T) {
	_, clk, frames := play(t, forecast(20))

	want := []pagination.Phase{pagination.PhaseCurrent}
	for i := 0; i < 7; i++ {
		want = append(want, pagination.PhaseHourly)
	}
	want = append(want, pagination.PhaseDone)
	assert.Equal(t, want, phases(frames))

	for i, f := range frames[1:8] {
		assert.Equal(t, i, f.Hour)
	}

	assert.Equal(t, []time.Duration{
		3 * time.Second,
		2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second,
		2 * time.Second, 2 * time.Second, 2 * time.Second,
	}, clk.Sleeps())
}

func TestEngine_FewerHoursThanCap(t *testing.T) {
	_, clk, frames := play(t, forecast(3))

	assert.Equal(t, []pagination.Phase{
		pagination.PhaseCurrent,
		pagination.PhaseHourly, pagination.PhaseHourly, pagination.PhaseHourly,
		pagination.PhaseDone,
	}, phases(frames))
	assert.Len(t, clk.Sleeps(), 4)
}

func TestEngine_NoHourly(t *testing.T) {
	_, _, frames := play(t, forecast(0))

	assert.Equal(t, []pagination.Phase{pagination.PhaseCurrent, pagination.PhaseDone}, phases(frames))
}

func TestEngine_ScreenContent(t *testing.T) {
	fc := forecast(2)
	fc.Current.DateTime.Formatted = "5/3/2023 9:7"
	fc.Current.Weather = "Clear"
	fc.Hourly[0].DateTime.Formatted = "5/3/2023 10:0"
	fc.Hourly[1].DateTime.Formatted = "5/3/2023 11:0"
	fc.Hourly[1].Rain = nil

	rec, _, _ := play(t, fc)

	assert.Equal(t, []display.Screen{
		{"C:5/3/2023 9:7UTC", "Tmp:8.5C Hm:80%", "Clear"},
		{"F:5/3/2023 10:0UTC", "Tmp:8.5C Hm:80%", "Clouds 20.0%"},
		{"F:5/3/2023 11:0UTC", "Tmp:8.5C Hm:80%", "Clouds"},
		{"End of forecast", "", ""},
	}, rec.screens())
}

func TestEngine_RenderErrorAborts(t *testing.T) {
	boom := errors.New("i2c write failed")
	rec := &recorder{err: boom}
	clk := clock.NewFake(time.Unix(0, 0))

	engine := pagination.NewEngine(pagination.EngineConfig{Renderer: rec, Clock: clk})

	err := engine.Play(forecast(5))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, clk.Sleeps())
}

func TestAdvance_StepByStep(t *testing.T) {
	fc := forecast(1)

	s := pagination.Start(fc)
	assert.Equal(t, pagination.State{Phase: pagination.PhaseCurrent}, s)

	frame, s := pagination.Advance(fc, s)
	assert.Equal(t, pagination.CurrentHold, frame.Hold)
	assert.Equal(t, pagination.State{Phase: pagination.PhaseHourly, Hour: 0}, s)

	frame, s = pagination.Advance(fc, s)
	assert.Equal(t, pagination.HourlyHold, frame.Hold)
	assert.Equal(t, pagination.State{Phase: pagination.PhaseDone}, s)

	frame, s = pagination.Advance(fc, s)
	assert.Equal(t, display.NewScreen(pagination.MessageEnd), frame.Screen)
	assert.True(t, s.Finished())

	frame, s = pagination.Advance(fc, s)
	assert.Equal(t, pagination.PhaseFinished, frame.Phase)
	assert.True(t, s.Finished())
}

func TestHourlyPages(t *testing.T) {
	assert.Equal(t, 0, pagination.HourlyPages(nil))
	assert.Equal(t, 4, pagination.HourlyPages(forecast(4)))
	assert.Equal(t, 7, pagination.HourlyPages(forecast(48)))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "hourly", pagination.PhaseHourly.String())
	assert.Equal(t, "unknown", pagination.Phase(42).String())
}
