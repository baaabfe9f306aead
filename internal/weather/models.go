// Package weather defines the raw provider forecast, the display model derived
// from it, and the transformation between the two.
package weather

import (
	"context"
	"errors"

	"github.com/breatheroute/weatherpager/internal/location"
)

// Weather errors.
var (
	// ErrNetwork covers transport failures, timeouts and non-success responses.
	ErrNetwork = errors.New("forecast provider unreachable")

	// ErrParse is returned when the response body is not a usable forecast.
	ErrParse = errors.New("malformed forecast response")

	// ErrRateLimited is returned when the local request budget is exhausted.
	ErrRateLimited = errors.New("forecast request budget exhausted")
)

// Provider fetches a raw forecast for a location. The call blocks for the full
// round trip.
type Provider interface {
	Fetch(ctx context.Context, loc location.Location) (*RawForecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// RawForecastPart is one time slice as received from the provider.
type RawForecastPart struct {
	// Timestamp is seconds since the Unix epoch.
	Timestamp int64

	// Temperature and FeelsLike in Celsius
	Temperature float64
	FeelsLike   float64

	// Humidity percentage (0-100)
	Humidity float64

	// WindSpeed in m/s
	WindSpeed float64

	// Condition is the weather category ("Rain", "Clouds"), Description the detail.
	Condition   string
	Description string

	// PrecipProb is the probability of precipitation (0-1), nil when the
	// provider omitted it.
	PrecipProb *float64
}

// RawForecast is the current conditions and hourly outlook for one location.
type RawForecast struct {
	Current RawForecastPart
	Hourly  []RawForecastPart
}

// DateTime is a timestamp decomposed in local time for display.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int

	// Zone is the abbreviation of the local time source, e.g. "UTC".
	Zone string

	// Formatted is "D/M/Y H:M" without zero padding.
	Formatted string
}

// ForecastPart is a time slice ready for the screen. Numeric fields carry their units.
type ForecastPart struct {
	DateTime      DateTime
	Temp          string
	FeelsLike     string
	Humidity      string
	Wind          string
	Weather       string
	WeatherDetail string

	// Rain is the precipitation chance, nil when the source part had none.
	Rain *string
}

// Forecast is the display model for one fetch.
type Forecast struct {
	Current ForecastPart
	Hourly  []ForecastPart
}
