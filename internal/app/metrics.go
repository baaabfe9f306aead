package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/breatheroute/weatherpager/internal/input"
	"github.com/breatheroute/weatherpager/internal/pagination"
)

const instrumentationName = "github.com/breatheroute/weatherpager/internal/app"

// Fetch outcomes recorded on the fetch counter.
const (
	OutcomeSuccess     = "success"
	OutcomeNetwork     = "network_error"
	OutcomeParse       = "parse_error"
	OutcomeRateLimited = "rate_limited"
)

// Metrics holds the OpenTelemetry instruments for the control loop.
type Metrics struct {
	buttonPresses metric.Int64Counter
	fetches       metric.Int64Counter
	fetchDuration metric.Float64Histogram
	pagesShown    metric.Int64Counter
}

// NewMetrics creates the instruments on meter. A nil meter uses the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	buttonPresses, err := meter.Int64Counter(
		"weatherpager.button.presses",
		metric.WithDescription("Debounced button events"),
		metric.WithUnit("{press}"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"weatherpager.forecast.fetches",
		metric.WithDescription("Forecast fetch attempts by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"weatherpager.forecast.fetch.duration",
		metric.WithDescription("Forecast fetch and transform time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	pagesShown, err := meter.Int64Counter(
		"weatherpager.pages.shown",
		metric.WithDescription("Playback screens shown by phase"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		buttonPresses: buttonPresses,
		fetches:       fetches,
		fetchDuration: fetchDuration,
		pagesShown:    pagesShown,
	}, nil
}

// RecordPress counts a debounced button event.
func (m *Metrics) RecordPress(ctx context.Context, b input.Button) {
	if m == nil {
		return
	}
	m.buttonPresses.Add(ctx, 1, metric.WithAttributes(attribute.String("button", b.String())))
}

// RecordFetch counts a fetch and its duration.
func (m *Metrics) RecordFetch(ctx context.Context, location, outcome string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("location", location),
		attribute.String("outcome", outcome),
	)
	m.fetches.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, seconds, attrs)
}

// RecordPage counts a playback frame. It has the pagination.Observer shape
// once bound to a context.
func (m *Metrics) RecordPage(ctx context.Context, f pagination.Frame) {
	if m == nil {
		return
	}
	m.pagesShown.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", f.Phase.String())))
}
