package weather

import (
	"fmt"
	"strconv"
	"time"
)

// Unit suffixes appended to numeric values.
const (
	UnitTemperature = "C"
	UnitHumidity    = "%"
	UnitWind        = "m/s"
)

// Transformer converts raw provider forecasts into the display model.
type Transformer struct {
	loc *time.Location
}

// NewTransformer creates a transformer that decomposes timestamps in loc.
// A nil loc uses the host's local time.
func NewTransformer(loc *time.Location) *Transformer {
	if loc == nil {
		loc = time.Local
	}
	return &Transformer{loc: loc}
}

// Transform converts the current part and every hourly part, keeping order.
// The hourly list is not capped here.
func (t *Transformer) Transform(raw *RawForecast) *Forecast {
	fc := &Forecast{
		Current: t.Part(raw.Current),
		Hourly:  make([]ForecastPart, 0, len(raw.Hourly)),
	}

	for _, h := range raw.Hourly {
		fc.Hourly = append(fc.Hourly, t.Part(h))
	}

	return fc
}

// Part converts a single raw part.
func (t *Transformer) Part(p RawForecastPart) ForecastPart {
	part := ForecastPart{
		DateTime:      t.DateTime(p.Timestamp),
		Temp:          formatNumber(p.Temperature) + UnitTemperature,
		FeelsLike:     formatNumber(p.FeelsLike) + UnitTemperature,
		Humidity:      formatNumber(p.Humidity) + UnitHumidity,
		Wind:          formatNumber(p.WindSpeed) + UnitWind,
		Weather:       p.Condition,
		WeatherDetail: p.Description,
	}

	if p.PrecipProb != nil {
		rain := fmt.Sprintf("%.1f%%", *p.PrecipProb*100)
		part.Rain = &rain
	}

	return part
}

// DateTime decomposes a Unix timestamp in the transformer's location.
func (t *Transformer) DateTime(ts int64) DateTime {
	lt := time.Unix(ts, 0).In(t.loc)
	zone, _ := lt.Zone()

	dt := DateTime{
		Year:   lt.Year(),
		Month:  int(lt.Month()),
		Day:    lt.Day(),
		Hour:   lt.Hour(),
		Minute: lt.Minute(),
		Zone:   zone,
	}
	dt.Formatted = fmt.Sprintf("%d/%d/%d %d:%d", dt.Day, dt.Month, dt.Year, dt.Hour, dt.Minute)

	return dt
}

// formatNumber renders v with the fewest digits that round-trip, so provider
// integers stay integers ("72") and decimals keep their precision ("12.5").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
