// Package openweathermap fetches forecasts from the OpenWeatherMap One Call API.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/breatheroute/weatherpager/internal/location"
	"github.com/breatheroute/weatherpager/internal/provider/resilience"
	"github.com/breatheroute/weatherpager/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultOneCallURL is the One Call 2.5 endpoint.
	DefaultOneCallURL = "https://api.openweathermap.org/data/2.5/onecall"

	// DefaultRequestsPerMinute matches the free-tier quota.
	DefaultRequestsPerMinute = 60
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// OneCallURL is the One Call API URL (optional, defaults to DefaultOneCallURL).
	OneCallURL string

	// RequestsPerMinute caps provider calls. Calls beyond the budget fail with
	// weather.ErrRateLimited instead of waiting.
	// Zero uses DefaultRequestsPerMinute, negative disables the cap.
	RequestsPerMinute int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	oneCallURL string
	limiter    *rate.Limiter
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	oneCallURL := cfg.OneCallURL
	if oneCallURL == "" {
		oneCallURL = DefaultOneCallURL
	}

	perMinute := cfg.RequestsPerMinute
	if perMinute == 0 {
		perMinute = DefaultRequestsPerMinute
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		hc := resilience.DefaultClientConfig(ProviderName)
		hc.Logger = cfg.Logger
		httpClient = resilience.NewClient(hc)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		oneCallURL: oneCallURL,
		limiter:    limiter,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Fetch retrieves current conditions and the hourly outlook for loc.
// Transport failures and non-200 responses wrap weather.ErrNetwork; an
// undecodable or incomplete body wraps weather.ErrParse.
func (c *Client) Fetch(ctx context.Context, loc location.Location) (*weather.RawForecast, error) {
	if !c.limiter.Allow() {
		return nil, weather.ErrRateLimited
	}

	query := url.Values{}
	query.Set("lat", loc.Latitude)
	query.Set("lon", loc.Longitude)
	query.Set("exclude", "alerts,minutely")
	query.Set("units", "metric")
	query.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oneCallURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("location", loc.Name).
		Str("lat", loc.Latitude).
		Str("lon", loc.Longitude).
		Msg("requesting forecast")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %w", weather.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", weather.ErrNetwork, resp.StatusCode)
	}

	var owmResp oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return nil, fmt.Errorf("%w: reading response: %w", weather.ErrNetwork, err)
		}
		return nil, fmt.Errorf("%w: decoding response: %w", weather.ErrParse, err)
	}

	return toRawForecast(&owmResp)
}

// toRawForecast converts the One Call response to the domain model.
func toRawForecast(resp *oneCallResponse) (*weather.RawForecast, error) {
	if resp.Current == nil {
		return nil, fmt.Errorf("%w: missing current conditions", weather.ErrParse)
	}

	current, err := resp.Current.toPart()
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}

	fc := &weather.RawForecast{
		Current: current,
		Hourly:  make([]weather.RawForecastPart, 0, len(resp.Hourly)),
	}

	for i, h := range resp.Hourly {
		part, err := h.toPart()
		if err != nil {
			return nil, fmt.Errorf("hourly[%d]: %w", i, err)
		}
		fc.Hourly = append(fc.Hourly, part)
	}

	return fc, nil
}

func (p *oneCallPart) toPart() (weather.RawForecastPart, error) {
	if len(p.Weather) == 0 {
		return weather.RawForecastPart{}, fmt.Errorf("%w: missing weather condition", weather.ErrParse)
	}

	return weather.RawForecastPart{
		Timestamp:   p.Dt,
		Temperature: p.Temp,
		FeelsLike:   p.FeelsLike,
		Humidity:    p.Humidity,
		WindSpeed:   p.WindSpeed,
		Condition:   p.Weather[0].Main,
		Description: p.Weather[0].Description,
		PrecipProb:  p.Pop,
	}, nil
}

// OpenWeatherMap API response structures.

type oneCallResponse struct {
	Lat     float64       `json:"lat"`
	Lon     float64       `json:"lon"`
	Current *oneCallPart  `json:"current"`
	Hourly  []oneCallPart `json:"hourly"`
}

type oneCallPart struct {
	Dt        int64    `json:"dt"`
	Temp      float64  `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	Humidity  float64  `json:"humidity"`
	WindSpeed float64  `json:"wind_speed"`
	Pop       *float64 `json:"pop"` // Probability of precipitation, absent for current conditions
	Weather   []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}
