package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/weatherpager/internal/app"
	"github.com/breatheroute/weatherpager/internal/config"
	"github.com/breatheroute/weatherpager/internal/display"
	"github.com/breatheroute/weatherpager/internal/input"
	"github.com/breatheroute/weatherpager/internal/location"
	"github.com/breatheroute/weatherpager/internal/pagination"
	"github.com/breatheroute/weatherpager/internal/provider/resilience"
	"github.com/breatheroute/weatherpager/internal/telemetry"
	"github.com/breatheroute/weatherpager/internal/weather"
	"github.com/breatheroute/weatherpager/internal/weather/openweathermap"
)

// MessageMissingKey is shown when the device starts without an API key.
const MessageMissingKey = "Missing API key"

// Globals are the flags shared by every command.
type Globals struct {
	EnvFile   string `name:"env-file" default:"${default_env_file}" help:"File of KEY=value pairs loaded into the environment." type:"path"`
	Locations string `help:"YAML file listing the locations to cycle through (default: built-in list)." env:"WEATHERPAGER_LOCATIONS" type:"path"`
	LogLevel  string `default:"info" enum:"debug,info,warn,error" env:"LOG_LEVEL" help:"Log level (${enum})."`
	Timezone  string `env:"WEATHERPAGER_TZ" help:"IANA zone for forecast dates (default: system local time)."`
	DeviceID  string `name:"device-id" env:"WEATHERPAGER_DEVICE_ID" help:"Instance ID reported with telemetry."`

	Provider ProviderFlags `embed:"" prefix:"owm-"`
	OTel     OTelFlags     `embed:"" prefix:"otel-"`
}

// ProviderFlags configure the OpenWeatherMap client.
type ProviderFlags struct {
	OneCallURL        string        `name:"onecall-url" default:"${onecall_url}" env:"OWM_ONECALL_URL" help:"One Call API URL."`
	Timeout           time.Duration `default:"15s" env:"OWM_TIMEOUT" help:"HTTP timeout per request."`
	Retries           uint64        `default:"0" env:"OWM_RETRIES" help:"Retries on server errors."`
	RequestsPerMinute int           `name:"requests-per-minute" default:"60" env:"OWM_REQUESTS_PER_MINUTE" help:"Provider call budget (negative disables)."`
}

// OTelFlags configure telemetry export.
type OTelFlags struct {
	Enabled  bool          `env:"OTEL_ENABLED" help:"Export traces and metrics over OTLP."`
	Endpoint string        `default:"localhost:4317" env:"OTEL_EXPORTER_OTLP_ENDPOINT" help:"OTLP gRPC endpoint."`
	Interval time.Duration `default:"1m" env:"OTEL_METRIC_EXPORT_INTERVAL" help:"Metric export interval."`
}

// hardware is what a command supplies to the shared control loop.
type hardware struct {
	renderer display.Renderer
	buttons  input.ControllerConfig

	// done, when non-nil, stops the loop when closed.
	done <-chan struct{}
}

func (g *Globals) logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(g.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

// run wires the application and blocks until a signal arrives or hw.done closes.
func (g *Globals) run(log zerolog.Logger, env envLoad, hw hardware) error {
	log.Info().
		Str("build_time", BuildTime).
		Str("env_file", env.path).
		Msg("starting weather pager")

	if env.err != nil {
		return env.err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if hw.done != nil {
		go func() {
			select {
			case <-hw.done:
				log.Info().Msg("input closed")
				stop()
			case <-ctx.Done():
			}
		}()
	}

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		DeviceID:       g.DeviceID,
		OTLPEndpoint:   g.OTel.Endpoint,
		ExportInterval: g.OTel.Interval,
		Enabled:        g.OTel.Enabled,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if g.OTel.Enabled {
		log.Info().
			Str("otlp_endpoint", g.OTel.Endpoint).
			Msg("OpenTelemetry initialized")
	}

	apiKey, err := config.APIKey()
	if err != nil {
		if showErr := display.Show(hw.renderer, display.NewScreen(MessageMissingKey)); showErr != nil {
			log.Error().Err(showErr).Msg("failed to draw startup error")
		}
		return err
	}

	locations, err := config.LoadLocations(g.Locations)
	if err != nil {
		return err
	}
	registry, err := location.NewRegistry(locations)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	tz := time.Local
	if g.Timezone != "" {
		tz, err = time.LoadLocation(g.Timezone)
		if err != nil {
			return fmt.Errorf("%w: timezone: %w", config.ErrConfiguration, err)
		}
	}

	metrics, err := app.NewMetrics(tp.Meter)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	httpConfig := resilience.DefaultClientConfig(openweathermap.ProviderName)
	httpConfig.Timeout = g.Provider.Timeout
	httpConfig.MaxRetries = g.Provider.Retries
	httpConfig.Logger = log

	provider := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:            apiKey,
		OneCallURL:        g.Provider.OneCallURL,
		RequestsPerMinute: g.Provider.RequestsPerMinute,
		HTTPClient:        resilience.NewClient(httpConfig),
		Logger:            log,
	})

	engine := pagination.NewEngine(pagination.EngineConfig{
		Renderer: hw.renderer,
		OnFrame:  func(f pagination.Frame) { metrics.RecordPage(ctx, f) },
		Logger:   log,
	})

	buttons := hw.buttons
	buttons.Logger = log

	machine := app.NewMachine(app.MachineConfig{
		Registry:    registry,
		Input:       input.NewController(buttons),
		Provider:    provider,
		Transformer: weather.NewTransformer(tz),
		Player:      engine,
		Renderer:    hw.renderer,
		Metrics:     metrics,
		Tracer:      tp.Tracer,
		Logger:      log,
	})

	if err := machine.Ready(); err != nil {
		return err
	}

	log.Info().
		Int("locations", registry.Len()).
		Str("timezone", tz.String()).
		Msg("ready")

	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("weather pager stopped")
	return nil
}
