package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/breatheroute/weatherpager/internal/display"
	"github.com/breatheroute/weatherpager/internal/input"
)

// DeviceCmd runs on the Raspberry Pi hardware.
type DeviceCmd struct {
	I2CBus   string `name:"i2c-bus" env:"WEATHERPAGER_I2C_BUS" help:"I2C bus name (default: first available)."`
	NextPin  string `name:"next-pin" default:"${next_pin}" env:"WEATHERPAGER_NEXT_PIN" help:"GPIO for the next location button."`
	FetchPin string `name:"fetch-pin" default:"${fetch_pin}" env:"WEATHERPAGER_FETCH_PIN" help:"GPIO for the fetch button."`
	ShowPin  string `name:"show-pin" default:"${show_pin}" env:"WEATHERPAGER_SHOW_PIN" help:"GPIO for the show forecast button."`
}

// Run opens the panel and buttons, then runs the control loop.
func (c *DeviceCmd) Run(g *Globals, env envLoad) (err error) {
	log := g.logger(os.Stdout)

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initializing host drivers: %w", err)
	}

	bus, err := i2creg.Open(c.I2CBus)
	if err != nil {
		return fmt.Errorf("opening i2c bus: %w", err)
	}
	defer func() { err = errors.Join(err, bus.Close()) }()

	screen, dev, err := display.OpenSSD1306(bus)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, dev.Halt()) }()

	pins, err := input.OpenPins(input.PinConfig{Next: c.NextPin, Fetch: c.FetchPin, Show: c.ShowPin})
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, pins.Halt()) }()

	log.Info().
		Str("i2c_bus", bus.String()).
		Str("next_pin", pins.Next.Name()).
		Str("fetch_pin", pins.Fetch.Name()).
		Str("show_pin", pins.Show.Name()).
		Msg("hardware initialized")

	return fatal(log, g.run(log, env, hardware{
		renderer: screen,
		buttons:  pins.ControllerConfig(),
	}))
}

// ConsoleCmd runs against the terminal: the screen is drawn on stdout and
// buttons are read from stdin.
type ConsoleCmd struct {
	Columns int `default:"21" help:"Screen width in characters."`
}

// Run starts the keypad and console renderer, then runs the control loop.
func (c *ConsoleCmd) Run(g *Globals, env envLoad) error {
	log := g.logger(zerolog.ConsoleWriter{Out: os.Stderr})

	keypad := input.NewKeypad(os.Stdin, log)

	return fatal(log, g.run(log, env, hardware{
		renderer: display.NewConsole(os.Stdout, c.Columns),
		buttons:  keypad.ControllerConfig(),
		done:     keypad.Done(),
	}))
}

// fatal logs a startup or loop error before handing it back to kong.
func fatal(log zerolog.Logger, err error) error {
	if err != nil {
		log.Error().Err(err).Msg("weather pager failed")
	}
	return err
}
