package input

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// ErrPinNotFound is returned when a configured pin name is unknown to the host.
var ErrPinNotFound = errors.New("gpio pin not found")

// Default pin names for a Raspberry Pi with an OLED bonnet.
const (
	DefaultNextPin  = "GPIO5"
	DefaultFetchPin = "GPIO6"
	DefaultShowPin  = "GPIO13"
)

// PinConfig names the GPIO pin for each button.
type PinConfig struct {
	Next  string
	Fetch string
	Show  string
}

// Pins are the opened button lines.
type Pins struct {
	Next  gpio.PinIO
	Fetch gpio.PinIO
	Show  gpio.PinIO
}

// OpenPins looks up each pin and configures it as an input with the internal
// pull-up enabled. host.Init must have been called first.
func OpenPins(cfg PinConfig) (*Pins, error) {
	next, err := openPin(cfg.Next, DefaultNextPin)
	if err != nil {
		return nil, err
	}
	fetch, err := openPin(cfg.Fetch, DefaultFetchPin)
	if err != nil {
		return nil, err
	}
	show, err := openPin(cfg.Show, DefaultShowPin)
	if err != nil {
		return nil, err
	}

	return &Pins{Next: next, Fetch: fetch, Show: show}, nil
}

// ControllerConfig returns a controller configuration reading from the pins.
func (p *Pins) ControllerConfig() ControllerConfig {
	return ControllerConfig{Next: p.Next, Fetch: p.Fetch, Show: p.Show}
}

// Halt releases the pins.
func (p *Pins) Halt() error {
	return errors.Join(p.Next.Halt(), p.Fetch.Halt(), p.Show.Halt())
}

func openPin(name, fallback string) (gpio.PinIO, error) {
	if name == "" {
		name = fallback
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}

	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configuring %s as input: %w", name, err)
	}

	return pin, nil
}
