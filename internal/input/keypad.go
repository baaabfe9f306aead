package input

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// Keypad emulates the three buttons from line-oriented text input, for running
// without hardware. Each line "a"/"n", "b"/"f" or "c"/"s" holds the matching
// button low until the line is next read.
type Keypad struct {
	mu      sync.Mutex
	pending [3]bool
	done    chan struct{}
	logger  zerolog.Logger
}

// NewKeypad starts reading commands from r. Done is closed when r is exhausted.
func NewKeypad(r io.Reader, logger zerolog.Logger) *Keypad {
	k := &Keypad{
		done:   make(chan struct{}),
		logger: logger,
	}
	go k.scan(r)
	return k
}

// Done is closed once the input reaches EOF.
func (k *Keypad) Done() <-chan struct{} {
	return k.done
}

// ControllerConfig returns a controller configuration reading from the keypad.
func (k *Keypad) ControllerConfig() ControllerConfig {
	return ControllerConfig{
		Next:  keyLine{k: k, button: NextLocation},
		Fetch: keyLine{k: k, button: FetchForecast},
		Show:  keyLine{k: k, button: ShowForecast},
	}
}

// Press holds b low until its line is next read.
func (k *Keypad) Press(b Button) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending[b] = true
}

func (k *Keypad) scan(r io.Reader) {
	defer close(k.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		for _, ch := range cmd {
			switch ch {
			case 'a', 'n':
				k.Press(NextLocation)
			case 'b', 'f':
				k.Press(FetchForecast)
			case 'c', 's':
				k.Press(ShowForecast)
			default:
				k.logger.Warn().Str("key", string(ch)).Msg("unknown key, use a/n, b/f or c/s")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		k.logger.Error().Err(err).Msg("reading keypad input")
	}
}

func (k *Keypad) read(b Button) gpio.Level {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending[b] {
		k.pending[b] = false
		return gpio.Low
	}
	return gpio.High
}

type keyLine struct {
	k      *Keypad
	button Button
}

func (l keyLine) Read() gpio.Level {
	return l.k.read(l.button)
}
