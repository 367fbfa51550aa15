package gpio

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	periphpin "periph.io/x/conn/v3/pin"
	"periph.io/x/host/v3"

	"github.com/rulebridge/rulebridge-go/pkg/pin"
)

// ErrNoSuchLine is returned when the host has no GPIO with the line number.
var ErrNoSuchLine = errors.New("no such gpio line")

// Periph drives GPIO lines through periph.io.
//
// Open-drain modes are emulated: driving high releases the line (floating
// input), driving low switches to an output held low.
type Periph struct {
	mu    sync.Mutex
	pins  map[pin.Line]gpio.PinIO
	modes map[pin.Line]pin.Mode
}

var _ pin.Driver = (*Periph)(nil)

// NewPeriph initializes the periph host drivers.
func NewPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &Periph{
		pins:  make(map[pin.Line]gpio.PinIO),
		modes: make(map[pin.Line]pin.Mode),
	}, nil
}

func (p *Periph) lookup(l pin.Line) (gpio.PinIO, error) {
	if io, ok := p.pins[l]; ok {
		return io, nil
	}
	io := gpioreg.ByName(fmt.Sprintf("GPIO%d", l))
	if io == nil {
		return nil, fmt.Errorf("%w: GPIO%d", ErrNoSuchLine, l)
	}
	p.pins[l] = io
	return io, nil
}

// Configure applies the mode to the line.
func (p *Periph) Configure(l pin.Line, mode pin.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, err := p.lookup(l)
	if err != nil {
		return err
	}

	switch mode {
	case pin.ModeInput, pin.ModeOpenDrain, pin.ModeOutputOpenDrain:
		err = io.In(gpio.Float, gpio.NoEdge)
	case pin.ModeInputPullUp:
		err = io.In(gpio.PullUp, gpio.NoEdge)
	case pin.ModeInputPullDown:
		err = io.In(gpio.PullDown, gpio.NoEdge)
	case pin.ModeOutput:
		err = io.Out(gpio.Low)
	default:
		return fmt.Errorf("%w: %s", pin.ErrUnsupportedMode, mode)
	}
	if err != nil {
		return err
	}
	p.modes[l] = mode
	return nil
}

// Read samples the line.
func (p *Periph) Read(l pin.Line) (pin.Level, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, err := p.lookup(l)
	if err != nil {
		return pin.Low, err
	}
	if io.Read() == gpio.High {
		return pin.High, nil
	}
	return pin.Low, nil
}

// Write drives the line.
func (p *Periph) Write(l pin.Line, level pin.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, err := p.lookup(l)
	if err != nil {
		return err
	}

	if p.modes[l] == pin.ModeOutputOpenDrain {
		if level == pin.High {
			return io.In(gpio.Float, gpio.NoEdge)
		}
		return io.Out(gpio.Low)
	}
	return io.Out(toPeriph(level))
}

// Reset returns the line to a floating input.
func (p *Periph) Reset(l pin.Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, err := p.lookup(l)
	if err != nil {
		return err
	}
	delete(p.modes, l)
	return io.In(gpio.Float, gpio.NoEdge)
}

// Function describes what the line is currently doing, as reported by the
// host driver.
func (p *Periph) Function(l pin.Line) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, err := p.lookup(l)
	if err != nil {
		return "", err
	}
	if pf, ok := io.(periphpin.PinFunc); ok {
		return string(pf.Func()), nil
	}
	return io.Function(), nil
}

func toPeriph(level pin.Level) gpio.Level {
	if level == pin.High {
		return gpio.High
	}
	return gpio.Low
}
