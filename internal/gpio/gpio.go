// gpio drives output pins through periph. Pins are named the way periph's
// registry names them, e.g. "GPIO26" for BCM pin 26 on a Raspberry Pi.
package gpio

import (
	"sync"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

var logger = loggo.GetLogger("main.gpio")

// SimName selects a pin that only logs its level changes.
const SimName = "sim"

type output interface {
	String() string
	Out(l gpio.Level) error
}

// Pin is an output pin owned by the process until Release is called.
type Pin struct {
	mu       sync.Mutex
	out      output
	level    gpio.Level
	released bool
}

var hostInit = func() error {
	_, err := host.Init()
	return err
}

// Open claims the named pin as an output and drives it low.
func Open(name string) (*Pin, error) {
	var out output
	if name == SimName {
		out = &simPin{}
	} else {
		if err := hostInit(); err != nil {
			logger.Criticalf("host init failed: %v", err)
			return nil, failure.Wrap(errors.Wrap(err, "host init failed, are you running as root?"), failure.LibraryInitFailure, "gpio")
		}

		p := gpioreg.ByName(name)
		if p == nil {
			return nil, failure.New(failure.PinInitFailure, "gpio", "no such pin: %q", name)
		}
		out = p
	}

	pin := &Pin{out: out}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, failure.Wrap(errors.Wrapf(err, "failed to set %v as output", out), failure.PinInitFailure, "gpio")
	}
	return pin, nil
}

func (p *Pin) String() string {
	return "GPIO PIN: " + p.out.String()
}

func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return errors.Errorf("%v already released", p.out)
	}
	if err := p.out.Out(l); err != nil {
		return err
	}
	p.level = l
	return nil
}

// Level returns the last level successfully written.
func (p *Pin) Level() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Toggle inverts the pin and returns the new level.
func (p *Pin) Toggle() (gpio.Level, error) {
	l := !p.Level()
	if err := p.Out(l); err != nil {
		return p.Level(), err
	}
	return l, nil
}

// Release drives the pin low and gives it up. Only the first call has an
// effect.
func (p *Pin) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil
	}
	p.released = true

	err := p.out.Out(gpio.Low)
	p.level = gpio.Low
	if h, ok := p.out.(interface{ Halt() error }); ok {
		if herr := h.Halt(); herr != nil && err == nil {
			err = herr
		}
	}
	return err
}

type simPin struct {
	writes int
}

func (p *simPin) String() string {
	return SimName
}

func (p *simPin) Out(l gpio.Level) error {
	p.writes++
	logger.Tracef("sim pin -> %v", l)
	return nil
}
