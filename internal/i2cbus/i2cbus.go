// i2cbus opens the I2C bus the tools talk to, either a real periph bus or
// a simulated one for running on a workstation.
package i2cbus

import (
	"fmt"
	"io"
	"sync"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

var logger = loggo.GetLogger("main.i2cbus")

// SimName selects the simulated bus.
const SimName = "sim"

type Options struct {
	// Name is the periph bus name, "" opens the first bus found.
	Name     string
	SpeedKHz int64
	// SimDevices are the addresses the simulated bus answers at.
	SimDevices []uint16
}

// Bus is an owned I2C bus handle. Close releases it; calling Close more
// than once is harmless.
type Bus struct {
	name string

	mu     sync.Mutex
	conn   i2c.Bus
	closer io.Closer
	closed bool
}

var hostInit = func() error {
	_, err := host.Init()
	return err
}

func Open(opts Options) (*Bus, error) {
	if opts.Name == SimName {
		logger.Infof("using simulated i2c bus, devices at %v", formatAddrs(opts.SimDevices))
		sb := newSimBus(opts.SimDevices)
		return &Bus{name: SimName, conn: sb, closer: sb}, nil
	}

	if err := hostInit(); err != nil {
		logger.Criticalf("host init failed: %v", err)
		return nil, failure.Wrap(errors.Wrap(err, "host init failed, are you running as root?"), failure.LibraryInitFailure, "i2cbus")
	}

	bc, err := i2creg.Open(opts.Name)
	if err != nil {
		logger.Criticalf("could not open i2c bus %q: %v", opts.Name, err)
		return nil, failure.Wrap(errors.Wrapf(err, "could not open i2c bus %q", opts.Name), failure.BusInitFailure, "i2cbus")
	}

	if opts.SpeedKHz > 0 {
		if err := bc.SetSpeed(physic.Frequency(opts.SpeedKHz) * physic.KiloHertz); err != nil {
			// some buses have a fixed clock, scanning still works
			logger.Warningf("could not set i2c bus speed to %dkHz: %v", opts.SpeedKHz, err)
		}
	}

	logger.Debugf("opened i2c bus %v", bc)
	return &Bus{name: bc.String(), conn: bc, closer: bc}, nil
}

func (b *Bus) String() string {
	return b.name
}

// Tx runs one transaction against addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("i2c bus is closed")
	}
	return b.conn.Tx(addr, w, r)
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	logger.Debugf("closing i2c bus %v", b.name)
	return b.closer.Close()
}

func formatAddrs(as []uint16) string {
	s := "["
	for i, a := range as {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("0x%02X", a)
	}
	return s + "]"
}
