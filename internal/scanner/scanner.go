// scanner probes the 7-bit I2C address space for responding devices.
// Every probe is a single one byte read addressed explicitly through the
// Bus, reserved addresses are never put on the wire.
package scanner

import (
	"context"
	"fmt"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"golang.org/x/time/rate"
)

var logger = loggo.GetLogger("main.scanner")

// Bus is the part of an I2C bus the scanner needs. periph's i2c.Bus
// satisfies it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

type Outcome int

const (
	Absent Outcome = iota
	Present
	Reserved
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Reserved:
		return "reserved"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Entry struct {
	Address Address
	Outcome Outcome
}

// Report holds one Entry per address, in ascending address order.
type Report []Entry

// Present returns the addresses that answered.
func (r Report) Present() []Address {
	var ret []Address
	for _, e := range r {
		if e.Outcome == Present {
			ret = append(ret, e.Address)
		}
	}
	return ret
}

type Options struct {
	// ProbeInterval is the minimum time between two bus transactions,
	// zero disables pacing.
	ProbeInterval time.Duration
	// MarkReserved renders reserved addresses with their own symbol in the
	// table instead of the absent one.
	MarkReserved bool
}

// Scanner is not safe for concurrent use, the bus only carries one
// transaction at a time.
type Scanner struct {
	bus     Bus
	opts    Options
	limiter *rate.Limiter
}

func New(bus Bus, opts Options) *Scanner {
	s := &Scanner{
		bus:  bus,
		opts: opts,
	}
	if opts.ProbeInterval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(opts.ProbeInterval), 1)
	}
	return s
}

func (s *Scanner) Options() Options {
	return s.opts
}

// Probe checks a single address. A failed read, whatever the reason, means
// Absent; it is never retried. A done ctx is reported as Interrupted before
// the bus is touched.
func (s *Scanner) Probe(ctx context.Context, a Address) (Outcome, error) {
	if IsReserved(a) {
		return Reserved, nil
	}

	if err := ctx.Err(); err != nil {
		return Absent, failure.Wrap(err, failure.Interrupted, "probe "+a.String())
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Absent, failure.Wrap(err, failure.Interrupted, "probe "+a.String())
		}
	}

	var rx [1]byte
	if err := s.bus.Tx(uint16(a), nil, rx[:]); err != nil {
		logger.Tracef("no answer at %v: %v", a, err)
		return Absent, nil
	}

	logger.Debugf("device answered at %v", a)
	return Present, nil
}

// Sweep probes 0x00 through 0x7F in order. It stops at the first probe
// that finds ctx done and returns the entries gathered so far.
func (s *Scanner) Sweep(ctx context.Context) (Report, error) {
	report := make(Report, 0, AddressCount)
	for a := 0; a < AddressCount; a++ {
		o, err := s.Probe(ctx, Address(a))
		if err != nil {
			return report, err
		}
		report = append(report, Entry{Address: Address(a), Outcome: o})
	}

	logger.Debugf("sweep done, %d devices present", len(report.Present()))
	return report, nil
}

// ProbeOne parses arg as a hexadecimal address and probes it. The error is
// only set for Invalid and carries why the argument was rejected.
func (s *Scanner) ProbeOne(ctx context.Context, arg string) (Address, Outcome, error) {
	a, err := ParseAddress(arg)
	if err != nil {
		return 0, Invalid, err
	}

	o, err := s.Probe(ctx, a)
	if err != nil {
		return a, Invalid, err
	}
	return a, o, nil
}
