// status reports what the host side of periph found on this machine:
// the drivers it loaded, skipped or failed and whether the board is a
// Raspberry Pi.
package status

import (
	"fmt"
	"io"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"periph.io/x/periph"
	"periph.io/x/periph/host"
	"periph.io/x/periph/host/rpi"
)

var logger = loggo.GetLogger("main.status")

type Driver struct {
	Name string
	Err  string
}

type Status struct {
	RaspberryPi bool
	Loaded      []Driver
	Skipped     []Driver
	Failed      []Driver
}

var hostInit = host.Init

// Check initialises the host drivers and collects the outcome.
func Check() (*Status, error) {
	state, err := hostInit()
	if err != nil {
		logger.Criticalf("host init failed: %v", err)
		return nil, failure.Wrap(errors.Wrap(err, "host init failed, are you running as root?"), failure.LibraryInitFailure, "status")
	}

	s := fromState(state)
	s.RaspberryPi = rpi.Present()
	for _, d := range s.Failed {
		logger.Warningf("driver %v failed: %v", d.Name, d.Err)
	}
	return s, nil
}

func fromState(state *periph.State) *Status {
	s := &Status{}
	if state == nil {
		return s
	}

	for _, d := range state.Loaded {
		s.Loaded = append(s.Loaded, Driver{Name: d.String()})
	}
	for _, f := range state.Skipped {
		s.Skipped = append(s.Skipped, failed(f))
	}
	for _, f := range state.Failed {
		s.Failed = append(s.Failed, failed(f))
	}
	return s
}

func failed(f periph.DriverFailure) Driver {
	d := Driver{Name: f.D.String()}
	if f.Err != nil {
		d.Err = f.Err.Error()
	}
	return d
}

// Write prints the status in the tools' "name :: key :: value" style.
func (s *Status) Write(w io.Writer, prefix string) error {
	if _, err := fmt.Fprintf(w, "%-11s :: Raspberry Pi :: %v\n", prefix, yesNo(s.RaspberryPi)); err != nil {
		return err
	}

	sections := []struct {
		title   string
		drivers []Driver
	}{
		{"Loaded", s.Loaded},
		{"Skipped", s.Skipped},
		{"Failed", s.Failed},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "%-11s :: %s drivers :: %d\n", prefix, sec.title, len(sec.drivers)); err != nil {
			return err
		}
		for _, d := range sec.drivers {
			line := "    " + d.Name
			if d.Err != "" {
				line += ": " + d.Err
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
