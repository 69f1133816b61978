package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/i2cbus"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/scanner"
	"github.com/urfave/cli"
	"periph.io/x/periph/host/rpi"
)

func (a *app) handleSignals() (stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case s := <-c:
			logger.Warningf("Got signal: %s, exiting cleanly", s)
			a.exit()
		case <-a.ctx.Done():
		}
	}()
	return func() { signal.Stop(c) }
}

// missingValue is how the flag package, which urfave/cli parses with,
// reports a value flag given last without its value. It is the only way to
// tell "-a" apart from an unknown option here.
const missingValue = "flag needs an argument"

func (a *app) usageError(c *cli.Context, err error, _ bool) error {
	if strings.Contains(err.Error(), missingValue) {
		fmt.Fprintf(a.out, "Error :: No i2c address specified!\n")
		return failure.Wrap(err, failure.MissingArgument, "i2cdetect")
	}

	fmt.Fprintf(a.out, "Error :: Unsupported option :: %v\n", err)
	_ = cli.ShowAppHelp(c)
	return failure.Wrap(err, failure.UnsupportedOption, "i2cdetect")
}

func (a *app) printVersion(c *cli.Context) {
	fmt.Fprintf(c.App.Writer, "%-11s :: Version Number :: %v\n", c.App.Name, c.App.Version)
	fmt.Fprintf(c.App.Writer, "%-11s :: Raspberry Pi :: %v\n", "host", rpi.Present())
}

func (a *app) action(c *cli.Context) error {
	if c.NArg() > 0 {
		fmt.Fprintf(a.out, "Error :: Unsupported option :: %q\n", c.Args().First())
		_ = cli.ShowAppHelp(c)
		return failure.New(failure.UnsupportedOption, "i2cdetect", "unsupported option %q", c.Args().First())
	}
	if c.NumFlags() == 0 {
		_ = cli.ShowAppHelp(c)
		return failure.New(failure.Usage, "i2cdetect", "no option given")
	}

	sc, done, err := a.setup()
	if err != nil {
		return err
	}
	defer done()

	if c.Bool("m") || c.Bool("s") {
		fmt.Fprintf(a.out, "%s :: I2C Bus Scan\n", c.App.Name)
		report, err := sc.Sweep(a.ctx)
		if err != nil {
			return err
		}

		if c.Bool("m") {
			if err := scanner.RenderTable(a.out, report, sc.Options().MarkReserved); err != nil {
				return err
			}
		}
		if c.Bool("s") {
			if err := scanner.RenderPresenceList(a.out, report); err != nil {
				return err
			}
		}
	}

	if c.IsSet("a") {
		return a.probeAddress(sc, c.String("a"))
	}
	return nil
}

// setup opens the bus, done must be called exactly once afterwards.
func (a *app) setup() (*scanner.Scanner, func(), error) {
	devs, err := a.cfg.SimDevices()
	if err != nil {
		return nil, nil, failure.Wrap(err, failure.Configuration, "i2cdetect")
	}

	bus, err := i2cbus.Open(i2cbus.Options{
		Name:       a.cfg.I2CBus,
		SpeedKHz:   a.cfg.I2CSpeedKHz,
		SimDevices: devs,
	})
	if err != nil {
		fmt.Fprintf(a.out, "Error :: %v\n", err)
		return nil, nil, err
	}

	sc := scanner.New(bus, scanner.Options{
		ProbeInterval: a.cfg.I2CProbeInterval,
		MarkReserved:  a.cfg.I2CMarkReserved,
	})

	done := func() {
		if err := bus.Close(); err != nil {
			logger.Warningf("closing i2c bus failed: %v", err)
		}
		fmt.Fprintf(a.out, "i2cdetect :: Done.\n")
	}
	return sc, done, nil
}

func (a *app) probeAddress(sc *scanner.Scanner, arg string) error {
	addr, o, err := sc.ProbeOne(a.ctx, arg)

	switch o {
	case scanner.Invalid:
		if failure.KindOf(err) == failure.Interrupted {
			return err
		}
		fmt.Fprintf(a.out, "Error :: Invalid hexadecimal 7-bit I2C address :: 0x00 to 0x7F :: %s\n", arg)
		return err

	case scanner.Reserved:
		fmt.Fprintf(a.out, "Error :: This is a Reserved address %v\n", addr)
		return failure.New(failure.ReservedAddress, "i2cdetect", "address %v is reserved", addr)

	case scanner.Present:
		fmt.Fprintln(a.out, scanner.PresentLine(addr))
		return nil

	default:
		fmt.Fprintln(a.out, scanner.AbsentLine(addr))
		return failure.New(failure.NoDevice, "i2cdetect", "no device at %v", addr)
	}
}
