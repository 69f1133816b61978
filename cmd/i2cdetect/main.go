package main

import (
	"context"
	"io"
	"os"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/config"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/logwriter"
	"github.com/juju/loggo"
	"github.com/urfave/cli"
)

const version = "1.0.1"

var logger = loggo.GetLogger("i2cdetect")

type app struct {
	ctx  context.Context
	exit context.CancelFunc
	cfg  *config.Config
	out  io.Writer
}

func main() {
	cfg := config.Get()
	if err := logwriter.Setup(cfg); err != nil {
		logger.Criticalf("logwriter setup failed: %v", err)
		os.Exit(failure.Code(err))
	}

	os.Exit(run(cfg, os.Args, os.Stdout))
}

// run returns the exit status instead of exiting so the bus is always
// released before the process ends.
func run(cfg *config.Config, args []string, out io.Writer) int {
	ctx, exit := context.WithCancel(context.Background())
	defer exit()

	a := &app{
		ctx:  ctx,
		exit: exit,
		cfg:  cfg,
		out:  out,
	}
	stop := a.handleSignals()
	defer stop()

	err := a.newCLI().Run(args)
	if err != nil {
		logger.Debugf("i2cdetect failed: %v", err)
	}
	return failure.Code(err)
}

func (a *app) newCLI() *cli.App {
	c := cli.NewApp()
	c.Name = "i2cdetect"
	c.Usage = "scan the I2C bus for 7-bit slave devices"
	c.UsageText = "i2cdetect [-v] [-m] [-s] [-h]\n   i2cdetect -a I2CADDRESS"
	c.Version = version
	c.Writer = a.out
	c.ErrWriter = a.out
	c.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "m",
			Usage: "print a table of the bus scan",
		},
		cli.BoolFlag{
			Name:  "s",
			Usage: "print the addresses devices answered at",
		},
		cli.StringFlag{
			Name:  "a",
			Usage: "probe a single hexadecimal `I2CADDRESS` (0x00 to 0x7F)",
		},
	}
	c.OnUsageError = a.usageError
	c.Action = a.action

	cli.VersionPrinter = a.printVersion
	return c
}
