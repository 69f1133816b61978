// heartbeat blinks an LED the "blink without delay" way: the pin is
// toggled whenever a monotonic counter has moved on by one interval.
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

var logger = loggo.GetLogger("heartbeat")

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

func run(cfg *config.Config, args []string, out io.Writer) int {
	ctx, exit := context.WithCancel(context.Background())
	defer exit()

	a := &app{
		ctx:  ctx,
		exit: exit,
		cfg:  cfg,
		out:  out,
	}

	c := cli.NewApp()
	c.Name = "heartbeat"
	c.Usage = "toggle " + cfg.LEDPin + " once per interval without sleeping"
	c.ArgsUsage = "n|r|m"
	c.Description = "n counts nanoseconds, r microseconds, m milliseconds"
	c.HideVersion = true
	c.Writer = out
	c.ErrWriter = out
	c.Action = a.action

	err := c.Run(args)
	if err != nil {
		logger.Debugf("heartbeat failed: %v", err)
	}
	return failure.Code(err)
}
