package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/gpio"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/heartbeat"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
	pgpio "periph.io/x/periph/conn/gpio"
)

func (a *app) action(c *cli.Context) error {
	fmt.Fprintf(a.out, "Start\n")

	if c.NArg() > 1 {
		fmt.Fprintf(a.out, "Error :: One argument expected\n")
		return failure.New(failure.UnsupportedOption, "heartbeat", "one argument expected, got %d", c.NArg())
	}

	res, err := heartbeat.ParseResolution(c.Args().First())
	if err != nil {
		fmt.Fprintf(a.out, "Error :: %v\n", err)
		_ = cli.ShowAppHelp(c)
		return err
	}
	fmt.Fprintf(a.out, "%s test\n", res.Name)

	pin, err := gpio.Open(a.cfg.LEDPin)
	if err != nil {
		fmt.Fprintf(a.out, "Error :: %v\n", err)
		return err
	}
	defer func() {
		if err := pin.Release(); err != nil {
			logger.Warningf("releasing %v failed: %v", pin, err)
		}
		fmt.Fprintf(a.out, "End\n")
	}()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return heartbeat.Run(ctx, pin, heartbeat.Options{
			Resolution: res,
			Interval:   a.cfg.HeartbeatInterval,
			Beats:      a.cfg.HeartbeatBeats,
			OnBeat: func(beat int, l pgpio.Level) {
				fmt.Fprintf(a.out, "Heart Beat :: %d\n", beat)
				logger.Tracef("%v -> %v", pin, l)
			},
		})
	})
	g.Go(func() error {
		return waitSignal(ctx)
	})

	return g.Wait()
}

// waitSignal returns an Interrupted error on SIGINT, SIGTERM or SIGHUP and
// nil once ctx is done.
func waitSignal(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(c)

	select {
	case s := <-c:
		logger.Warningf("Got signal: %s, exiting cleanly", s)
		return failure.New(failure.Interrupted, "heartbeat", "got signal %s", s)
	case <-ctx.Done():
		return nil
	}
}
