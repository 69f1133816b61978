// hostinfo prints which periph host drivers loaded on this machine, the
// quickest way to see whether the I2C and GPIO tools can work here.
package main

import (
	"io"
	"os"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/config"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/logwriter"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/status"
	"github.com/juju/loggo"
	"github.com/urfave/cli"
)

const version = "1.0.0"

var logger = loggo.GetLogger("hostinfo")

var checkStatus = status.Check

func main() {
	cfg := config.Get()
	if err := logwriter.Setup(cfg); err != nil {
		logger.Criticalf("logwriter setup failed: %v", err)
		os.Exit(failure.Code(err))
	}

	os.Exit(run(os.Args, os.Stdout))
}

func run(args []string, out io.Writer) int {
	c := cli.NewApp()
	c.Name = "hostinfo"
	c.Usage = "report the host drivers and board"
	c.Version = version
	c.Writer = out
	c.ErrWriter = out
	c.Action = func(*cli.Context) error {
		st, err := checkStatus()
		if err != nil {
			_, _ = io.WriteString(out, "Error :: "+err.Error()+"\n")
			return err
		}
		return st.Write(out, c.Name)
	}

	err := c.Run(args)
	if err != nil {
		logger.Debugf("hostinfo failed: %v", err)
	}
	return failure.Code(err)
}
