package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/config"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type HeartbeatSuite struct{}

var _ = check.Suite(&HeartbeatSuite{})

func simConfig() *config.Config {
	cfg := config.Default()
	cfg.LEDPin = "sim"
	cfg.HeartbeatBeats = 3
	cfg.HeartbeatInterval = time.Millisecond
	return cfg
}

func runTool(cfg *config.Config, args ...string) (int, string) {
	out := &bytes.Buffer{}
	code := run(cfg, append([]string{"heartbeat"}, args...), out)
	return code, out.String()
}

func (s *HeartbeatSuite) TestBeats(c *check.C) {
	for _, arg := range []string{"n", "r", "m"} {
		code, out := runTool(simConfig(), arg)
		c.Assert(code, check.Equals, 0, check.Commentf("arg %s: %s", arg, out))
		c.Assert(strings.HasPrefix(out, "Start\n"), check.Equals, true)
		c.Assert(strings.Contains(out, "Heart Beat :: 1\nHeart Beat :: 2\nHeart Beat :: 3\nEnd\n"), check.Equals, true)
	}
}

func (s *HeartbeatSuite) TestArguments(c *check.C) {
	code, out := runTool(simConfig())
	c.Assert(code, check.Equals, 5)
	c.Assert(strings.Contains(out, "one argument expected"), check.Equals, true)
	c.Assert(strings.Contains(out, "End"), check.Equals, false)

	code, _ = runTool(simConfig(), "x")
	c.Assert(code, check.Equals, 4)

	code, _ = runTool(simConfig(), "n", "m")
	c.Assert(code, check.Equals, 4)
}

func (s *HeartbeatSuite) TestUnknownPin(c *check.C) {
	cfg := simConfig()
	cfg.LEDPin = "GPIO_DOES_NOT_EXIST"
	code, _ := runTool(cfg, "m")
	c.Assert(code, check.Equals, 2)
}

func (s *HeartbeatSuite) TestWaitSignalReturnsOnDone(c *check.C) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Assert(waitSignal(ctx), check.IsNil)
}
