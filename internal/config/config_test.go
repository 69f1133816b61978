package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type ConfigSuite struct{}

var _ = check.Suite(&ConfigSuite{})

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func (s *ConfigSuite) TestDefaults(c *check.C) {
	cfg, err := Load(env(nil))
	c.Assert(err, check.IsNil)
	c.Assert(cfg, check.DeepEquals, Default())
	c.Assert(cfg.I2CSpeedKHz, check.Equals, int64(100))
	c.Assert(cfg.LEDPin, check.Equals, "GPIO26")
	c.Assert(cfg.HeartbeatBeats, check.Equals, 11)
}

func (s *ConfigSuite) TestEnv(c *check.C) {
	cfg, err := Load(env(map[string]string{
		"I2C_BUS":            "sim",
		"I2C_SPEED_KHZ":      "400",
		"I2C_PROBE_INTERVAL": "2ms",
		"I2C_MARK_RESERVED":  "false",
		"I2C_SIM_DEVICES":    "0x3c,0x68",
		"LED_PIN":            "GPIO4",
		"HEARTBEAT_BEATS":    "3",
		"HEARTBEAT_INTERVAL": "250ms",
		"LOG_LEVEL":          "<root>=DEBUG",
		"LOG_PATH":           "/tmp/x.log",
	}))
	c.Assert(err, check.IsNil)
	c.Assert(cfg.I2CBus, check.Equals, "sim")
	c.Assert(cfg.I2CSpeedKHz, check.Equals, int64(400))
	c.Assert(cfg.I2CProbeInterval, check.Equals, 2*time.Millisecond)
	c.Assert(cfg.I2CMarkReserved, check.Equals, false)
	c.Assert(cfg.LEDPin, check.Equals, "GPIO4")
	c.Assert(cfg.HeartbeatBeats, check.Equals, 3)
	c.Assert(cfg.HeartbeatInterval, check.Equals, 250*time.Millisecond)
	c.Assert(cfg.LogLevel, check.Equals, "<root>=DEBUG")
	c.Assert(cfg.LogPath, check.Equals, "/tmp/x.log")

	devs, err := cfg.SimDevices()
	c.Assert(err, check.IsNil)
	c.Assert(devs, check.DeepEquals, []uint16{0x3C, 0x68})
}

func (s *ConfigSuite) TestInvalidEnv(c *check.C) {
	for k, v := range map[string]string{
		"I2C_SPEED_KHZ":      "fast",
		"I2C_PROBE_INTERVAL": "soon",
		"I2C_MARK_RESERVED":  "maybe",
		"I2C_SIM_DEVICES":    "0x3c,0x99",
		"HEARTBEAT_BEATS":    "0",
		"HEARTBEAT_INTERVAL": "-1s",
	} {
		_, err := Load(env(map[string]string{k: v}))
		c.Check(err, check.NotNil, check.Commentf("%s=%s", k, v))
		c.Check(failure.KindOf(err), check.Equals, failure.Configuration)
	}
}

func (s *ConfigSuite) TestFileThenEnv(c *check.C) {
	dir, err := ioutil.TempDir("", "rpi-tools-config")
	c.Assert(err, check.IsNil)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	err = ioutil.WriteFile(path, []byte(`
i2c_bus: "1"
i2c_speed_khz: 50
i2c_probe_interval: 10ms
i2c_sim_devices: ["0x20", "0x21"]
led_pin: GPIO17
heartbeat_beats: 5
`), 0600)
	c.Assert(err, check.IsNil)

	cfg, err := Load(env(map[string]string{
		"CONFIG_PATH": path,
		"LED_PIN":     "GPIO4",
	}))
	c.Assert(err, check.IsNil)
	c.Assert(cfg.I2CBus, check.Equals, "1")
	c.Assert(cfg.I2CSpeedKHz, check.Equals, int64(50))
	c.Assert(cfg.I2CProbeInterval, check.Equals, 10*time.Millisecond)
	c.Assert(cfg.LEDPin, check.Equals, "GPIO4")
	c.Assert(cfg.HeartbeatBeats, check.Equals, 5)
	c.Assert(cfg.I2CMarkReserved, check.Equals, true)

	devs, err := cfg.SimDevices()
	c.Assert(err, check.IsNil)
	c.Assert(devs, check.DeepEquals, []uint16{0x20, 0x21})
}

func (s *ConfigSuite) TestMissingFile(c *check.C) {
	_, err := Load(env(map[string]string{"CONFIG_PATH": "/nonexistent/config.yaml"}))
	c.Assert(err, check.ErrorMatches, "config: failed reading config file: .*")
	c.Assert(failure.KindOf(err), check.Equals, failure.Configuration)
}
