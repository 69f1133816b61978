package config

import (
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/scanner"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = loggo.GetLogger("main.config")

type Config struct {
	I2CBus           string        `yaml:"i2c_bus"`
	I2CSpeedKHz      int64         `yaml:"i2c_speed_khz"`
	I2CProbeInterval time.Duration `yaml:"i2c_probe_interval"`
	I2CMarkReserved  bool          `yaml:"i2c_mark_reserved"`
	I2CSimDevices    []string      `yaml:"i2c_sim_devices"`

	LEDPin            string        `yaml:"led_pin"`
	HeartbeatBeats    int           `yaml:"heartbeat_beats"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`
}

func Default() *Config {
	return &Config{
		I2CSpeedKHz:       100,
		I2CMarkReserved:   true,
		LEDPin:            "GPIO26",
		HeartbeatBeats:    11,
		HeartbeatInterval: time.Second,
		LogLevel:          "<root>=WARNING",
	}
}

// Get loads the configuration and exits the process if that fails.
func Get() *Config {
	cfg, err := Load(os.Getenv)
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(failure.Code(err))
	}
	return cfg
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_PATH if any, then the environment.
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, failure.Wrap(err, failure.Configuration, "config")
		}
	}

	if err := cfg.loadEnv(getenv); err != nil {
		return nil, failure.Wrap(err, failure.Configuration, "config")
	}

	if err := cfg.validate(); err != nil {
		return nil, failure.Wrap(err, failure.Configuration, "config")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed reading config file")
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "failed parsing config file %v", path)
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) error {
	if v := getenv("I2C_BUS"); v != "" {
		c.I2CBus = v
	}

	if v := getenv("I2C_SPEED_KHZ"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Errorf("failed parsing I2C_SPEED_KHZ env var: %q", v)
		}
		c.I2CSpeedKHz = n
	}

	if v := getenv("I2C_PROBE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Errorf("failed parsing I2C_PROBE_INTERVAL env var: %q", v)
		}
		c.I2CProbeInterval = d
	}

	if v := getenv("I2C_MARK_RESERVED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Errorf("failed parsing I2C_MARK_RESERVED env var: %q", v)
		}
		c.I2CMarkReserved = b
	}

	if v := getenv("I2C_SIM_DEVICES"); v != "" {
		c.I2CSimDevices = []string{v}
	}

	if v := getenv("LED_PIN"); v != "" {
		c.LEDPin = v
	}

	if v := getenv("HEARTBEAT_BEATS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("failed parsing HEARTBEAT_BEATS env var: %q", v)
		}
		c.HeartbeatBeats = n
	}

	if v := getenv("HEARTBEAT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Errorf("failed parsing HEARTBEAT_INTERVAL env var: %q", v)
		}
		c.HeartbeatInterval = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}

	return nil
}

func (c *Config) validate() error {
	if c.I2CSpeedKHz < 0 {
		return errors.Errorf("i2c speed must not be negative: %d", c.I2CSpeedKHz)
	}
	if c.I2CProbeInterval < 0 {
		return errors.Errorf("i2c probe interval must not be negative: %v", c.I2CProbeInterval)
	}
	if c.HeartbeatBeats < 1 {
		return errors.Errorf("heartbeat beats must be at least 1: %d", c.HeartbeatBeats)
	}
	if c.HeartbeatInterval <= 0 {
		return errors.Errorf("heartbeat interval must be positive: %v", c.HeartbeatInterval)
	}
	if c.LEDPin == "" {
		return errors.New("empty LED pin")
	}
	if _, err := c.SimDevices(); err != nil {
		return err
	}
	return nil
}

// SimDevices returns the addresses the simulated bus answers at. Every
// entry may itself be a comma separated list.
func (c *Config) SimDevices() ([]uint16, error) {
	var ret []uint16
	for _, s := range c.I2CSimDevices {
		as, err := scanner.ParseAddressList(s)
		if err != nil {
			return nil, errors.Wrap(err, "invalid simulated i2c device list")
		}
		for _, a := range as {
			ret = append(ret, uint16(a))
		}
	}
	return ret, nil
}
