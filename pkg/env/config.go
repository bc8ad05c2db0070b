// Package env provides common configuration of the commands.
package env

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/dps.go/pkg/dps150"
	"github.com/robotalks/dps.go/pkg/monitor"
	"github.com/robotalks/dps.go/pkg/serial"
	"github.com/robotalks/dps.go/pkg/telemetry"
)

// Config provides common options to talk to a power supply.
type Config struct {
	Device          string        `yaml:"device"`
	Baud            int           `yaml:"baud"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	BufferLimit     int           `yaml:"bufferLimit"`

	// ID identifies the power supply in telemetry.
	ID string `yaml:"id"`

	// MQTTBrokerURL specifies the MQTT broker to publish to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`

	// WebsocketAddr is the listen address of the telemetry server.
	WebsocketAddr string `yaml:"websocket"`

	TelemetryFormat string `yaml:"format"`
}

var (
	defaultConfig = Config{
		Device:          "/dev/ttyACM0",
		Baud:            serial.DefaultBaud,
		ReadTimeout:     100 * time.Millisecond,
		RefreshInterval: monitor.DefaultRefreshInterval,
		BufferLimit:     dps150.DefaultBufferLimit,
		TelemetryFormat: string(telemetry.FormatJSON),
	}

	// snapshot of defaultConfig before flags are parsed.
	baseConfig Config

	configFile string

	flagFields = map[string]func(dst, src *Config){
		"device":       func(dst, src *Config) { dst.Device = src.Device },
		"baud":         func(dst, src *Config) { dst.Baud = src.Baud },
		"read-timeout": func(dst, src *Config) { dst.ReadTimeout = src.ReadTimeout },
		"refresh":      func(dst, src *Config) { dst.RefreshInterval = src.RefreshInterval },
		"buffer-limit": func(dst, src *Config) { dst.BufferLimit = src.BufferLimit },
		"id":           func(dst, src *Config) { dst.ID = src.ID },
		"mqtt":         func(dst, src *Config) { dst.MQTTBrokerURL = src.MQTTBrokerURL },
		"ws":           func(dst, src *Config) { dst.WebsocketAddr = src.WebsocketAddr },
		"format":       func(dst, src *Config) { dst.TelemetryFormat = src.TelemetryFormat },
	}
)

func init() {
	if val := os.Getenv("DPS_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("DPS_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		} else {
			glog.Warningf("invalid DPS_BAUD %q ignored", val)
		}
	}
	if val := os.Getenv("DPS_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("DPS_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
	baseConfig = defaultConfig
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, overridden by flags.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial read timeout.")
	flag.DurationVar(&defaultConfig.RefreshInterval, "refresh", defaultConfig.RefreshInterval, "Interval of requesting all values, 0 to disable.")
	flag.IntVar(&defaultConfig.BufferLimit, "buffer-limit", defaultConfig.BufferLimit, "Max bytes buffered while waiting for a complete frame, raised to at least 260.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Power supply ID used in telemetry.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address of telemetry server.")
	flag.StringVar(&defaultConfig.TelemetryFormat, "format", defaultConfig.TelemetryFormat, "Telemetry format: json or proto.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
// If a config file is specified, it's loaded on top of the defaults
// and the flags explicitly set override it.
func NewConfig() (*Config, error) {
	if configFile == "" {
		conf := defaultConfig
		return &conf, nil
	}
	conf := baseConfig
	if err := conf.LoadFile(configFile); err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		if fn := flagFields[f.Name]; fn != nil {
			fn(&conf, &defaultConfig)
		}
	})
	return &conf, nil
}

// MustNewConfig creates Config and fails on error.
func MustNewConfig() *Config {
	conf, err := NewConfig()
	if err != nil {
		glog.Exit(err)
	}
	return conf
}

// LoadFile overlays the values in a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.Load(data)
}

// Load overlays the values in YAML content.
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SerialConfig returns the serial port configuration.
func (c *Config) SerialConfig() serial.Config {
	return serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	}
}

// Format parses TelemetryFormat.
func (c *Config) Format() (telemetry.Format, error) {
	return telemetry.ParseFormat(c.TelemetryFormat)
}

// NewMonitor opens the serial port and creates a Monitor over it.
func (c *Config) NewMonitor() (*monitor.Monitor, error) {
	port, err := serial.Open(c.SerialConfig())
	if err != nil {
		return nil, err
	}
	m := monitor.New(c.ID, port,
		dps150.WithBaud(c.Baud),
		dps150.WithBufferLimit(c.BufferLimit))
	m.RefreshInterval = c.RefreshInterval
	return m, nil
}

// MustNewMonitor creates Monitor and fails on error.
func (c *Config) MustNewMonitor() *monitor.Monitor {
	m, err := c.NewMonitor()
	if err != nil {
		glog.Exit(err)
	}
	return m
}
