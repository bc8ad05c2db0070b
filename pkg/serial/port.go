// Package serial opens the byte stream to a power supply.
package serial

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	tarm "github.com/tarm/serial"
)

// DefaultBaud is the bit rate used by the device.
const DefaultBaud = 115200

// Config describes a serial port.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// Port is an opened serial port.
type Port struct {
	cfg  Config
	port *tarm.Port
}

// Open opens the port with 8 data bits, no parity, 1 stop bit and no
// flow control.
func Open(cfg Config) (*Port, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device must be specified")
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	p, err := tarm.OpenPort(cfg.tarmConfig())
	if err != nil {
		return nil, fmt.Errorf("open serial %s failed: %w", cfg.Device, err)
	}
	glog.Infof("serial %s opened at %d", cfg.Device, cfg.Baud)
	return &Port{cfg: cfg, port: p}, nil
}

func (c Config) tarmConfig() *tarm.Config {
	return &tarm.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
		Size:        tarm.DefaultSize,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	}
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.cfg.Device
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	n, err := p.port.Write(b)
	if err != nil {
		return n, fmt.Errorf("serial write failed: %w", err)
	}
	return n, nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}
