package sh

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dps.go/pkg/dps150"
	"github.com/robotalks/dps.go/pkg/monitor"
)

func parseByte(args []string) (byte, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expect exactly one value")
	}
	val, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", args[0], err)
	}
	return byte(val), nil
}

func parseSwitch(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expect on or off")
	}
	switch args[0] {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, got %q", args[0])
}

func setByteCmd(field dps150.Field) func(c *ishell.Context) {
	return MustBeConnected(func(c *ishell.Context) {
		val, err := parseByte(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		DoCommand(c, func(ctx context.Context) error {
			return ShellFrom(c).Session.Monitor.SetByte(ctx, field, val)
		})
	})
}

func formatStats(st dps150.Stats) string {
	return fmt.Sprintf("frames:%d checksum_errors:%d skipped:%d unknown:%d field_errors:%d dropped:%d",
		st.Frames, st.ChecksumErrors, st.SkippedBytes, st.UnknownFields, st.FieldErrors, st.DroppedBytes)
}

func formatInfo(info monitor.Info) string {
	return fmt.Sprintf("model:%s hardware:%s firmware:%s", info.Model, info.Hardware, info.Firmware)
}

var (
	// ConnectCmd opens a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[DEVICE]",
		Func: func(c *ishell.Context) {
			var device string
			if len(c.Args) > 0 {
				device = c.Args[0]
			}
			if err := ShellFrom(c).Connect(device); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StatusCmd prints the latest values.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			r, err := s.WaitReport()
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, r.State, r.State.String())
		}),
	}

	// OnCmd turns on the output.
	OnCmd = ishell.Cmd{
		Name: "on",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			DoCommand(c, ShellFrom(c).Session.Monitor.Enable)
		}),
	}

	// OffCmd turns off the output.
	OffCmd = ishell.Cmd{
		Name: "off",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			DoCommand(c, ShellFrom(c).Session.Monitor.Disable)
		}),
	}

	// RefreshCmd requests all values.
	RefreshCmd = ishell.Cmd{
		Name:    "refresh",
		Aliases: []string{"r"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			DoCommand(c, ShellFrom(c).Session.Monitor.Refresh)
		}),
	}

	// BrightnessCmd sets display brightness.
	BrightnessCmd = ishell.Cmd{
		Name: "brightness",
		Help: "N",
		Func: setByteCmd(dps150.FieldBrightness),
	}

	// VolumeCmd sets beeper volume.
	VolumeCmd = ishell.Cmd{
		Name: "volume",
		Help: "N",
		Func: setByteCmd(dps150.FieldVolume),
	}

	// MeteringCmd switches energy metering.
	MeteringCmd = ishell.Cmd{
		Name: "metering",
		Help: "on|off",
		Func: MustBeConnected(func(c *ishell.Context) {
			on, err := parseSwitch(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, func(ctx context.Context) error {
				return ShellFrom(c).Session.Monitor.Do(ctx, func(ctl *dps150.Controller) error {
					return ctl.SetMetering(on)
				})
			})
		}),
	}

	// InfoCmd prints device identification.
	InfoCmd = ishell.Cmd{
		Name: "info",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			info := s.Session.Monitor.Info()
			s.Print(c, info, formatInfo(info))
		}),
	}

	// StatsCmd prints decoder counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Session.Monitor.Stats()
			s.Print(c, st, formatStats(st))
		}),
	}
)
