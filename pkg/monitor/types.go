// Package monitor runs a protocol session with one power supply.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robotalks/dps.go/pkg/dps150"
)

// Info holds identification strings reported by the device.
type Info struct {
	Model    string `json:"model,omitempty"`
	Hardware string `json:"hardware,omitempty"`
	Firmware string `json:"firmware,omitempty"`
}

// Report is published to sinks whenever the device state changes.
type Report struct {
	ID      string
	Session string
	Time    time.Time
	State   dps150.Snapshot
	Info    Info
}

// Sink receives reports.
type Sink interface {
	Publish(context.Context, *Report) error
}

// PublishFunc is the func form of Sink.
type PublishFunc func(context.Context, *Report) error

// Publish implements Sink.
func (f PublishFunc) Publish(ctx context.Context, r *Report) error {
	return f(ctx, r)
}

// WriterSink prints every report.
type WriterSink struct {
	W io.Writer
}

// Publish implements Sink.
func (s *WriterSink) Publish(_ context.Context, r *Report) error {
	_, err := fmt.Fprintln(s.W, r.State.String())
	return err
}

// Request is executed with exclusive access to the controller.
type Request func(*dps150.Controller) error
